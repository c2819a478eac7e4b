package index

import (
	"sort"
	"strings"
)

// SortEntries returns the entries ordered directories first, then files,
// each group by case-insensitive name. Equal keys keep their listing order.
func SortEntries(entries []Entry) []Entry {
	sortedEntries := make([]Entry, len(entries))
	copy(sortedEntries, entries)
	sort.SliceStable(sortedEntries, func(leftIndex, rightIndex int) bool {
		return entryLess(sortedEntries[leftIndex], sortedEntries[rightIndex])
	})
	return sortedEntries
}

func entryLess(left Entry, right Entry) bool {
	if left.IsDirectory != right.IsDirectory {
		return left.IsDirectory
	}
	return strings.ToLower(left.Name) < strings.ToLower(right.Name)
}
