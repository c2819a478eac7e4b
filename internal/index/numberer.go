package index

import "strconv"

const numberSeparator = "."

// Number returns the dotted number of the entry at the 1-based rank below parent.
// An empty parent denotes the root level.
func Number(parent string, rank int) string {
	rankText := strconv.Itoa(rank)
	if parent == "" {
		return rankText
	}
	return parent + numberSeparator + rankText
}

// NumberEntries returns the dotted numbers for an ordered sibling list.
func NumberEntries(parent string, entries []Entry) []string {
	numbers := make([]string, len(entries))
	for entryIndex := range entries {
		numbers[entryIndex] = Number(parent, entryIndex+1)
	}
	return numbers
}

// ParentNumber returns the number of the parent of number, or "" at the root level.
func ParentNumber(number string) string {
	for characterIndex := len(number) - 1; characterIndex >= 0; characterIndex-- {
		if number[characterIndex] == numberSeparator[0] {
			return number[:characterIndex]
		}
	}
	return ""
}
