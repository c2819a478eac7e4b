// Package index builds hierarchically numbered directory trees.
package index

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	hiddenEntryPrefix = "."

	// errorReadDirectoryFormat is used when a directory cannot be read for an unclassified reason.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// Entry is a single visible child of a directory listing.
type Entry struct {
	Name        string
	IsDirectory bool
}

// IsHidden reports whether an entry name is excluded from the index.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, hiddenEntryPrefix)
}

// CheckRoot verifies that rootPath exists and is a directory.
func CheckRoot(rootPath string) error {
	rootInfo, statError := os.Stat(rootPath)
	if statError != nil {
		return classifyError(rootPath, statError)
	}
	if !rootInfo.IsDir() {
		return NewScanError(KindNotADirectory, rootPath, nil)
	}
	return nil
}

// ListEntries returns the visible children of directoryPath in listing order.
// Symbolic links are classified by the type of their target; dangling links count as files.
func ListEntries(directoryPath string) ([]Entry, error) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil, classifyError(directoryPath, readDirectoryError)
	}

	entries := make([]Entry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if IsHidden(entryName) {
			continue
		}
		entries = append(entries, Entry{
			Name:        entryName,
			IsDirectory: isDirectoryEntry(directoryPath, directoryEntry),
		})
	}
	return entries, nil
}

func isDirectoryEntry(directoryPath string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return directoryEntry.IsDir()
	}
	targetInfo, targetStatError := os.Stat(filepath.Join(directoryPath, directoryEntry.Name()))
	if targetStatError != nil {
		return false
	}
	return targetInfo.IsDir()
}

func classifyError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewScanError(KindNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return NewScanError(KindPermissionDenied, path, err)
	case isNotDirectoryError(err):
		return NewScanError(KindNotADirectory, path, err)
	default:
		return fmt.Errorf(errorReadDirectoryFormat, path, err)
	}
}

func isNotDirectoryError(err error) bool {
	var pathError *fs.PathError
	if !errors.As(err, &pathError) {
		return false
	}
	info, statError := os.Stat(pathError.Path)
	return statError == nil && !info.IsDir()
}
