// Package utils contains general helper functions shared by the indexer commands and services.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	homeDirectoryShorthand  = "~"
	fallbackOutputFolderTag = "root"

	errorHomeDirectoryFormat = "resolve home directory for %s: %w"
	errorAbsolutePathFormat  = "resolve absolute path for %s: %w"
)

// DeduplicateStrings removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicateStrings(values []string) []string {
	encounteredValues := make(map[string]struct{})
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encounteredValues[value]; !exists {
			encounteredValues[value] = struct{}{}
			result = append(result, value)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// ResolvePath expands a leading "~" and returns the cleaned absolute form of inputPath.
func ResolvePath(inputPath string) (string, error) {
	trimmedPath := strings.TrimSpace(inputPath)
	if trimmedPath == homeDirectoryShorthand || strings.HasPrefix(trimmedPath, homeDirectoryShorthand+string(filepath.Separator)) || strings.HasPrefix(trimmedPath, homeDirectoryShorthand+"/") {
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf(errorHomeDirectoryFormat, inputPath, homeError)
		}
		trimmedPath = filepath.Join(homeDirectory, trimmedPath[len(homeDirectoryShorthand):])
	}
	absolutePath, absoluteError := filepath.Abs(trimmedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, inputPath, absoluteError)
	}
	return filepath.Clean(absolutePath), nil
}

// OutputFolderName returns the name of the folder that receives the generated
// files for the indexed directory, e.g. "Items_in_photos" for /home/me/photos.
func OutputFolderName(indexedDirectoryPath string) string {
	baseName := filepath.Base(filepath.Clean(indexedDirectoryPath))
	if baseName == "." || baseName == string(filepath.Separator) || baseName == EmptyString || strings.HasSuffix(baseName, ":"+string(filepath.Separator)) {
		baseName = fallbackOutputFolderTag
	}
	return OutputFolderPrefix + baseName
}
