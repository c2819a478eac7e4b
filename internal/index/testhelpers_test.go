package index_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// createTree materializes relative paths under root. Paths ending in "/" are directories.
func createTree(testingHandle *testing.T, root string, relativePaths ...string) {
	testingHandle.Helper()
	for _, relativePath := range relativePaths {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		if relativePath[len(relativePath)-1] == '/' {
			if makeDirError := os.MkdirAll(fullPath, 0o755); makeDirError != nil {
				testingHandle.Fatalf("mkdir %s: %v", fullPath, makeDirError)
			}
			continue
		}
		if makeDirError := os.MkdirAll(filepath.Dir(fullPath), 0o755); makeDirError != nil {
			testingHandle.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), makeDirError)
		}
		if writeError := os.WriteFile(fullPath, []byte(relativePath), 0o644); writeError != nil {
			testingHandle.Fatalf("write %s: %v", fullPath, writeError)
		}
	}
}

// skipWithoutPermissionChecks skips tests that rely on unreadable directories.
func skipWithoutPermissionChecks(testingHandle *testing.T) {
	testingHandle.Helper()
	if runtime.GOOS == "windows" {
		testingHandle.Skip("directory permissions are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission checks are bypassed for root")
	}
}
