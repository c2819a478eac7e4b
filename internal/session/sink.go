package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/types"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	outputDirectoryPermissions = 0o755
	outputFilePermissions      = 0o644
	temporaryFilePattern       = ".tmp-*"

	errorCreateDirectoryFormat = "create output directory %s: %w"
	errorLockFormat            = "lock output directory %s: %w"
	errorUnlockFormat          = "unlock output directory %s: %w"
	errorWriteFileFormat       = "write %s: %w"
)

// writeOutputs stores each payload as directory_index.<format> inside directory,
// holding the directory lock for the whole batch. It returns the written paths by format.
func writeOutputs(directory string, payloads map[string][]byte) (written map[string]string, err error) {
	if makeDirectoryError := os.MkdirAll(directory, outputDirectoryPermissions); makeDirectoryError != nil {
		return nil, fmt.Errorf(errorCreateDirectoryFormat, directory, makeDirectoryError)
	}

	directoryLock := flock.New(filepath.Join(directory, utils.LockFileName))
	if lockError := directoryLock.Lock(); lockError != nil {
		return nil, fmt.Errorf(errorLockFormat, directory, lockError)
	}
	defer func() {
		if unlockError := directoryLock.Unlock(); unlockError != nil && err == nil {
			err = fmt.Errorf(errorUnlockFormat, directory, unlockError)
		}
	}()

	written = make(map[string]string, len(payloads))
	for _, format := range types.SupportedFormats() {
		payload, requested := payloads[format]
		if !requested {
			continue
		}
		destinationPath := filepath.Join(directory, output.FileName(format))
		if writeError := atomicWrite(destinationPath, payload); writeError != nil {
			return nil, fmt.Errorf(errorWriteFileFormat, destinationPath, writeError)
		}
		written[format] = destinationPath
	}
	return written, nil
}

// atomicWrite replaces path with data through a temporary sibling and a rename,
// so readers see either the previous file or the complete new one.
func atomicWrite(path string, data []byte) error {
	temporaryFile, createError := os.CreateTemp(filepath.Dir(path), temporaryFilePattern)
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()
	committed := false
	defer func() {
		if !committed {
			temporaryFile.Close()
			os.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(data); writeError != nil {
		return writeError
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return syncError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return closeError
	}
	if chmodError := os.Chmod(temporaryPath, outputFilePermissions); chmodError != nil {
		return chmodError
	}
	if renameError := os.Rename(temporaryPath, path); renameError != nil {
		return renameError
	}
	committed = true
	return nil
}
