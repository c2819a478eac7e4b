package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/temirov/dirindex/internal/types"
)

const (
	// DefaultProgressInterval is the node cadence used when none is configured.
	DefaultProgressInterval = 100

	relativePathSeparator = "/"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorBuildTreeFormat is used when building the tree fails.
	errorBuildTreeFormat = "building tree for %s: %w"

	// warningSkipSubdirFormat is used when a subdirectory cannot be listed.
	warningSkipSubdirFormat = "Skipping subdirectory %s due to error: %v"
	// warningRootUnreadableFormat is used when the root itself cannot be listed.
	warningRootUnreadableFormat = "Permission denied for %s"
	// warningDirectoryCycleFormat is used when a directory repeats one of its ancestors.
	warningDirectoryCycleFormat = "Skipping subdirectory %s: it resolves to ancestor %s"
	// warningInvalidNameFormat is used when a name is not valid UTF-8.
	warningInvalidNameFormat = "Name of %q is not valid UTF-8; JSON and XML outputs replace its invalid bytes"
	// progressMessageFormat describes traversal progress.
	progressMessageFormat = "Processed %d items (at %s)"
)

// ProgressFunc receives the number of nodes created so far and a short message.
type ProgressFunc func(processedNodes int, message string)

// WarningFunc receives non-fatal traversal warnings.
type WarningFunc func(message string)

// ListFunc returns the visible children of a directory.
type ListFunc func(directoryPath string) ([]Entry, error)

// Builder builds numbered directory trees.
type Builder struct {
	// RootLabel overrides the display name of the root. Defaults to the absolute root path.
	RootLabel string
	// Progress is invoked every ProgressInterval nodes. Optional.
	Progress         ProgressFunc
	ProgressInterval int
	// Warn is invoked for every recorded warning. Optional.
	Warn WarningFunc
	// List lists directories. Defaults to ListEntries.
	List ListFunc
}

// directoryFrame is a pending directory whose sorted children are being numbered.
type directoryFrame struct {
	directoryPath  string
	relativePrefix string
	entries        []Entry
	numbers        []string
	nextIndex      int
	children       *[]*types.Node
	identity       os.FileInfo
}

type buildState struct {
	builder        *Builder
	processedNodes int
	warnings       []string
}

// Build scans rootPath with default options.
func Build(rootPath string) (types.IndexDocument, error) {
	return (&Builder{}).Build(rootPath)
}

// Build scans rootPath and returns its numbered tree.
// A missing root or a root that is not a directory aborts the scan.
// An unreadable root yields an empty document carrying a warning.
func (builder *Builder) Build(rootPath string) (types.IndexDocument, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return types.IndexDocument{}, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	if rootError := CheckRoot(absoluteRootPath); rootError != nil {
		return types.IndexDocument{}, rootError
	}

	document := types.IndexDocument{
		RootLabel: builder.RootLabel,
		RootPath:  absoluteRootPath,
		Roots:     []*types.Node{},
	}
	if document.RootLabel == "" {
		document.RootLabel = absoluteRootPath
	}

	state := &buildState{builder: builder}
	rootEntries, listError := state.list(absoluteRootPath)
	if listError != nil {
		if errors.Is(listError, ErrPermissionDenied) {
			state.warn(fmt.Sprintf(warningRootUnreadableFormat, absoluteRootPath))
			document.Warnings = state.warnings
			return document, nil
		}
		return types.IndexDocument{}, fmt.Errorf(errorBuildTreeFormat, rootPath, listError)
	}

	rootIdentity, _ := os.Stat(absoluteRootPath)
	sortedRootEntries := SortEntries(rootEntries)
	state.walk(&directoryFrame{
		directoryPath: absoluteRootPath,
		entries:       sortedRootEntries,
		numbers:       NumberEntries("", sortedRootEntries),
		children:      &document.Roots,
		identity:      rootIdentity,
	})
	document.Warnings = state.warnings
	return document, nil
}

// walk numbers the tree depth-first using an explicit frame stack.
// A directory's number is fixed before its children are listed, and its
// subtree is complete before the next sibling is numbered.
func (state *buildState) walk(rootFrame *directoryFrame) {
	stack := []*directoryFrame{rootFrame}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.nextIndex >= len(frame.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := frame.entries[frame.nextIndex]
		number := frame.numbers[frame.nextIndex]
		frame.nextIndex++

		node := &types.Node{
			Number:       number,
			Name:         entry.Name,
			Kind:         types.KindFile,
			RelativePath: joinRelative(frame.relativePrefix, entry.Name),
			Children:     []*types.Node{},
		}
		*frame.children = append(*frame.children, node)
		state.count(node)
		if !utf8.ValidString(entry.Name) {
			state.warn(fmt.Sprintf(warningInvalidNameFormat, node.RelativePath))
		}

		if !entry.IsDirectory {
			continue
		}
		node.Kind = types.KindDirectory
		childFrame := state.openDirectory(stack, frame, node)
		if childFrame != nil {
			stack = append(stack, childFrame)
		}
	}
}

// openDirectory lists a child directory. Failures leave the node with no children.
func (state *buildState) openDirectory(stack []*directoryFrame, parent *directoryFrame, node *types.Node) *directoryFrame {
	childPath := filepath.Join(parent.directoryPath, node.Name)
	childIdentity, statError := os.Stat(childPath)
	if statError == nil {
		for _, ancestor := range stack {
			if ancestor.identity != nil && os.SameFile(ancestor.identity, childIdentity) {
				state.warn(fmt.Sprintf(warningDirectoryCycleFormat, childPath, ancestor.directoryPath))
				return nil
			}
		}
	}

	childEntries, listError := state.list(childPath)
	if listError != nil {
		state.warn(fmt.Sprintf(warningSkipSubdirFormat, childPath, listError))
		return nil
	}
	sortedEntries := SortEntries(childEntries)
	return &directoryFrame{
		directoryPath:  childPath,
		relativePrefix: node.RelativePath,
		entries:        sortedEntries,
		numbers:        NumberEntries(node.Number, sortedEntries),
		children:       &node.Children,
		identity:       childIdentity,
	}
}

func (state *buildState) count(node *types.Node) {
	state.processedNodes++
	progress := state.builder.Progress
	if progress == nil {
		return
	}
	interval := state.builder.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	if state.processedNodes%interval == 0 {
		progress(state.processedNodes, fmt.Sprintf(progressMessageFormat, state.processedNodes, node.RelativePath))
	}
}

func (state *buildState) list(directoryPath string) ([]Entry, error) {
	if state.builder.List != nil {
		return state.builder.List(directoryPath)
	}
	return ListEntries(directoryPath)
}

func (state *buildState) warn(message string) {
	state.warnings = append(state.warnings, message)
	if state.builder.Warn != nil {
		state.builder.Warn(message)
	}
}

func joinRelative(prefix string, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + relativePathSeparator + name
}
