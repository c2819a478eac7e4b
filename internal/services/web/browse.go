package web

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/dirindex/internal/index"
	"github.com/temirov/dirindex/internal/utils"
)

// BrowseItem is one entry of a browse listing.
type BrowseItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsDir    bool   `json:"is_dir"`
	CanEnter bool   `json:"can_enter"`
	Size     int64  `json:"size,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// Breadcrumb names one ancestor of the browsed directory.
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Listing is the one-level view of a directory returned by Browse.
type Listing struct {
	CurrentPath string       `json:"current_path"`
	Parents     []Breadcrumb `json:"parents"`
	Items       []BrowseItem `json:"items"`
}

// Browse lists the direct children of path with the indexer's hiding and
// ordering rules. An empty path lists the existing base paths instead.
func Browse(path string, basePaths []string) (Listing, error) {
	if path == utils.EmptyString {
		return browseBasePaths(basePaths), nil
	}
	absolutePath, resolveError := utils.ResolvePath(path)
	if resolveError != nil {
		return Listing{}, resolveError
	}
	if rootError := index.CheckRoot(absolutePath); rootError != nil {
		return Listing{}, rootError
	}
	entries, listError := index.ListEntries(absolutePath)
	if listError != nil {
		return Listing{}, listError
	}

	listing := Listing{
		CurrentPath: absolutePath,
		Parents:     breadcrumbs(absolutePath),
		Items:       make([]BrowseItem, 0, len(entries)),
	}
	for _, entry := range index.SortEntries(entries) {
		listing.Items = append(listing.Items, describe(filepath.Join(absolutePath, entry.Name), entry.Name, entry.IsDirectory))
	}
	return listing, nil
}

func browseBasePaths(basePaths []string) Listing {
	listing := Listing{Parents: []Breadcrumb{}, Items: []BrowseItem{}}
	seen := map[string]struct{}{}
	for _, basePath := range basePaths {
		absolutePath, resolveError := utils.ResolvePath(basePath)
		if resolveError != nil {
			continue
		}
		if _, duplicate := seen[absolutePath]; duplicate {
			continue
		}
		information, statError := os.Stat(absolutePath)
		if statError != nil || !information.IsDir() {
			continue
		}
		seen[absolutePath] = struct{}{}
		name := filepath.Base(absolutePath)
		if name == string(filepath.Separator) || name == "." {
			name = absolutePath
		}
		listing.Items = append(listing.Items, BrowseItem{
			Name:     name,
			Path:     absolutePath,
			IsDir:    true,
			CanEnter: canEnter(absolutePath),
			Modified: utils.FormatTimestamp(information.ModTime()),
		})
	}
	return listing
}

func describe(fullPath string, name string, isDirectory bool) BrowseItem {
	item := BrowseItem{Name: name, Path: fullPath, IsDir: isDirectory}
	if isDirectory {
		item.CanEnter = canEnter(fullPath)
	}
	if information, statError := os.Stat(fullPath); statError == nil {
		if !isDirectory {
			item.Size = information.Size()
		}
		item.Modified = utils.FormatTimestamp(information.ModTime())
	}
	return item
}

// breadcrumbs returns the ancestors of path from the outermost down, excluding the filesystem root.
func breadcrumbs(path string) []Breadcrumb {
	parents := []Breadcrumb{}
	for current := filepath.Dir(path); ; current = filepath.Dir(current) {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		parents = append([]Breadcrumb{{Name: filepath.Base(current), Path: current}}, parents...)
	}
	return parents
}

func canEnter(directoryPath string) bool {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return false
	}
	defer directoryHandle.Close()
	_, readError := directoryHandle.Readdirnames(1)
	return readError == nil || errors.Is(readError, io.EOF)
}
