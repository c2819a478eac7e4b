// Package types defines every cross‑package data structure used by the dirindex CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandIndex  = "index"
	CommandServe  = "serve"
	CommandBrowse = "browse"
	CommandInit   = "init"

	FormatJSON = "json"
	FormatXML  = "xml"
	FormatText = "txt"
)

// NodeKind classifies a Node as a directory or a file.
type NodeKind string

const (
	KindDirectory NodeKind = NodeTypeDirectory
	KindFile      NodeKind = NodeTypeFile
)

// IsDirectory reports whether the kind denotes a directory.
func (kind NodeKind) IsDirectory() bool {
	return kind == KindDirectory
}

// Node is one numbered entry of the indexed tree.
type Node struct {
	Number       string
	Name         string
	Kind         NodeKind
	RelativePath string
	Children     []*Node
}

// IndexDocument is the complete result of one scan.
type IndexDocument struct {
	RootLabel string
	RootPath  string
	Roots     []*Node
	Warnings  []string
}

// SupportedFormats lists every output format in the order files are produced.
func SupportedFormats() []string {
	return []string{FormatJSON, FormatXML, FormatText}
}

// IsSupportedFormat reports whether the provided format is recognized.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatJSON, FormatXML, FormatText:
		return true
	default:
		return false
	}
}
