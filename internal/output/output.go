// Package output serializes numbered directory trees as JSON, XML, and indented text.
package output

import (
	"fmt"

	"github.com/temirov/dirindex/internal/index"
	"github.com/temirov/dirindex/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	fileNameBase = "directory_index"

	mimeTypeJSON = "application/json; charset=utf-8"
	mimeTypeXML  = "application/xml; charset=utf-8"
	mimeTypeText = "text/plain; charset=utf-8"

	errorUnsupportedFormat = "unsupported format %q"
	errorNilNodeFormat     = "nil node below %q"
)

// Serialize renders the document in the requested format.
func Serialize(document types.IndexDocument, format string) ([]byte, error) {
	switch format {
	case types.FormatJSON:
		return RenderJSON(document)
	case types.FormatXML:
		return RenderXML(document)
	case types.FormatText:
		return RenderText(document)
	default:
		return nil, fmt.Errorf(errorUnsupportedFormat, format)
	}
}

// FileName returns the conventional output file name for a format.
func FileName(format string) string {
	return fileNameBase + "." + format
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	switch format {
	case types.FormatJSON:
		return mimeTypeJSON
	case types.FormatXML:
		return mimeTypeXML
	default:
		return mimeTypeText
	}
}

func serializationError(format string, err error) error {
	return index.NewScanError(index.KindSerialization, format, err)
}

// validateNodes rejects trees containing nil nodes.
func validateNodes(nodes []*types.Node) error {
	var invalid error
	for _, root := range nodes {
		if root == nil {
			return fmt.Errorf(errorNilNodeFormat, "")
		}
	}
	index.Walk(nodes, func(node *types.Node, depth int) bool {
		for _, child := range node.Children {
			if child == nil && invalid == nil {
				invalid = fmt.Errorf(errorNilNodeFormat, node.Number)
			}
		}
		return invalid == nil
	})
	return invalid
}
