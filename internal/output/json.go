package output

import (
	"bytes"
	"encoding/json"

	"github.com/temirov/dirindex/internal/types"
)

type jsonDocument struct {
	Root      string     `json:"root"`
	Hierarchy []jsonNode `json:"hierarchy"`
}

type jsonNode struct {
	Number   string     `json:"number"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Path     string     `json:"path"`
	Children []jsonNode `json:"children"`
}

// RenderJSON renders the document as indented JSON. Every node carries a
// children array, empty for files and empty directories.
func RenderJSON(document types.IndexDocument) ([]byte, error) {
	if validationError := validateNodes(document.Roots); validationError != nil {
		return nil, serializationError(types.FormatJSON, validationError)
	}
	payload := jsonDocument{
		Root:      document.RootLabel,
		Hierarchy: toJSONNodes(document.Roots),
	}
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(indentPrefix, indentSpacer)
	if encodeError := encoder.Encode(payload); encodeError != nil {
		return nil, serializationError(types.FormatJSON, encodeError)
	}
	return buffer.Bytes(), nil
}

// ParseJSON decodes a document produced by RenderJSON.
func ParseJSON(data []byte) (types.IndexDocument, error) {
	var payload jsonDocument
	if decodeError := json.Unmarshal(data, &payload); decodeError != nil {
		return types.IndexDocument{}, serializationError(types.FormatJSON, decodeError)
	}
	return types.IndexDocument{
		RootLabel: payload.Root,
		Roots:     fromJSONNodes(payload.Hierarchy),
	}, nil
}

func toJSONNodes(nodes []*types.Node) []jsonNode {
	converted := make([]jsonNode, 0, len(nodes))
	for _, node := range nodes {
		converted = append(converted, jsonNode{
			Number:   node.Number,
			Name:     node.Name,
			Type:     string(node.Kind),
			Path:     node.RelativePath,
			Children: toJSONNodes(node.Children),
		})
	}
	return converted
}

func fromJSONNodes(nodes []jsonNode) []*types.Node {
	converted := make([]*types.Node, 0, len(nodes))
	for _, node := range nodes {
		converted = append(converted, &types.Node{
			Number:       node.Number,
			Name:         node.Name,
			Kind:         types.NodeKind(node.Type),
			RelativePath: node.Path,
			Children:     fromJSONNodes(node.Children),
		})
	}
	return converted
}
