package output

import (
	"bytes"
	"encoding/xml"

	"github.com/temirov/dirindex/internal/types"
)

const xmlHeader = xml.Header

type xmlDocument struct {
	XMLName  xml.Name  `xml:"directory_index"`
	RootPath string    `xml:"root_path,attr"`
	Items    []xmlItem `xml:"item"`
}

type xmlItem struct {
	Number   string       `xml:"number,attr"`
	Type     string       `xml:"type,attr"`
	Name     string       `xml:"name"`
	Path     string       `xml:"path"`
	Children *xmlChildren `xml:"children,omitempty"`
}

type xmlChildren struct {
	Items []xmlItem `xml:"item"`
}

// RenderXML renders the document as an indented XML document. The children
// element is present only for nodes that have children.
func RenderXML(document types.IndexDocument) ([]byte, error) {
	if validationError := validateNodes(document.Roots); validationError != nil {
		return nil, serializationError(types.FormatXML, validationError)
	}
	payload := xmlDocument{
		RootPath: document.RootLabel,
		Items:    toXMLItems(document.Roots),
	}
	encoded, xmlMarshalError := xml.MarshalIndent(payload, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return nil, serializationError(types.FormatXML, xmlMarshalError)
	}
	var buffer bytes.Buffer
	buffer.Grow(len(xmlHeader) + len(encoded) + 1)
	buffer.WriteString(xmlHeader)
	buffer.Write(encoded)
	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

// ParseXML decodes a document produced by RenderXML.
func ParseXML(data []byte) (types.IndexDocument, error) {
	var payload xmlDocument
	if decodeError := xml.Unmarshal(data, &payload); decodeError != nil {
		return types.IndexDocument{}, serializationError(types.FormatXML, decodeError)
	}
	return types.IndexDocument{
		RootLabel: payload.RootPath,
		Roots:     fromXMLItems(payload.Items),
	}, nil
}

func toXMLItems(nodes []*types.Node) []xmlItem {
	items := make([]xmlItem, 0, len(nodes))
	for _, node := range nodes {
		item := xmlItem{
			Number: node.Number,
			Type:   string(node.Kind),
			Name:   node.Name,
			Path:   node.RelativePath,
		}
		if len(node.Children) > 0 {
			item.Children = &xmlChildren{Items: toXMLItems(node.Children)}
		}
		items = append(items, item)
	}
	return items
}

func fromXMLItems(items []xmlItem) []*types.Node {
	nodes := make([]*types.Node, 0, len(items))
	for _, item := range items {
		node := &types.Node{
			Number:       item.Number,
			Name:         item.Name,
			Kind:         types.NodeKind(item.Type),
			RelativePath: item.Path,
			Children:     []*types.Node{},
		}
		if item.Children != nil {
			node.Children = fromXMLItems(item.Children.Items)
		}
		nodes = append(nodes, node)
	}
	return nodes
}
