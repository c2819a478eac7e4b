package output_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/dirindex/internal/index"
	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/types"
)

const sampleRootLabel = "/data/project"

type nodeTuple struct {
	number       string
	name         string
	kind         types.NodeKind
	relativePath string
	depth        int
}

// sampleDocument mirrors a directory holding A/z.txt, a.txt, and a file with markup-unsafe characters.
func sampleDocument() types.IndexDocument {
	return types.IndexDocument{
		RootLabel: sampleRootLabel,
		Roots: []*types.Node{
			{
				Number:       "1",
				Name:         "A",
				Kind:         types.KindDirectory,
				RelativePath: "A",
				Children: []*types.Node{
					{Number: "1.1", Name: "Empty Dir", Kind: types.KindDirectory, RelativePath: "A/Empty Dir", Children: []*types.Node{}},
					{Number: "1.2", Name: "z.txt", Kind: types.KindFile, RelativePath: "A/z.txt", Children: []*types.Node{}},
				},
			},
			{Number: "2", Name: "a.txt", Kind: types.KindFile, RelativePath: "a.txt", Children: []*types.Node{}},
			{Number: "3", Name: `R&D <"draft"> 'v2' ñ.txt`, Kind: types.KindFile, RelativePath: `R&D <"draft"> 'v2' ñ.txt`, Children: []*types.Node{}},
		},
	}
}

func tuples(nodes []*types.Node) []nodeTuple {
	var collected []nodeTuple
	index.Walk(nodes, func(node *types.Node, depth int) bool {
		collected = append(collected, nodeTuple{node.Number, node.Name, node.Kind, node.RelativePath, depth})
		return true
	})
	return collected
}

func assertSameTuples(testingInstance *testing.T, expected []nodeTuple, actual []nodeTuple) {
	testingInstance.Helper()
	if len(expected) != len(actual) {
		testingInstance.Fatalf("expected %d nodes, got %d: %+v", len(expected), len(actual), actual)
	}
	for tupleIndex := range expected {
		if expected[tupleIndex] != actual[tupleIndex] {
			testingInstance.Fatalf("node %d: got %+v, want %+v", tupleIndex, actual[tupleIndex], expected[tupleIndex])
		}
	}
}

// TestRenderJSONRoundTrip verifies the JSON document recovers every node.
func TestRenderJSONRoundTrip(testingInstance *testing.T) {
	document := sampleDocument()
	encoded, renderError := output.RenderJSON(document)
	if renderError != nil {
		testingInstance.Fatalf("RenderJSON error: %v", renderError)
	}
	parsed, parseError := output.ParseJSON(encoded)
	if parseError != nil {
		testingInstance.Fatalf("ParseJSON error: %v", parseError)
	}
	if parsed.RootLabel != sampleRootLabel {
		testingInstance.Fatalf("unexpected root label %q", parsed.RootLabel)
	}
	assertSameTuples(testingInstance, tuples(document.Roots), tuples(parsed.Roots))
	if !bytes.Contains(encoded, []byte(`"name": "R&D <\"draft\"> 'v2' ñ.txt"`)) {
		testingInstance.Fatalf("expected unescaped UTF-8 name in output:\n%s", encoded)
	}
}

// jsonLeafExpected is the rendering of a document with a single file.
const jsonLeafExpected = "{\n" +
	"  \"root\": \"root\",\n" +
	"  \"hierarchy\": [\n" +
	"    {\n" +
	"      \"number\": \"1\",\n" +
	"      \"name\": \"only.txt\",\n" +
	"      \"type\": \"file\",\n" +
	"      \"path\": \"only.txt\",\n" +
	"      \"children\": []\n" +
	"    }\n" +
	"  ]\n" +
	"}\n"

// TestRenderJSONLayout verifies key order and indentation.
func TestRenderJSONLayout(testingInstance *testing.T) {
	document := types.IndexDocument{
		RootLabel: "root",
		Roots:     []*types.Node{{Number: "1", Name: "only.txt", Kind: types.KindFile, RelativePath: "only.txt"}},
	}
	encoded, renderError := output.RenderJSON(document)
	if renderError != nil {
		testingInstance.Fatalf("RenderJSON error: %v", renderError)
	}
	if string(encoded) != jsonLeafExpected {
		testingInstance.Errorf("unexpected output: %q", encoded)
	}
}

// TestRenderXMLStructure verifies attributes, escaping, and the optional children wrapper.
func TestRenderXMLStructure(testingInstance *testing.T) {
	document := sampleDocument()
	encoded, renderError := output.RenderXML(document)
	if renderError != nil {
		testingInstance.Fatalf("RenderXML error: %v", renderError)
	}
	text := string(encoded)
	if !strings.HasPrefix(text, xml.Header) {
		testingInstance.Fatalf("missing XML header: %q", text)
	}
	if strings.Count(text, "<children>") != 1 {
		testingInstance.Fatalf("expected a single children wrapper:\n%s", text)
	}
	if !strings.Contains(text, `<item number="1.1" type="directory">`) {
		testingInstance.Fatalf("expected attributes on items:\n%s", text)
	}
	if strings.Contains(text, `R&D <`) || !strings.Contains(text, "R&amp;D &lt;") {
		testingInstance.Fatalf("expected escaped markup characters:\n%s", text)
	}
	if !strings.Contains(text, "\n    <name>A</name>\n") {
		testingInstance.Fatalf("expected two-space indentation:\n%s", text)
	}

	parsed, parseError := output.ParseXML(encoded)
	if parseError != nil {
		testingInstance.Fatalf("ParseXML error: %v", parseError)
	}
	if parsed.RootLabel != sampleRootLabel {
		testingInstance.Fatalf("unexpected root label %q", parsed.RootLabel)
	}
	assertSameTuples(testingInstance, tuples(document.Roots), tuples(parsed.Roots))
}

// TestRenderTextShape verifies header, indentation, and pre-order.
func TestRenderTextShape(testingInstance *testing.T) {
	document := sampleDocument()
	encoded, renderError := output.RenderText(document)
	if renderError != nil {
		testingInstance.Fatalf("RenderText error: %v", renderError)
	}
	lines := strings.Split(string(encoded), "\n")
	if lines[0] != "Directory Index: "+sampleRootLabel {
		testingInstance.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("=", 80) || lines[2] != "" {
		testingInstance.Fatalf("unexpected header rule %q %q", lines[1], lines[2])
	}
	if !strings.HasPrefix(lines[4], "  1.1. ") || !strings.HasSuffix(lines[4], " Empty Dir") {
		testingInstance.Fatalf("unexpected nested line %q", lines[4])
	}

	listing, parseError := output.ParseText(encoded)
	if parseError != nil {
		testingInstance.Fatalf("ParseText error: %v", parseError)
	}
	if listing.RootLabel != sampleRootLabel {
		testingInstance.Fatalf("unexpected root label %q", listing.RootLabel)
	}
	expected := tuples(document.Roots)
	if len(listing.Lines) != len(expected) {
		testingInstance.Fatalf("expected %d lines, got %+v", len(expected), listing.Lines)
	}
	for lineIndex, line := range listing.Lines {
		want := expected[lineIndex]
		if line.Depth != want.depth || line.Number != want.number || line.Name != want.name || line.Kind != want.kind {
			testingInstance.Fatalf("line %d: got %+v, want %+v", lineIndex, line, want)
		}
	}
}

// TestRenderTextKeepsUnsafeNamesParseable verifies names that would break a line survive the text round trip.
func TestRenderTextKeepsUnsafeNamesParseable(testingInstance *testing.T) {
	testCases := []struct {
		testName      string
		nodeName      string
		expectQuoting bool
	}{
		{testName: "newline", nodeName: "a\nb.txt", expectQuoting: true},
		{testName: "carriage return", nodeName: "report\r", expectQuoting: true},
		{testName: "tab", nodeName: "col\tumn.csv", expectQuoting: true},
		{testName: "invalid utf8", nodeName: "caf\xe9.txt", expectQuoting: true},
		{testName: "leading quote", nodeName: `"draft".txt`, expectQuoting: true},
		{testName: "plain", nodeName: `notes "v2".txt`, expectQuoting: false},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(testingInstance *testing.T) {
			document := types.IndexDocument{
				RootLabel: sampleRootLabel,
				Roots: []*types.Node{
					{Number: "1", Name: "dir", Kind: types.KindDirectory, RelativePath: "dir", Children: []*types.Node{
						{Number: "1.1", Name: testCase.nodeName, Kind: types.KindFile, RelativePath: "dir/" + testCase.nodeName, Children: []*types.Node{}},
					}},
					{Number: "2", Name: "tail.txt", Kind: types.KindFile, RelativePath: "tail.txt", Children: []*types.Node{}},
				},
			}
			encoded, renderError := output.RenderText(document)
			if renderError != nil {
				testingInstance.Fatalf("RenderText error: %v", renderError)
			}
			if quoted := strings.Contains(string(encoded), "[File] \""); quoted != testCase.expectQuoting {
				testingInstance.Fatalf("expected quoting %v in %q", testCase.expectQuoting, encoded)
			}
			listing, parseError := output.ParseText(encoded)
			if parseError != nil {
				testingInstance.Fatalf("ParseText error: %v", parseError)
			}
			if len(listing.Lines) != 3 {
				testingInstance.Fatalf("expected 3 lines, got %+v", listing.Lines)
			}
			if listing.Lines[1].Name != testCase.nodeName || listing.Lines[1].Depth != 1 || listing.Lines[1].Number != "1.1" {
				testingInstance.Fatalf("unexpected nested line %+v", listing.Lines[1])
			}
			if listing.Lines[2].Name != "tail.txt" {
				testingInstance.Fatalf("unexpected trailing line %+v", listing.Lines[2])
			}
		})
	}
}

// TestParseTextRejectsMalformedQuotedName verifies a broken quoted name is a serialization error.
func TestParseTextRejectsMalformedQuotedName(testingInstance *testing.T) {
	malformed := "Directory Index: /data\n" + strings.Repeat("=", 80) + "\n\n1. [File] \"unterminated\n"
	_, parseError := output.ParseText([]byte(malformed))
	if !errors.Is(parseError, index.ErrSerialization) {
		testingInstance.Fatalf("expected serialization error, got %v", parseError)
	}
}

// TestSerializersAcceptEmptyDocument verifies every format renders an empty tree.
func TestSerializersAcceptEmptyDocument(testingInstance *testing.T) {
	document := types.IndexDocument{RootLabel: "empty", Roots: []*types.Node{}}
	for _, format := range types.SupportedFormats() {
		encoded, renderError := output.Serialize(document, format)
		if renderError != nil {
			testingInstance.Fatalf("%s: %v", format, renderError)
		}
		switch format {
		case types.FormatJSON:
			parsed, parseError := output.ParseJSON(encoded)
			if parseError != nil || len(parsed.Roots) != 0 || !bytes.Contains(encoded, []byte(`"hierarchy": []`)) {
				testingInstance.Fatalf("unexpected empty JSON %q (%v)", encoded, parseError)
			}
		case types.FormatXML:
			parsed, parseError := output.ParseXML(encoded)
			if parseError != nil || len(parsed.Roots) != 0 || parsed.RootLabel != "empty" {
				testingInstance.Fatalf("unexpected empty XML %q (%v)", encoded, parseError)
			}
		case types.FormatText:
			listing, parseError := output.ParseText(encoded)
			if parseError != nil || len(listing.Lines) != 0 {
				testingInstance.Fatalf("unexpected empty listing %q (%v)", encoded, parseError)
			}
		}
	}
}

// TestSerializeRejectsMalformedInput verifies serialization errors.
func TestSerializeRejectsMalformedInput(testingInstance *testing.T) {
	if _, serializeError := output.Serialize(sampleDocument(), "yaml"); serializeError == nil {
		testingInstance.Fatalf("expected unsupported format error")
	}
	broken := types.IndexDocument{Roots: []*types.Node{{Number: "1", Name: "A", Kind: types.KindDirectory, Children: []*types.Node{nil}}}}
	for _, format := range types.SupportedFormats() {
		_, serializeError := output.Serialize(broken, format)
		if !errors.Is(serializeError, index.ErrSerialization) {
			testingInstance.Fatalf("%s: expected ErrSerialization, got %v", format, serializeError)
		}
	}
	if _, parseError := output.ParseJSON([]byte("{")); !errors.Is(parseError, index.ErrSerialization) {
		testingInstance.Fatalf("expected ErrSerialization for bad JSON, got %v", parseError)
	}
	if _, parseError := output.ParseText([]byte("not a header\n")); !errors.Is(parseError, index.ErrSerialization) {
		testingInstance.Fatalf("expected ErrSerialization for bad listing, got %v", parseError)
	}
}

// TestSerializersAgreeOnBuiltTree verifies all formats recover the same shape for a scanned tree.
func TestSerializersAgreeOnBuiltTree(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	for _, relativePath := range []string{"b.txt", "A/z.txt", "a.txt", ".hidden", "A/.env", "A/B/c.md"} {
		fullPath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if makeDirError := os.MkdirAll(filepath.Dir(fullPath), 0o755); makeDirError != nil {
			testingInstance.Fatalf("mkdir: %v", makeDirError)
		}
		if writeError := os.WriteFile(fullPath, []byte("x"), 0o644); writeError != nil {
			testingInstance.Fatalf("write: %v", writeError)
		}
	}
	document, buildError := index.Build(rootDirectory)
	if buildError != nil {
		testingInstance.Fatalf("Build error: %v", buildError)
	}
	expected := tuples(document.Roots)

	jsonBytes, _ := output.RenderJSON(document)
	xmlBytes, _ := output.RenderXML(document)
	textBytes, _ := output.RenderText(document)
	for _, rendered := range [][]byte{jsonBytes, xmlBytes, textBytes} {
		if bytes.Contains(rendered, []byte(".hidden")) || bytes.Contains(rendered, []byte(".env")) {
			testingInstance.Fatalf("hidden entry leaked into output:\n%s", rendered)
		}
	}
	fromJSON, _ := output.ParseJSON(jsonBytes)
	fromXML, _ := output.ParseXML(xmlBytes)
	assertSameTuples(testingInstance, expected, tuples(fromJSON.Roots))
	assertSameTuples(testingInstance, expected, tuples(fromXML.Roots))
	listing, _ := output.ParseText(textBytes)
	for lineIndex, line := range listing.Lines {
		if line.Number != expected[lineIndex].number || line.Depth != expected[lineIndex].depth {
			testingInstance.Fatalf("text line %d: %+v vs %+v", lineIndex, line, expected[lineIndex])
		}
	}
	if expected[0].number != "1" || expected[0].name != "A" || expected[1].relativePath != "A/B" {
		testingInstance.Fatalf("unexpected numbering %+v", expected)
	}
}
