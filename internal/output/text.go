package output

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/temirov/dirindex/internal/index"
	"github.com/temirov/dirindex/internal/types"
)

const (
	textHeaderPrefix    = "Directory Index: "
	textRuleWidth       = 80
	textRuleCharacter   = "="
	textNumberSeparator = ". "
	textLineFormat      = "%s%s%s%s %s\n"

	// DirectoryMarker and FileMarker tag each listing line with the node kind.
	DirectoryMarker = "[Dir]"
	FileMarker      = "[File]"

	textScannerBufferSize    = 1024
	textScannerMaxTokenSize  = 1024 * 1024
	errorTextHeaderMissing   = "missing header line"
	errorTextLineFormat      = "line %d: not a listing line: %q"
	errorTextIndentFormat    = "line %d: odd indentation"
	errorTextDepthJumpFormat = "line %d: depth %d follows depth %d"
	errorTextQuotedFormat    = "line %d: malformed quoted name: %w"
	textQuote                = `"`
)

// TextLine is one parsed line of a text listing.
type TextLine struct {
	Depth  int
	Number string
	Kind   types.NodeKind
	Name   string
}

// TextListing is a parsed text listing.
type TextListing struct {
	RootLabel string
	Lines     []TextLine
}

// RenderText renders the document as an indented listing in pre-order,
// two spaces per depth level, after a two-line header naming the root.
// Names holding control characters, invalid UTF-8, or a leading quote are
// written as Go-quoted strings so every line stays parseable.
func RenderText(document types.IndexDocument) ([]byte, error) {
	if validationError := validateNodes(document.Roots); validationError != nil {
		return nil, serializationError(types.FormatText, validationError)
	}
	var buffer bytes.Buffer
	buffer.WriteString(textHeaderPrefix + encodeTextName(document.RootLabel) + "\n")
	buffer.WriteString(strings.Repeat(textRuleCharacter, textRuleWidth) + "\n\n")
	index.Walk(document.Roots, func(node *types.Node, depth int) bool {
		fmt.Fprintf(&buffer, textLineFormat, strings.Repeat(indentSpacer, depth), node.Number, textNumberSeparator, kindMarker(node.Kind), encodeTextName(node.Name))
		return true
	})
	return buffer.Bytes(), nil
}

// ParseText reads a listing produced by RenderText.
func ParseText(data []byte) (TextListing, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, textScannerBufferSize), textScannerMaxTokenSize)

	var listing TextListing
	headerSeen := false
	lineNumber := 0
	previousDepth := -1
	for scanner.Scan() {
		lineNumber++
		rawLine := strings.TrimRight(scanner.Text(), "\r")
		if !headerSeen {
			if !strings.HasPrefix(rawLine, textHeaderPrefix) {
				return TextListing{}, serializationError(types.FormatText, errors.New(errorTextHeaderMissing))
			}
			rootLabel, labelError := decodeTextName(strings.TrimPrefix(rawLine, textHeaderPrefix), lineNumber)
			if labelError != nil {
				return TextListing{}, serializationError(types.FormatText, labelError)
			}
			listing.RootLabel = rootLabel
			headerSeen = true
			continue
		}
		if rawLine == "" || strings.Trim(rawLine, textRuleCharacter) == "" {
			continue
		}

		parsedLine, parseError := parseTextLine(rawLine, lineNumber)
		if parseError != nil {
			return TextListing{}, serializationError(types.FormatText, parseError)
		}
		if parsedLine.Depth > previousDepth+1 {
			return TextListing{}, serializationError(types.FormatText, fmt.Errorf(errorTextDepthJumpFormat, lineNumber, parsedLine.Depth, previousDepth))
		}
		previousDepth = parsedLine.Depth
		listing.Lines = append(listing.Lines, parsedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return TextListing{}, serializationError(types.FormatText, scanError)
	}
	if !headerSeen {
		return TextListing{}, serializationError(types.FormatText, errors.New(errorTextHeaderMissing))
	}
	return listing, nil
}

func parseTextLine(rawLine string, lineNumber int) (TextLine, error) {
	content := strings.TrimLeft(rawLine, " ")
	indentWidth := len(rawLine) - len(content)
	if indentWidth%len(indentSpacer) != 0 {
		return TextLine{}, fmt.Errorf(errorTextIndentFormat, lineNumber)
	}
	number, remainder, found := strings.Cut(content, textNumberSeparator)
	if !found || number == "" {
		return TextLine{}, fmt.Errorf(errorTextLineFormat, lineNumber, rawLine)
	}
	marker, encodedName, found := strings.Cut(remainder, " ")
	if !found {
		return TextLine{}, fmt.Errorf(errorTextLineFormat, lineNumber, rawLine)
	}
	name, nameError := decodeTextName(encodedName, lineNumber)
	if nameError != nil {
		return TextLine{}, nameError
	}
	var kind types.NodeKind
	switch marker {
	case DirectoryMarker:
		kind = types.KindDirectory
	case FileMarker:
		kind = types.KindFile
	default:
		return TextLine{}, fmt.Errorf(errorTextLineFormat, lineNumber, rawLine)
	}
	return TextLine{
		Depth:  indentWidth / len(indentSpacer),
		Number: number,
		Kind:   kind,
		Name:   name,
	}, nil
}

func kindMarker(kind types.NodeKind) string {
	if kind.IsDirectory() {
		return DirectoryMarker
	}
	return FileMarker
}

func encodeTextName(name string) string {
	if strings.HasPrefix(name, textQuote) || !utf8.ValidString(name) || strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return strconv.Quote(name)
	}
	return name
}

func decodeTextName(encodedName string, lineNumber int) (string, error) {
	if !strings.HasPrefix(encodedName, textQuote) {
		return encodedName, nil
	}
	name, unquoteError := strconv.Unquote(encodedName)
	if unquoteError != nil {
		return "", fmt.Errorf(errorTextQuotedFormat, lineNumber, unquoteError)
	}
	return name, nil
}
