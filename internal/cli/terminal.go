package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	promptDirectoryPath = "Enter directory path to index: "
	errorPromptFormat   = "read directory path: %w"
)

var errNoDirectoryPath = errors.New("no directory path given; pass one as an argument")

// isTerminal reports whether stream is attached to an interactive terminal.
func isTerminal(stream interface{}) bool {
	file, isFile := stream.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// promptForDirectory asks for a directory path on an interactive input.
func promptForDirectory(input io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, promptDirectoryPath)
	line, readError := bufio.NewReader(input).ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", fmt.Errorf(errorPromptFormat, readError)
	}
	directoryPath := strings.TrimSpace(line)
	if directoryPath == "" {
		return "", errNoDirectoryPath
	}
	return directoryPath, nil
}

// resultPrinter writes command results, highlighted when the destination is a terminal.
type resultPrinter struct {
	writer    io.Writer
	success   *color.Color
	emphasis  *color.Color
	secondary *color.Color
}

func newResultPrinter(writer io.Writer) resultPrinter {
	printer := resultPrinter{
		writer:    writer,
		success:   color.New(color.FgGreen),
		emphasis:  color.New(color.Bold),
		secondary: color.New(color.Faint),
	}
	colorize := isTerminal(writer) && os.Getenv("NO_COLOR") == ""
	for _, palette := range []*color.Color{printer.success, printer.emphasis, printer.secondary} {
		if colorize {
			palette.EnableColor()
		} else {
			palette.DisableColor()
		}
	}
	return printer
}

func (printer resultPrinter) Success(format string, arguments ...interface{}) {
	printer.success.Fprintf(printer.writer, format+"\n", arguments...)
}

func (printer resultPrinter) Heading(format string, arguments ...interface{}) {
	printer.emphasis.Fprintf(printer.writer, format+"\n", arguments...)
}

func (printer resultPrinter) Detail(format string, arguments ...interface{}) {
	printer.secondary.Fprintf(printer.writer, format+"\n", arguments...)
}

func (printer resultPrinter) Line(format string, arguments ...interface{}) {
	fmt.Fprintf(printer.writer, format+"\n", arguments...)
}
