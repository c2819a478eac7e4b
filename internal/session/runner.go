// Package session runs one indexing request end to end: it builds the tree once,
// renders the requested formats, and writes them to the output folder.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dirindex/internal/index"
	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/types"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	logMessageScanning      = "Scanning directory"
	logMessageProgress      = "Scan progress"
	logMessageWarning       = "Scan warning"
	logMessageScanComplete  = "Scan complete"
	logMessageFilesWritten  = "Output files written"
	logFieldRoot            = "root"
	logFieldProcessed       = "processed"
	logFieldItems           = "items"
	logFieldDirectories     = "directories"
	logFieldFiles           = "files"
	logFieldOutputDirectory = "output_dir"
	logFieldDetail          = "detail"

	errorUnsupportedFormatFormat = "unsupported format %q; supported formats: %s"
)

// ErrNoRootPath is returned when a request names no directory.
var ErrNoRootPath = errors.New("no directory path given")

// Request describes one indexing run.
type Request struct {
	// RootPath is the directory to index.
	RootPath string
	// Formats lists the formats to render; duplicates are ignored.
	Formats []string
	// OutputDirectory receives an Items_in_<Folder> folder holding the files.
	// Ignored when InPlace is set.
	OutputDirectory string
	// InPlace writes the files into the indexed directory itself.
	InPlace bool
	// SkipWrite renders the payloads without touching the filesystem.
	SkipWrite bool
	// RootLabel overrides the label shown in headers; defaults to the absolute root path.
	RootLabel string
	// ProgressInterval is the number of nodes between progress reports; zero disables them.
	ProgressInterval int
}

// Result is the outcome of a successful run.
type Result struct {
	Document        types.IndexDocument
	Payloads        map[string][]byte
	Files           map[string]string
	OutputDirectory string
	ItemCount       int
	DirectoryCount  int
	FileCount       int
}

// Runner executes indexing requests.
type Runner struct {
	Logger *zap.Logger
	// Progress, when set, receives progress reports in addition to the log.
	Progress index.ProgressFunc
}

// NewRunner returns a runner that logs through logger.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{Logger: logger}
}

// Run builds the tree for request.RootPath, renders every requested format
// concurrently, and writes the files unless SkipWrite is set.
func (runner *Runner) Run(ctx context.Context, request Request) (Result, error) {
	logger := runner.logger()
	if strings.TrimSpace(request.RootPath) == utils.EmptyString {
		return Result{}, ErrNoRootPath
	}
	formats, formatError := normalizeFormats(request.Formats)
	if formatError != nil {
		return Result{}, formatError
	}
	if contextError := ctx.Err(); contextError != nil {
		return Result{}, contextError
	}

	builder := index.Builder{
		RootLabel:        request.RootLabel,
		ProgressInterval: request.ProgressInterval,
		Warn: func(message string) {
			logger.Warn(logMessageWarning, zap.String(logFieldDetail, message))
		},
	}
	if request.ProgressInterval > 0 {
		builder.Progress = func(processedNodes int, message string) {
			logger.Info(logMessageProgress, zap.Int(logFieldProcessed, processedNodes), zap.String(logFieldDetail, message))
			if runner.Progress != nil {
				runner.Progress(processedNodes, message)
			}
		}
	}

	logger.Info(logMessageScanning, zap.String(logFieldRoot, request.RootPath))
	document, buildError := builder.Build(request.RootPath)
	if buildError != nil {
		return Result{}, buildError
	}
	directoryCount, fileCount := index.CountByKind(document)
	result := Result{
		Document:       document,
		ItemCount:      directoryCount + fileCount,
		DirectoryCount: directoryCount,
		FileCount:      fileCount,
		Files:          map[string]string{},
	}
	logger.Info(logMessageScanComplete,
		zap.String(logFieldRoot, document.RootPath),
		zap.Int(logFieldItems, result.ItemCount),
		zap.Int(logFieldDirectories, directoryCount),
		zap.Int(logFieldFiles, fileCount),
	)

	payloads, renderError := renderFormats(ctx, document, formats)
	if renderError != nil {
		return Result{}, renderError
	}
	result.Payloads = payloads

	if request.SkipWrite || len(formats) == 0 {
		return result, nil
	}
	result.OutputDirectory = OutputDirectoryFor(document.RootPath, request.OutputDirectory, request.InPlace)
	written, writeError := writeOutputs(result.OutputDirectory, payloads)
	if writeError != nil {
		return Result{}, writeError
	}
	result.Files = written
	logger.Info(logMessageFilesWritten, zap.String(logFieldOutputDirectory, result.OutputDirectory), zap.Int(logFieldFiles, len(written)))
	return result, nil
}

// OutputDirectoryFor returns the folder that receives the files for the indexed root.
func OutputDirectoryFor(rootPath string, outputDirectory string, inPlace bool) string {
	if inPlace {
		return rootPath
	}
	if strings.TrimSpace(outputDirectory) == utils.EmptyString {
		outputDirectory = "."
	}
	return filepath.Join(outputDirectory, utils.OutputFolderName(rootPath))
}

func renderFormats(ctx context.Context, document types.IndexDocument, formats []string) (map[string][]byte, error) {
	var payloadsMutex sync.Mutex
	payloads := make(map[string][]byte, len(formats))
	group, groupContext := errgroup.WithContext(ctx)
	for _, format := range formats {
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			payload, serializeError := output.Serialize(document, format)
			if serializeError != nil {
				return serializeError
			}
			payloadsMutex.Lock()
			payloads[format] = payload
			payloadsMutex.Unlock()
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return payloads, nil
}

func normalizeFormats(requested []string) ([]string, error) {
	normalized := make([]string, 0, len(requested))
	for _, format := range requested {
		lowered := strings.ToLower(strings.TrimSpace(format))
		if !types.IsSupportedFormat(lowered) {
			return nil, fmt.Errorf(errorUnsupportedFormatFormat, format, strings.Join(types.SupportedFormats(), ", "))
		}
		normalized = append(normalized, lowered)
	}
	return utils.DeduplicateStrings(normalized), nil
}

func (runner *Runner) logger() *zap.Logger {
	if runner == nil || runner.Logger == nil {
		return zap.NewNop()
	}
	return runner.Logger
}
