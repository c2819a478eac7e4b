package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/temirov/dirindex/internal/index"
	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/session"
	"github.com/temirov/dirindex/internal/types"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	fieldDirectoryPath = "dirPath"
	fieldLabel         = "label"
	fieldSession       = "session"
	fieldType          = "type"
	fieldPath          = "path"
	formCheckboxOn     = "on"
	maxRequestBodySize = 1 << 20

	errorInvalidDirectoryPath = "Invalid directory path"
	errorSessionNotFound      = "Session not found"
	errorInvalidFileType      = "Invalid file type"
	errorFileNotFound         = "File not found"
	errorPermissionDenied     = "Permission denied"
	errorPathMissing          = "Path does not exist"
	errorNotADirectory        = "Path is not a directory"
	errorReadBodyFormat       = "read request body: %w"
	errorDecodeBodyFormat     = "decode request body: %w"
	errorParseFormFormat      = "parse form: %w"
	errorFormatFlagFormat     = "invalid value %q for %s"
)

type indexRequest struct {
	DirectoryPath string
	Label         string
	Formats       []string
}

type indexRequestBody struct {
	DirectoryPath string `json:"dirPath"`
	Label         string `json:"label"`
	JSON          *bool  `json:"json"`
	XML           *bool  `json:"xml"`
	Text          *bool  `json:"txt"`
}

type indexResponse struct {
	Success         bool            `json:"success"`
	Session         string          `json:"session"`
	OutputDirectory string          `json:"output_dir"`
	ItemCount       int             `json:"item_count"`
	Files           map[string]bool `json:"files"`
	Warnings        []string        `json:"warnings,omitempty"`
}

type browseResponse struct {
	Success bool `json:"success"`
	Listing
}

func (server Server) handleIndex(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	parsed, parseErr := parseIndexRequest(writer, request)
	if parseErr != nil {
		server.writeFailure(writer, request, parseErr)
		return
	}
	if strings.TrimSpace(parsed.DirectoryPath) == utils.EmptyString {
		server.writeFailure(writer, request, NewRequestError(http.StatusBadRequest, errors.New(errorInvalidDirectoryPath)))
		return
	}
	rootPath, resolveErr := utils.ResolvePath(parsed.DirectoryPath)
	if resolveErr != nil {
		server.writeFailure(writer, request, NewRequestError(http.StatusBadRequest, resolveErr))
		return
	}
	if rootErr := index.CheckRoot(rootPath); rootErr != nil {
		server.writeFailure(writer, request, NewRequestError(statusForScanError(rootErr), fmt.Errorf("%s: %w", errorInvalidDirectoryPath, rootErr)))
		return
	}

	sessionID, sessionDirectory, reserveErr := server.config.Store.Reserve()
	if reserveErr != nil {
		server.writeFailure(writer, request, reserveErr)
		return
	}
	result, runErr := server.config.Runner.Run(request.Context(), session.Request{
		RootPath:         rootPath,
		Formats:          parsed.Formats,
		OutputDirectory:  sessionDirectory,
		RootLabel:        parsed.Label,
		ProgressInterval: server.config.ProgressInterval,
	})
	if runErr != nil {
		_ = server.config.Store.Discard(sessionID)
		server.writeFailure(writer, request, NewRequestError(statusForScanError(runErr), runErr))
		return
	}
	server.config.Store.Save(session.Record{
		ID:              sessionID,
		RootPath:        result.Document.RootPath,
		OutputDirectory: result.OutputDirectory,
		Files:           result.Files,
		ItemCount:       result.ItemCount,
	})

	generated := make(map[string]bool, len(types.SupportedFormats()))
	for _, format := range types.SupportedFormats() {
		_, written := result.Files[format]
		generated[format] = written
	}
	server.writeJSON(writer, http.StatusOK, indexResponse{
		Success:         true,
		Session:         sessionID,
		OutputDirectory: utils.OutputFolderName(result.Document.RootPath),
		ItemCount:       result.ItemCount,
		Files:           generated,
		Warnings:        result.Document.Warnings,
	})
}

func (server Server) handleDownload(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := request.URL.Query()
	record, lookupErr := server.config.Store.Lookup(query.Get(fieldSession))
	if lookupErr != nil {
		server.writeFailure(writer, request, NewRequestError(http.StatusNotFound, errors.New(errorSessionNotFound)))
		return
	}
	format := strings.ToLower(query.Get(fieldType))
	if !types.IsSupportedFormat(format) {
		server.writeFailure(writer, request, NewRequestError(http.StatusBadRequest, errors.New(errorInvalidFileType)))
		return
	}
	filePath, generated := record.Files[format]
	if !generated {
		server.writeFailure(writer, request, NewRequestError(http.StatusNotFound, errors.New(errorFileNotFound)))
		return
	}
	fileHandle, openErr := os.Open(filePath)
	if openErr != nil {
		if errors.Is(openErr, os.ErrNotExist) {
			server.writeFailure(writer, request, NewRequestError(http.StatusNotFound, errors.New(errorFileNotFound)))
			return
		}
		server.writeFailure(writer, request, openErr)
		return
	}
	defer fileHandle.Close()
	information, statErr := fileHandle.Stat()
	if statErr != nil {
		server.writeFailure(writer, request, statErr)
		return
	}

	fileName := output.FileName(format)
	writer.Header().Set(headerContentType, output.ContentType(format))
	writer.Header().Set(headerContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	http.ServeContent(writer, request, fileName, information.ModTime(), fileHandle)
}

func (server Server) handleBrowse(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	listing, browseErr := Browse(request.URL.Query().Get(fieldPath), server.config.BasePaths)
	if browseErr != nil {
		server.writeFailure(writer, request, NewRequestError(statusForScanError(browseErr), browseMessage(browseErr)))
		return
	}
	server.writeJSON(writer, http.StatusOK, browseResponse{Success: true, Listing: listing})
}

func parseIndexRequest(writer http.ResponseWriter, request *http.Request) (indexRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(headerContentType))
	if mediaType == mimeTypeJSON {
		body, readErr := io.ReadAll(io.LimitReader(request.Body, maxRequestBodySize))
		if readErr != nil {
			return indexRequest{}, NewRequestError(http.StatusBadRequest, fmt.Errorf(errorReadBodyFormat, readErr))
		}
		var decoded indexRequestBody
		if decodeErr := json.Unmarshal(body, &decoded); decodeErr != nil {
			return indexRequest{}, NewRequestError(http.StatusBadRequest, fmt.Errorf(errorDecodeBodyFormat, decodeErr))
		}
		return indexRequest{
			DirectoryPath: decoded.DirectoryPath,
			Label:         decoded.Label,
			Formats:       selectFormats(map[string]*bool{types.FormatJSON: decoded.JSON, types.FormatXML: decoded.XML, types.FormatText: decoded.Text}),
		}, nil
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxRequestBodySize)
	if parseErr := request.ParseForm(); parseErr != nil {
		return indexRequest{}, NewRequestError(http.StatusBadRequest, fmt.Errorf(errorParseFormFormat, parseErr))
	}
	selections := map[string]*bool{}
	for _, format := range types.SupportedFormats() {
		if !request.Form.Has(format) {
			continue
		}
		selected, flagErr := parseFormFlag(request.Form.Get(format))
		if flagErr != nil {
			return indexRequest{}, NewRequestError(http.StatusBadRequest, fmt.Errorf(errorFormatFlagFormat, request.Form.Get(format), format))
		}
		selections[format] = &selected
	}
	return indexRequest{
		DirectoryPath: request.Form.Get(fieldDirectoryPath),
		Label:         request.Form.Get(fieldLabel),
		Formats:       selectFormats(selections),
	}, nil
}

// selectFormats returns the formats switched on, or every format when none was mentioned.
func selectFormats(selections map[string]*bool) []string {
	mentioned := false
	formats := []string{}
	for _, format := range types.SupportedFormats() {
		selected := selections[format]
		if selected == nil {
			continue
		}
		mentioned = true
		if *selected {
			formats = append(formats, format)
		}
	}
	if !mentioned {
		return types.SupportedFormats()
	}
	return formats
}

func parseFormFlag(value string) (bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == formCheckboxOn {
		return true, nil
	}
	if trimmed == utils.EmptyString {
		return false, nil
	}
	return strconv.ParseBool(trimmed)
}

func statusForScanError(err error) int {
	switch {
	case errors.Is(err, index.ErrNotFound), errors.Is(err, index.ErrNotADirectory):
		return http.StatusBadRequest
	case errors.Is(err, index.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, session.ErrNoRootPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func browseMessage(err error) error {
	switch {
	case errors.Is(err, index.ErrNotFound):
		return fmt.Errorf("%s: %w", errorPathMissing, err)
	case errors.Is(err, index.ErrPermissionDenied):
		return fmt.Errorf("%s: %w", errorPermissionDenied, err)
	case errors.Is(err, index.ErrNotADirectory):
		return fmt.Errorf("%s: %w", errorNotADirectory, err)
	default:
		return err
	}
}
