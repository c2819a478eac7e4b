// Package web serves the indexer over HTTP: index a directory, download the
// generated files, and browse directories to pick one.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dirindex/internal/session"
	"github.com/temirov/dirindex/internal/types"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second
	defaultEvictionInterval = time.Minute

	headerContentType        = "Content-Type"
	headerContentDisposition = "Content-Disposition"
	mimeTypeJSON             = "application/json"

	rootPath     = "/"
	indexPath    = "/index"
	downloadPath = "/download"
	browsePath   = "/browse"

	logMessageListening      = "Web server listening"
	logMessageEvicted        = "Expired sessions removed"
	logMessageEvictionFailed = "Session eviction failed"
	logMessageRequestFailed  = "Request failed"
	logFieldAddress          = "address"
	logFieldCount            = "count"
	logFieldPath             = "path"
	logFieldStatus           = "status"
)

// Capability describes a route exposed by the server.
type Capability struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var defaultCapabilities = []Capability{
	{Name: "index", Method: http.MethodPost, Path: indexPath, Description: "Index a directory and keep the generated files for download"},
	{Name: "download", Method: http.MethodGet, Path: downloadPath, Description: "Download one generated file of a session"},
	{Name: "browse", Method: http.MethodGet, Path: browsePath, Description: "List one directory level to pick a directory"},
}

// RequestError represents a failure accompanied by an HTTP status code.
type RequestError struct {
	statusCode int
	err        error
}

// Error returns the error string.
func (requestError RequestError) Error() string {
	return requestError.err.Error()
}

// Unwrap exposes the wrapped error.
func (requestError RequestError) Unwrap() error {
	return requestError.err
}

// StatusCode reports the associated HTTP status code.
func (requestError RequestError) StatusCode() int {
	return requestError.statusCode
}

// NewRequestError creates a new RequestError.
func NewRequestError(statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return RequestError{statusCode: statusCode, err: err}
}

// Config defines runtime options for the web server.
type Config struct {
	Address          string
	ShutdownTimeout  time.Duration
	EvictionInterval time.Duration
	BasePaths        []string
	ProgressInterval int
	Version          string
	Runner           *session.Runner
	Store            *session.Store
	Logger           *zap.Logger
}

// Server serves the indexer routes.
type Server struct {
	config Config
}

// NewServer creates a new Server with defaults applied.
func NewServer(config Config) Server {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = defaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	if normalized.EvictionInterval <= 0 {
		normalized.EvictionInterval = defaultEvictionInterval
	}
	if normalized.Logger == nil {
		normalized.Logger = zap.NewNop()
	}
	if normalized.Runner == nil {
		normalized.Runner = session.NewRunner(normalized.Logger)
	}
	return Server{config: normalized}
}

// Handler returns the router serving every route.
func (server Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc(rootPath, server.handleRoot)
	router.HandleFunc(indexPath, server.handleIndex)
	router.HandleFunc(downloadPath, server.handleDownload)
	router.HandleFunc(browsePath, server.handleBrowse)
	return router
}

// Run starts the server and blocks until the provided context is canceled.
// The notify callback receives the bound address once the listener is active.
// Expired sessions are evicted periodically while the server runs.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	if server.config.Store == nil {
		return errors.New("web server requires a session store")
	}
	listener, listenErr := net.Listen("tcp", server.config.Address)
	if listenErr != nil {
		return fmt.Errorf("listen on %s: %w", server.config.Address, listenErr)
	}
	actualAddress := listener.Addr().String()

	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: 10 * time.Second}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve web: %w", serveErr)
		}
		return nil
	})

	server.config.Logger.Info(logMessageListening, zap.String(logFieldAddress, actualAddress))
	if notify != nil {
		notify(actualAddress)
	}

	group.Go(func() error {
		ticker := time.NewTicker(server.config.EvictionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				server.evict()
			}
		}
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf("shutdown web: %w", shutdownErr)
		}
		return nil
	})

	return group.Wait()
}

func (server Server) evict() {
	evicted, evictErr := server.config.Store.Evict()
	if evictErr != nil {
		server.config.Logger.Warn(logMessageEvictionFailed, zap.Error(evictErr))
	}
	if evicted > 0 {
		server.config.Logger.Info(logMessageEvicted, zap.Int(logFieldCount, evicted))
	}
}

func (server Server) handleRoot(writer http.ResponseWriter, request *http.Request) {
	if request.URL.Path != rootPath {
		server.writeFailure(writer, request, NewRequestError(http.StatusNotFound, errors.New("not found")))
		return
	}
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	payload := struct {
		Name         string       `json:"name"`
		Version      string       `json:"version,omitempty"`
		Formats      []string     `json:"formats"`
		Capabilities []Capability `json:"capabilities"`
	}{
		Name:         "dirindex",
		Version:      server.config.Version,
		Formats:      types.SupportedFormats(),
		Capabilities: defaultCapabilities,
	}
	server.writeJSON(writer, http.StatusOK, payload)
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (server Server) writeFailure(writer http.ResponseWriter, request *http.Request, err error) {
	statusCode := server.statusCodeFromError(err)
	if statusCode >= http.StatusInternalServerError {
		server.config.Logger.Error(logMessageRequestFailed, zap.String(logFieldPath, request.URL.Path), zap.Int(logFieldStatus, statusCode), zap.Error(err))
	}
	server.writeJSON(writer, statusCode, failureResponse{Success: false, Error: err.Error()})
}

func (server Server) writeJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	var buffer bytes.Buffer
	if encodeErr := json.NewEncoder(&buffer).Encode(payload); encodeErr != nil {
		fallback := failureResponse{Error: fmt.Sprintf("encode response: %v", encodeErr)}
		writer.Header().Set(headerContentType, mimeTypeJSON)
		writer.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(writer).Encode(fallback)
		return
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(buffer.Bytes())
}

func (server Server) statusCodeFromError(err error) int {
	var requestError RequestError
	if errors.As(err, &requestError) {
		return requestError.StatusCode()
	}
	return http.StatusInternalServerError
}
