package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/dirindex/internal/output"
	"github.com/temirov/dirindex/internal/services/web"
	"github.com/temirov/dirindex/internal/session"
)

type indexReply struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error"`
	Session   string          `json:"session"`
	OutputDir string          `json:"output_dir"`
	ItemCount int             `json:"item_count"`
	Files     map[string]bool `json:"files"`
}

func createTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, relativePath := range paths {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		if strings.HasSuffix(relativePath, "/") {
			require.NoError(t, os.MkdirAll(fullPath, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte("content"), 0o644))
	}
}

func newTestServer(t *testing.T, basePaths ...string) (*httptest.Server, *session.Store) {
	t.Helper()
	store, err := session.NewStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	server := web.NewServer(web.Config{Store: store, BasePaths: basePaths, Version: "v0.0.0-test"})
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer, store
}

func decodeBody(t *testing.T, response *http.Response, target interface{}) {
	t.Helper()
	defer response.Body.Close()
	require.NoError(t, json.NewDecoder(response.Body).Decode(target))
}

func postIndexForm(t *testing.T, baseURL string, values url.Values) (*http.Response, indexReply) {
	t.Helper()
	response, err := http.PostForm(baseURL+"/index", values)
	require.NoError(t, err)
	var reply indexReply
	decodeBody(t, response, &reply)
	return response, reply
}

func TestRootListsCapabilities(t *testing.T) {
	httpServer, _ := newTestServer(t)

	response, err := http.Get(httpServer.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	var payload struct {
		Name         string           `json:"name"`
		Version      string           `json:"version"`
		Formats      []string         `json:"formats"`
		Capabilities []web.Capability `json:"capabilities"`
	}
	decodeBody(t, response, &payload)
	assert.Equal(t, "v0.0.0-test", payload.Version)
	assert.Equal(t, []string{"json", "xml", "txt"}, payload.Formats)
	assert.Len(t, payload.Capabilities, 3)

	missing, err := http.Get(httpServer.URL + "/nothing-here")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestIndexThenDownload(t *testing.T) {
	httpServer, store := newTestServer(t)
	root := filepath.Join(t.TempDir(), "Music")
	createTree(t, root, "Albums/one.mp3", "cover.jpg", ".DS_Store")

	response, reply := postIndexForm(t, httpServer.URL, url.Values{
		"dirPath": {root},
		"json":    {"true"},
		"xml":     {"false"},
		"txt":     {"on"},
	})
	require.Equal(t, http.StatusOK, response.StatusCode, reply.Error)
	assert.True(t, reply.Success)
	assert.NotEmpty(t, reply.Session)
	assert.Equal(t, "Items_in_Music", reply.OutputDir)
	assert.Equal(t, 3, reply.ItemCount)
	assert.Equal(t, map[string]bool{"json": true, "xml": false, "txt": true}, reply.Files)
	assert.Equal(t, 1, store.Len())

	download, err := http.Get(httpServer.URL + "/download?session=" + reply.Session + "&type=json")
	require.NoError(t, err)
	defer download.Body.Close()
	assert.Equal(t, http.StatusOK, download.StatusCode)
	assert.Contains(t, download.Header.Get("Content-Disposition"), "directory_index.json")
	assert.Equal(t, output.ContentType("json"), download.Header.Get("Content-Type"))
	var body bytes.Buffer
	_, err = body.ReadFrom(download.Body)
	require.NoError(t, err)
	document, parseErr := output.ParseJSON(body.Bytes())
	require.NoError(t, parseErr)
	require.Len(t, document.Roots, 2)
	assert.Equal(t, "Albums", document.Roots[0].Name)
	assert.Equal(t, "1.1", document.Roots[0].Children[0].Number)

	testCases := []struct {
		name   string
		query  string
		status int
	}{
		{name: "format not generated", query: "session=" + reply.Session + "&type=xml", status: http.StatusNotFound},
		{name: "invalid type", query: "session=" + reply.Session + "&type=pdf", status: http.StatusBadRequest},
		{name: "unknown session", query: "session=nope&type=json", status: http.StatusNotFound},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			failed, err := http.Get(httpServer.URL + "/download?" + testCase.query)
			require.NoError(t, err)
			var failure struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			decodeBody(t, failed, &failure)
			assert.Equal(t, testCase.status, failed.StatusCode)
			assert.False(t, failure.Success)
			assert.NotEmpty(t, failure.Error)
		})
	}
}

func TestIndexAcceptsJSONBody(t *testing.T) {
	httpServer, _ := newTestServer(t)
	root := t.TempDir()
	createTree(t, root, "a.txt", "b/")

	requestBody, err := json.Marshal(map[string]interface{}{"dirPath": root, "label": "Shared"})
	require.NoError(t, err)
	response, err := http.Post(httpServer.URL+"/index", "application/json; charset=utf-8", bytes.NewReader(requestBody))
	require.NoError(t, err)
	var reply indexReply
	decodeBody(t, response, &reply)
	require.Equal(t, http.StatusOK, response.StatusCode, reply.Error)
	assert.Equal(t, map[string]bool{"json": true, "xml": true, "txt": true}, reply.Files)

	download, err := http.Get(httpServer.URL + "/download?session=" + reply.Session + "&type=txt")
	require.NoError(t, err)
	defer download.Body.Close()
	var text bytes.Buffer
	_, err = text.ReadFrom(download.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text.String(), "Directory Index: Shared\n"))
	listing, parseErr := output.ParseText(text.Bytes())
	require.NoError(t, parseErr)
	require.Len(t, listing.Lines, 2)
	assert.Equal(t, "b", listing.Lines[0].Name)
}

func TestIndexRejectsInvalidDirectories(t *testing.T) {
	httpServer, store := newTestServer(t)
	root := t.TempDir()
	createTree(t, root, "file.txt")

	testCases := []struct {
		name    string
		dirPath string
	}{
		{name: "empty path", dirPath: ""},
		{name: "missing path", dirPath: filepath.Join(root, "missing")},
		{name: "file path", dirPath: filepath.Join(root, "file.txt")},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			response, reply := postIndexForm(t, httpServer.URL, url.Values{"dirPath": {testCase.dirPath}})
			assert.Equal(t, http.StatusBadRequest, response.StatusCode)
			assert.False(t, reply.Success)
			assert.Contains(t, reply.Error, "Invalid directory path")
		})
	}
	assert.Zero(t, store.Len())

	methodResponse, err := http.Get(httpServer.URL + "/index")
	require.NoError(t, err)
	methodResponse.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, methodResponse.StatusCode)
}

func TestBrowse(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "zeta.txt", "Alpha.txt", "docs/readme.md", ".git/")
	httpServer, _ := newTestServer(t, root, filepath.Join(root, "missing"), root)

	response, err := http.Get(httpServer.URL + "/browse")
	require.NoError(t, err)
	var bases struct {
		Success bool             `json:"success"`
		Items   []web.BrowseItem `json:"items"`
		Parents []web.Breadcrumb `json:"parents"`
	}
	decodeBody(t, response, &bases)
	assert.True(t, bases.Success)
	require.Len(t, bases.Items, 1, "missing and duplicate base paths are skipped")
	assert.Equal(t, root, bases.Items[0].Path)
	assert.True(t, bases.Items[0].CanEnter)
	assert.Empty(t, bases.Parents)

	response, err = http.Get(httpServer.URL + "/browse?path=" + url.QueryEscape(root))
	require.NoError(t, err)
	var listing struct {
		Success     bool             `json:"success"`
		CurrentPath string           `json:"current_path"`
		Parents     []web.Breadcrumb `json:"parents"`
		Items       []web.BrowseItem `json:"items"`
	}
	decodeBody(t, response, &listing)
	assert.Equal(t, root, listing.CurrentPath)
	names := []string{}
	for _, item := range listing.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"docs", "Alpha.txt", "zeta.txt"}, names)
	assert.True(t, listing.Items[0].CanEnter)
	assert.False(t, listing.Items[1].CanEnter)
	assert.Equal(t, int64(len("content")), listing.Items[1].Size)
	require.NotEmpty(t, listing.Parents)
	assert.Equal(t, filepath.Dir(root), listing.Parents[len(listing.Parents)-1].Path)

	missing, err := http.Get(httpServer.URL + "/browse?path=" + url.QueryEscape(filepath.Join(root, "missing")))
	require.NoError(t, err)
	var failure struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeBody(t, missing, &failure)
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
	assert.Contains(t, failure.Error, "Path does not exist")
}

func TestServerRunServesUntilCancelled(t *testing.T) {
	store, err := session.NewStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server := web.NewServer(web.Config{Store: store, EvictionInterval: 10 * time.Millisecond})
	addressCh := make(chan string, 1)
	errorCh := make(chan error, 1)
	go func() {
		errorCh <- server.Run(ctx, func(address string) { addressCh <- address })
	}()

	select {
	case address := <-addressCh:
		client := http.Client{Timeout: 2 * time.Second}
		response, err := client.Get("http://" + address + "/")
		require.NoError(t, err)
		response.Body.Close()
		assert.Equal(t, http.StatusOK, response.StatusCode)
	case err := <-errorCh:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not report its address")
	}

	cancel()
	select {
	case err := <-errorCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerRunRequiresStore(t *testing.T) {
	err := web.NewServer(web.Config{}).Run(context.Background(), nil)
	assert.Error(t, err)
}
