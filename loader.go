package jsoncover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Loader returns the parsed document stored at uri. The URI never carries a
// fragment.
type Loader interface {
	Load(ctx context.Context, uri string) (any, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, uri string) (any, error)

func (f LoaderFunc) Load(ctx context.Context, uri string) (any, error) { return f(ctx, uri) }

// MapLoader serves documents from memory.
type MapLoader struct {
	mu   sync.RWMutex
	docs map[string]any
}

func NewMapLoader() *MapLoader { return &MapLoader{docs: map[string]any{}} }

// Add stores a parsed document under uri.
func (m *MapLoader) Add(uri string, doc any) {
	m.mu.Lock()
	m.docs[stripFragment(uri)] = doc
	m.mu.Unlock()
}

func (m *MapLoader) Load(_ context.Context, uri string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no document registered for %q", uri)
	}
	return doc, nil
}

// FileLoader reads file:// URIs and plain paths. Files ending in .yaml or
// .yml are read as YAML, everything else as JSON.
type FileLoader struct {
	Parse ParseOpt
}

func (l FileLoader) Load(_ context.Context, uri string) (any, error) {
	path := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	return ParseDocument(data, path, l.Parse)
}

// HTTPLoader fetches http and https URIs.
type HTTPLoader struct {
	Client *http.Client
	Parse  ParseOpt
}

func (l HTTPLoader) Load(ctx context.Context, uri string) (any, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", uri, resp.Status)
	}
	var body io.Reader = resp.Body
	if l.Parse.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, l.Parse.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	name := uri
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		name += ".yaml"
	}
	return ParseDocument(data, name, l.Parse)
}

// SchemeLoader dispatches on the URI scheme. A URI without a scheme is
// treated as a file path.
type SchemeLoader map[string]Loader

func (s SchemeLoader) Load(ctx context.Context, uri string) (any, error) {
	scheme := "file"
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		scheme = u.Scheme
	}
	l, ok := s[scheme]
	if !ok {
		return nil, fmt.Errorf("no loader for scheme %q", scheme)
	}
	return l.Load(ctx, uri)
}

// DefaultLoader handles file, http and https.
func DefaultLoader(opt ParseOpt) Loader {
	h := HTTPLoader{Parse: opt}
	return SchemeLoader{"file": FileLoader{Parse: opt}, "http": h, "https": h}
}

// ParseDocument parses data as YAML when name has a YAML extension or the
// content does not look like JSON, and as JSON otherwise.
func ParseDocument(data []byte, name string, opt ParseOpt) (any, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".yaml" || ext == ".yml" || (ext != ".json" && !looksLikeJSON(data)) {
		return ParseYAML(data, opt)
	}
	return ParseJSON(data, opt)
}

// FileURI turns a local path into an absolute file:// URI, the form relative
// $ref values resolve against correctly.
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

func stripFragment(uri string) string {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i]
	}
	return uri
}
