package testsupport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/carlmjohnson/requests"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetgen/components/widgetcatalog"
	"github.com/goliatone/go-widgetgen/pkg/page"
	"github.com/goliatone/go-widgetgen/pkg/payload"
)

// RecordedRequest is one request observed by a CatalogServer.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

// CatalogServer runs the reference catalog behind httptest and records every
// request it receives.
type CatalogServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	before   func(r *http.Request)
}

// NewCatalogServer starts a catalog server that is closed with the test.
func NewCatalogServer(t *testing.T, fns ...widgetcatalog.OptionFn) *CatalogServer {
	t.Helper()

	srv := &CatalogServer{}
	handler := widgetcatalog.NewHandler(fns...)
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.mu.Lock()
		srv.requests = append(srv.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		})
		before := srv.before
		srv.mu.Unlock()
		if before != nil {
			before(r)
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Before installs a hook run ahead of the catalog handler, e.g. to delay a
// response.
func (s *CatalogServer) Before(hook func(r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = hook
}

// Requests returns the requests received so far.
func (s *CatalogServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestsTo returns the requests whose path equals path.
func (s *CatalogServer) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, req := range s.Requests() {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// LoadShell fetches the generator page from srv and parses it.
func LoadShell(t *testing.T, srv *CatalogServer) *page.Page {
	t.Helper()

	pg, err := LoadShellFrom(context.Background(), srv.Client(), srv.URL+widgetcatalog.MountPath(""))
	if err != nil {
		t.Fatalf("load shell: %v", err)
	}
	return pg
}

// LoadShellFrom fetches and parses a page without requiring testing.T.
func LoadShellFrom(ctx context.Context, client *http.Client, pageURL string) (*page.Page, error) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, errors.New("testsupport: page url is required")
	}
	var body string
	if err := requests.URL(pageURL).Client(client).ToString(&body).Fetch(ctx); err != nil {
		return nil, fmt.Errorf("testsupport: fetch page: %w", err)
	}
	pg, err := page.New(body)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse page: %w", err)
	}
	return pg, nil
}

// MustLoadPayload loads a JSON payload fixture.
func MustLoadPayload(t *testing.T, path string) payload.Payload {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load payload: %v", err)
	}
	out, err := payload.Decode(data)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return out
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
