package fragment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes a fragment fetch. Data is sent as query parameters.
type Request struct {
	URL  string
	Data url.Values
}

// Loader fetches HTML fragments for page regions.
type Loader interface {
	Load(ctx context.Context, req Request) (string, error)
}

// Initializer is implemented by loaders that need a one-time setup before the
// first fetch. Callers invoke Init once, at construction time.
type Initializer interface {
	Init(ctx context.Context) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, req Request) (string, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Error reports a failed fragment fetch. Status is zero for transport
// failures.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("fragment: %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
	}
	if e.Err != nil {
		return fmt.Sprintf("fragment: %s: %v", e.URL, e.Err)
	}
	return "fragment: " + e.URL
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
