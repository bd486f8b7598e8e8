package fragment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/carlmjohnson/requests"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxErrorBody = 4 << 10

// HTTPOption configures an HTTPLoader.
type HTTPOption func(*HTTPLoader)

// WithClient overrides the HTTP client. Defaults to http.DefaultClient.
func WithClient(client *http.Client) HTTPOption {
	return func(l *HTTPLoader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithBaseURL resolves relative fragment URLs against base.
func WithBaseURL(base string) HTTPOption {
	return func(l *HTTPLoader) {
		l.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(l *HTTPLoader) {
		if strings.TrimSpace(key) == "" {
			return
		}
		l.headers = append(l.headers, [2]string{key, value})
	}
}

// WithSupportAsset names a script the server must provide before fragments
// can be rendered. Init fetches it once.
func WithSupportAsset(path string) HTTPOption {
	return func(l *HTTPLoader) {
		l.supportAsset = strings.TrimSpace(path)
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(l *HTTPLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// HTTPLoader loads fragments over HTTP.
type HTTPLoader struct {
	client       *http.Client
	baseURL      string
	headers      [][2]string
	supportAsset string
	logger       *zap.Logger

	initMu sync.Mutex
	ready  bool
}

var (
	_ Loader      = (*HTTPLoader)(nil)
	_ Initializer = (*HTTPLoader)(nil)
)

// NewHTTPLoader constructs a loader.
func NewHTTPLoader(opts ...HTTPOption) *HTTPLoader {
	l := &HTTPLoader{
		client: http.DefaultClient,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Init fetches the configured support asset. It succeeds at most once;
// subsequent calls are no-ops.
func (l *HTTPLoader) Init(ctx context.Context) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.ready {
		return nil
	}
	if l.supportAsset != "" {
		if _, err := l.get(ctx, Request{URL: l.supportAsset}); err != nil {
			return fmt.Errorf("fragment: load support asset: %w", err)
		}
		l.logger.Debug("fragment support asset loaded", zap.String("asset", l.supportAsset))
	}
	l.ready = true
	return nil
}

// Load issues a GET for req and returns the response body.
func (l *HTTPLoader) Load(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return "", &Error{Err: errors.New("missing url")}
	}
	return l.get(ctx, req)
}

// Resolve returns the absolute form of raw against the configured base URL.
func (l *HTTPLoader) Resolve(raw string) string {
	return resolve(l.baseURL, raw)
}

func (l *HTTPLoader) get(ctx context.Context, req Request) (string, error) {
	target := resolve(l.baseURL, req.URL)
	requestID := uuid.NewString()

	var (
		body    string
		status  int
		errBody bytes.Buffer
	)
	rb := requests.
		URL(target).
		Client(l.client).
		Accept("text/html").
		Header("X-Requested-With", "XMLHttpRequest").
		Header("X-Request-ID", requestID).
		AddValidator(func(res *http.Response) error {
			status = res.StatusCode
			if res.StatusCode >= 200 && res.StatusCode < 300 {
				return nil
			}
			_, _ = io.Copy(&errBody, io.LimitReader(res.Body, maxErrorBody))
			return fmt.Errorf("unexpected status %d", res.StatusCode)
		}).
		ToString(&body)
	for key, values := range req.Data {
		rb.Param(key, values...)
	}
	for _, header := range l.headers {
		rb.Header(header[0], header[1])
	}

	l.logger.Debug("fragment fetch",
		zap.String("url", target),
		zap.String("request_id", requestID),
	)
	if err := rb.Fetch(ctx); err != nil {
		ferr := &Error{URL: target, Err: err}
		if status >= 300 || (status > 0 && status < 200) {
			ferr.Status = status
			if msg := strings.TrimSpace(errBody.String()); msg != "" {
				ferr.Err = errors.New(msg)
			}
		}
		l.logger.Warn("fragment fetch failed",
			zap.String("url", target),
			zap.String("request_id", requestID),
			zap.Int("status", ferr.Status),
			zap.Error(err),
		)
		return "", ferr
	}
	return body, nil
}

func resolve(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if base == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return base + raw
}
