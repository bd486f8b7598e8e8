package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

const maxErrorBody = 16 << 10

// ErrMissingAction is returned when the widget form declares no target URL.
var ErrMissingAction = errors.New("compiler: widget form has no action")

// Request carries the two serialized forms of one compile call.
type Request struct {
	Widget payload.Form
	Skin   payload.Payload
}

// Body returns the widget fields followed by a single "skin" field whose value
// is the skin payload. Skin fields are never flattened into the widget list.
func (r Request) Body() payload.Payload {
	body := r.Widget.Fields.Clone()
	return body.Nest(payload.SkinFieldName, r.Skin)
}

// Result is a successful compile response.
type Result struct {
	Code string
	// Raw holds the full decoded response, including fields other than code.
	Raw map[string]any
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithClient overrides the HTTP client. Defaults to http.DefaultClient.
func WithClient(client *http.Client) Option {
	return func(c *Compiler) {
		if client != nil {
			c.client = client
		}
	}
}

// WithBaseURL resolves relative form actions against base.
func WithBaseURL(base string) Option {
	return func(c *Compiler) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for cache-busting parameters.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) {
		if now != nil {
			c.now = now
		}
	}
}

// Compiler submits compile requests to the remote widget compiler.
type Compiler struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// New constructs a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		client: http.DefaultClient,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Compile posts req to the widget form's action using its declared method
// and returns the generated code. Failures are reported as *ServerError when
// the endpoint answered with an error payload and as *NetworkError otherwise.
func (c *Compiler) Compile(ctx context.Context, req Request) (Result, error) {
	action := strings.TrimSpace(req.Widget.Action)
	if action == "" {
		return Result{}, ErrMissingAction
	}
	target := c.resolve(action)
	method := req.Widget.SubmitMethod()

	body, err := json.Marshal(req.Body())
	if err != nil {
		return Result{}, fmt.Errorf("compiler: encode request: %w", err)
	}

	var (
		status   int
		okBody   bytes.Buffer
		errBody  bytes.Buffer
		reqID    = uuid.NewString()
		httpFail bool
	)
	rb := requests.
		URL(target).
		Client(c.client).
		Method(method).
		BodyBytes(body).
		ContentType("application/json").
		Accept("application/json").
		Header("Cache-Control", "no-cache").
		Header("Pragma", "no-cache").
		Header("X-Requested-With", "XMLHttpRequest").
		Header("X-Request-ID", reqID).
		AddValidator(func(res *http.Response) error {
			status = res.StatusCode
			if res.StatusCode >= 200 && res.StatusCode < 300 {
				return nil
			}
			httpFail = true
			_, _ = io.Copy(&errBody, io.LimitReader(res.Body, maxErrorBody))
			return fmt.Errorf("unexpected status %d", res.StatusCode)
		}).
		ToBytesBuffer(&okBody)
	if method == http.MethodGet || method == http.MethodHead {
		rb.Param("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	}

	c.logger.Debug("compile request",
		zap.String("url", target),
		zap.String("method", method),
		zap.String("request_id", reqID),
		zap.Int("fields", len(req.Widget.Fields)),
		zap.Int("skin_fields", len(req.Skin)),
	)

	if err := rb.Fetch(ctx); err != nil {
		if httpFail {
			if serr := decodeServerError(errBody.Bytes(), status); serr != nil {
				c.logger.Info("compile rejected",
					zap.String("request_id", reqID),
					zap.String("type", serr.Type),
					zap.String("message", serr.Message),
				)
				return Result{}, serr
			}
		}
		nerr := &NetworkError{URL: target, Status: status, Err: err}
		c.logger.Warn("compile request failed", zap.String("request_id", reqID), zap.Error(nerr))
		return Result{}, nerr
	}

	return decodeResult(okBody.Bytes(), status)
}

func (c *Compiler) resolve(raw string) string {
	if c.baseURL == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return c.baseURL + raw
}

func decodeResult(data []byte, status int) (Result, error) {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, &ServerError{
			Type:    TypeInvalidResponse,
			Message: fmt.Sprintf("compile response is not JSON: %v", err),
			Status:  status,
		}
	}
	code, ok := raw["code"].(string)
	if !ok {
		if serr := serverErrorFrom(raw, status); serr != nil {
			return Result{}, serr
		}
		return Result{}, &ServerError{
			Type:    TypeInvalidResponse,
			Message: "compile response has no code",
			Status:  status,
		}
	}
	return Result{Code: code, Raw: raw}, nil
}

func decodeServerError(data []byte, status int) *ServerError {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return serverErrorFrom(raw, status)
}

func serverErrorFrom(raw map[string]any, status int) *ServerError {
	message, _ := raw["message"].(string)
	if strings.TrimSpace(message) == "" {
		return nil
	}
	kind, _ := raw["type"].(string)
	if strings.TrimSpace(kind) == "" {
		kind = TypeError
	}
	return &ServerError{Type: kind, Message: message, Status: status}
}
