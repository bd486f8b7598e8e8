package widgetcatalog

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

const maxBody = 1 << 20

// Error types returned in compile error payloads.
const (
	ErrorTypeValidation     = "validation"
	ErrorTypeInvalidRequest = "invalid_request"
	ErrorTypeInternal       = "internal"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type compileResponse struct {
	Code   string `json:"code"`
	Widget string `json:"widget"`
	Skin   string `json:"skin"`
}

type errorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler builds a net/http handler serving every catalog route at its
// configured path.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
// Routes are served under opts.BasePath.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	srv, err := newServer(opts)
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			opts.Logger.Error("widget catalog unavailable", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	}
	mux := http.NewServeMux()
	for _, rt := range srv.routes() {
		mux.Handle(mountPath(opts.BasePath, rt.path), rt.handler)
	}
	return mux
}

type route struct {
	path    string
	handler http.Handler
}

type server struct {
	opts     Options
	catalog  *Catalog
	renderer *Renderer
	links    links
	logger   *zap.Logger
}

func newServer(opts Options) (*server, error) {
	cat := opts.Catalog
	if cat == nil {
		loaded, err := DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("widgetcatalog: load default catalog: %w", err)
		}
		cat = loaded
	}
	renderer := opts.Renderer
	if renderer == nil {
		r, err := NewRenderer(nil)
		if err != nil {
			return nil, err
		}
		renderer = r
	}
	return &server{
		opts:     opts,
		catalog:  cat,
		renderer: renderer,
		links:    opts.links(),
		logger:   opts.Logger,
	}, nil
}

func (s *server) routes() []route {
	return []route{
		{path: s.opts.GeneratePath, handler: s.guarded(s.serveGenerate, http.MethodGet, http.MethodHead, http.MethodPost)},
		{path: s.opts.SkinsPath, handler: s.guarded(s.serveSkins, http.MethodGet, http.MethodHead)},
		{path: s.opts.SkinFormPath, handler: s.guarded(s.serveSkinForm, http.MethodGet, http.MethodHead)},
		{path: s.opts.SetupPath, handler: s.guarded(s.serveSetup, http.MethodGet, http.MethodHead, http.MethodPost)},
		{path: s.opts.AssetPath, handler: s.guarded(s.serveAsset, http.MethodGet, http.MethodHead)},
	}
}

func (s *server) guarded(next http.HandlerFunc, methods ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if !allowed(r.Method, methods) {
			w.Header().Set("Allow", strings.Join(methods, ", "))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if s.opts.Guard != nil {
			if err := s.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		if id := r.Header.Get("X-Request-ID"); id != "" {
			w.Header().Set("X-Request-ID", id)
		}
		s.logger.Debug("widget catalog request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
		)
		next(w, r)
	})
}

func (s *server) serveGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.serveCompile(w, r)
		return
	}
	ctx := inputsContext(s.catalog, s.links, Config{})
	ctx["title"] = s.opts.Title
	ctx["setup_url"] = s.links.setup
	ctx["asset_url"] = s.links.asset
	ctx["code"] = ""
	s.writeHTML(w, r, "page", ctx)
}

func (s *server) serveSkins(w http.ResponseWriter, r *http.Request) {
	widgetID := strings.TrimSpace(r.URL.Query().Get(s.opts.WidgetParam))
	if widgetID == "" {
		s.writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("%s is required", s.opts.WidgetParam)})
		return
	}
	widget, ok := s.catalog.Widget(widgetID)
	if !ok {
		s.writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("unknown widget %q", widgetID)})
		return
	}
	s.writeHTML(w, r, "skins", pongo2.Context{
		"widget_fields": fieldViews("widget", widget.Fields, nil),
		"skins":         skinViews(s.links, widget, ""),
	})
}

func (s *server) serveSkinForm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	widgetID := strings.TrimSpace(query.Get(s.opts.WidgetParam))
	skinID := strings.TrimSpace(query.Get(s.opts.SkinParam))
	widget, ok := s.catalog.Widget(widgetID)
	if !ok {
		s.writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("unknown widget %q", widgetID)})
		return
	}
	skin, ok := widget.Skin(skinID)
	if !ok {
		s.writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("unknown skin %q for widget %q", skinID, widgetID)})
		return
	}
	s.writeHTML(w, r, "skin_form", pongo2.Context{
		"skin_fields": fieldViews("skin", skin.Fields, nil),
	})
}

// serveSetup renders the inputs region for a code string. An empty code
// yields the default form with nothing selected.
func (s *server) serveSetup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	code := r.Form.Get(s.opts.CodeParam)

	var cfg Config
	if strings.TrimSpace(code) != "" {
		decoded, err := DecodeCode(code)
		if err != nil {
			s.writeError(w, StatusError{Code: http.StatusUnprocessableEntity, Err: err})
			return
		}
		if _, ok := s.catalog.Widget(decoded.WidgetID); !ok {
			s.writeError(w, StatusError{Code: http.StatusUnprocessableEntity, Err: fmt.Errorf("unknown widget %q", decoded.WidgetID)})
			return
		}
		cfg = decoded
	}
	s.writeHTML(w, r, "inputs", inputsContext(s.catalog, s.links, cfg))
}

func (s *server) serveAsset(w http.ResponseWriter, r *http.Request) {
	body, err := s.renderer.Render("asset", pongo2.Context{
		"setup_url":    s.links.setup,
		"generate_url": s.links.generate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, body)
}

func (s *server) serveCompile(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Type: ErrorTypeInvalidRequest, Message: err.Error()})
		return
	}
	body, err := payload.Decode(data)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Type: ErrorTypeInvalidRequest, Message: err.Error()})
		return
	}

	cfg, err := s.catalog.Compile(body)
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		s.logger.Info("widget compile rejected", zap.String("field", verr.Field), zap.String("reason", verr.Reason))
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Type: ErrorTypeValidation, Message: verr.Error()})
		return
	case err != nil:
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Type: ErrorTypeInternal, Message: err.Error()})
		return
	}

	code, err := EncodeCode(cfg)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Type: ErrorTypeInternal, Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, compileResponse{Code: code, Widget: cfg.WidgetID, Skin: cfg.SkinID})
}

func (s *server) writeHTML(w http.ResponseWriter, r *http.Request, name string, ctx pongo2.Context) {
	body, err := s.renderer.Render(name, ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, body)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("widget catalog failure", zap.Error(err))
		http.Error(w, http.StatusText(code), code)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func allowed(method string, methods []string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
