// Package widgetgen opens a widget generator against a live admin widget
// screen. It is the shortest path for callers that have a page URL and want a
// bound generator wired with HTTP fragment loading and remote compilation.
package widgetgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
	"github.com/goliatone/go-widgetgen/pkg/fragment"
	"github.com/goliatone/go-widgetgen/pkg/generator"
	"github.com/goliatone/go-widgetgen/pkg/notify"
	"github.com/goliatone/go-widgetgen/pkg/page"
)

// Generator aliases generator.Generator for callers that only import the
// top-level package.
type Generator = generator.Generator

// Selectors aliases generator.Selectors.
type Selectors = generator.Selectors

// Notice aliases notify.Notice.
type Notice = notify.Notice

// supportScript locates the script the screen declares as its fragment
// runtime.
const supportScript = "head script[src]"

// Option customises Open.
type Option func(*options)

type options struct {
	client    *http.Client
	logger    *zap.Logger
	notifiers []notify.Notifier
	selectors Selectors
	sanitize  bool
}

// WithHTTPClient sets the client used for the page, fragments and compiles.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithLogger sets the logger shared by every collaborator.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier adds a notifier. Without one, notices are logged at warn
// level.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifiers = append(o.notifiers, n)
		}
	}
}

// WithSelectors overrides region selectors; empty entries keep defaults.
func WithSelectors(sel Selectors) Option {
	return func(o *options) {
		o.selectors = sel
	}
}

// WithoutSanitizer injects fragments verbatim instead of filtering them
// through fragment.FormPolicy.
func WithoutSanitizer() Option {
	return func(o *options) {
		o.sanitize = false
	}
}

// Open fetches the page at pageURL, initializes the fragment loader and
// returns a generator with its events bound.
func Open(ctx context.Context, pageURL string, opts ...Option) (*Generator, error) {
	o := options{
		client:   http.DefaultClient,
		logger:   zap.NewNop(),
		sanitize: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	target, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("widgetgen: page url %q must be absolute", pageURL)
	}
	base := target.Scheme + "://" + target.Host

	shell, err := fragment.NewHTTPLoader(
		fragment.WithClient(o.client),
		fragment.WithLogger(o.logger),
	).Load(ctx, fragment.Request{URL: target.String()})
	if err != nil {
		return nil, fmt.Errorf("widgetgen: load page: %w", err)
	}
	var pageOpts []page.Option
	if o.sanitize {
		pageOpts = append(pageOpts, page.WithSanitizer(fragment.FormPolicy()))
	}
	pg, err := page.New(shell, pageOpts...)
	if err != nil {
		return nil, fmt.Errorf("widgetgen: parse page: %w", err)
	}

	loaderOpts := []fragment.HTTPOption{
		fragment.WithClient(o.client),
		fragment.WithBaseURL(base),
		fragment.WithLogger(o.logger),
	}
	if asset, ok := pg.Attr(supportScript, "src"); ok && strings.TrimSpace(asset) != "" {
		loaderOpts = append(loaderOpts, fragment.WithSupportAsset(asset))
	}

	notifiers := o.notifiers
	if len(notifiers) == 0 {
		notifiers = []notify.Notifier{notify.NewLogger(o.logger)}
	}
	gen, err := generator.Open(ctx, pg, fragment.NewHTTPLoader(loaderOpts...),
		generator.WithCompiler(compiler.New(
			compiler.WithClient(o.client),
			compiler.WithBaseURL(base),
			compiler.WithLogger(o.logger),
		)),
		generator.WithNotifier(notify.Multi(notifiers...)),
		generator.WithLogger(o.logger),
		generator.WithSelectors(o.selectors),
	)
	if err != nil {
		return nil, err
	}
	if _, err := gen.Do(ctx, generator.Bind{}); err != nil {
		return nil, err
	}
	return gen, nil
}
