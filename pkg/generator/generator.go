package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
	"github.com/goliatone/go-widgetgen/pkg/fragment"
	"github.com/goliatone/go-widgetgen/pkg/notify"
	"github.com/goliatone/go-widgetgen/pkg/page"
)

// Compiler is the remote compile collaborator. *compiler.Compiler satisfies it.
type Compiler interface {
	Compile(ctx context.Context, req compiler.Request) (compiler.Result, error)
}

// Callback receives a successful compile result.
type Callback func(compiler.Result)

// Selectors locate the generator's regions and controls in the page.
type Selectors struct {
	WidgetForm   string
	SkinForm     string
	WidgetSelect string
	SkinSelect   string
	Code         string
	Inputs       string
	Skins        string
	Form         string
}

// DefaultSelectors returns the selectors used by the admin widget screen.
func DefaultSelectors() Selectors {
	return Selectors{
		WidgetForm:   "#widgetForm",
		SkinForm:     "#skinForm",
		WidgetSelect: ".__xe_select_widget",
		SkinSelect:   ".__xe_select_widgetskin",
		Code:         ".__xe_widget_code",
		Inputs:       ".widget-inputs",
		Skins:        ".widget-skins",
		Form:         ".widget-form",
	}
}

func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&s.WidgetForm, def.WidgetForm)
	fill(&s.SkinForm, def.SkinForm)
	fill(&s.WidgetSelect, def.WidgetSelect)
	fill(&s.SkinSelect, def.SkinSelect)
	fill(&s.Code, def.Code)
	fill(&s.Inputs, def.Inputs)
	fill(&s.Skins, def.Skins)
	fill(&s.Form, def.Form)
	return s
}

// Option customises a Generator.
type Option func(*Generator)

// WithCompiler injects the compile collaborator. Defaults to compiler.New().
func WithCompiler(c Compiler) Option {
	return func(g *Generator) {
		if c != nil {
			g.compiler = c
		}
	}
}

// WithNotifier injects the notification collaborator. Defaults to notify.Nop.
func WithNotifier(n notify.Notifier) Option {
	return func(g *Generator) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSelectors overrides region selectors; empty entries keep defaults.
func WithSelectors(sel Selectors) Option {
	return func(g *Generator) {
		g.sel = sel.withDefaults()
	}
}

// WithCallback sets the completion callback used when generation is
// triggered by a GenerateClicked event.
func WithCallback(cb Callback) Option {
	return func(g *Generator) {
		g.callback = cb
	}
}

// Selection is the operator's current widget and skin choice.
type Selection struct {
	WidgetID string
	SkinID   string
}

// Generator drives the widget picker, compile and decompile flows against a
// page. All collaborators are injected at construction.
type Generator struct {
	page     *page.Page
	loader   fragment.Loader
	compiler Compiler
	notifier notify.Notifier
	logger   *zap.Logger
	sel      Selectors

	mu        sync.Mutex
	state     State
	selection Selection
	callback  Callback
	isBound   bool
}

// Open constructs a Generator bound to pg and initializes the fragment
// loader exactly once before returning.
func Open(ctx context.Context, pg *page.Page, loader fragment.Loader, opts ...Option) (*Generator, error) {
	if pg == nil {
		return nil, errors.New("generator: page is required")
	}
	if loader == nil {
		return nil, errors.New("generator: fragment loader is required")
	}
	g := &Generator{
		page:     pg,
		loader:   loader,
		notifier: notify.Nop,
		logger:   zap.NewNop(),
		sel:      DefaultSelectors(),
		state:    Idle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.compiler == nil {
		g.compiler = compiler.New(compiler.WithLogger(g.logger))
	}
	if initializer, ok := loader.(fragment.Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return nil, fmt.Errorf("generator: init fragment loader: %w", err)
		}
	}
	g.selection = Selection{
		WidgetID: pg.Value(g.sel.WidgetSelect),
		SkinID:   pg.Value(g.sel.SkinSelect),
	}
	return g, nil
}

// Page returns the page the generator renders into.
func (g *Generator) Page() *page.Page {
	return g.page
}

// Selectors returns the resolved selectors.
func (g *Generator) Selectors() Selectors {
	return g.sel
}

// State returns the current flow state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Selection returns the current widget and skin choice.
func (g *Generator) Selection() Selection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selection
}

// Code returns the contents of the code field.
func (g *Generator) Code() string {
	return g.page.Value(g.sel.Code)
}

// SetCode replaces the code field, as an operator edit would. A compile still
// in flight will not overwrite the edit.
func (g *Generator) SetCode(code string) error {
	return g.page.SetValue(g.sel.Code, code)
}

func (g *Generator) transition(next State, sel Selection) {
	g.mu.Lock()
	prev := g.state
	g.state = next
	g.selection = sel
	g.mu.Unlock()

	if prev != next {
		g.logger.Debug("generator state changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", next),
			zap.String("widget", sel.WidgetID),
			zap.String("skin", sel.SkinID),
		)
	}
}

func (g *Generator) bind() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.isBound {
		g.isBound = true
		g.logger.Debug("generator events bound")
	}
}

func (g *Generator) bound() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isBound
}

func (g *Generator) currentCallback() Callback {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.callback
}

func (g *Generator) setCallback(cb Callback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callback = cb
}
