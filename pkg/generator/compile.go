package generator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
	"github.com/goliatone/go-widgetgen/pkg/page"
	"github.com/goliatone/go-widgetgen/pkg/payload"
)

// Generate serializes the widget and skin forms, submits them to the widget
// form's action and writes the returned code into the code field. cb, when
// non-nil, receives the result after the code field is updated.
//
// On failure the code field is left unchanged. Server and network failures
// are also sent to the notifier. A compile whose response arrives after a
// newer compile was issued, or after the code field was edited, is discarded
// and reported as ErrSuperseded without invoking cb.
func (g *Generator) Generate(ctx context.Context, cb Callback) (compiler.Result, error) {
	req, err := g.compileRequest()
	if err != nil {
		return compiler.Result{}, err
	}

	ticket := g.page.Begin(g.sel.Code)
	result, err := g.compiler.Compile(ctx, req)
	if err != nil {
		return compiler.Result{}, g.compileFailed(ctx, ticket, err)
	}
	if err := g.page.CommitValue(ticket, result.Code); err != nil {
		return compiler.Result{}, g.commitFailed("generate", g.sel.Code, err)
	}

	g.transition(CodeGenerated, g.Selection())
	g.logger.Info("widget code generated",
		zap.String("widget", g.Selection().WidgetID),
		zap.Int("length", len(result.Code)),
	)
	if cb != nil {
		cb(result)
	}
	return result, nil
}

func (g *Generator) compileRequest() (compiler.Request, error) {
	widget, err := g.page.Form(g.sel.WidgetForm)
	if errors.Is(err, page.ErrRegionNotFound) {
		return compiler.Request{}, g.usage("generate", ErrFormNotFound)
	}
	if err != nil {
		return compiler.Request{}, g.usage("generate", err)
	}

	skin, err := g.page.Form(g.sel.SkinForm)
	switch {
	case errors.Is(err, page.ErrRegionNotFound):
		skin = payload.Form{}
	case err != nil:
		return compiler.Request{}, g.usage("generate", err)
	}
	return compiler.Request{Widget: widget, Skin: skin.Fields}, nil
}
