package generator

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/fragment"
)

// Decompile asks url to render the form state encoded by code and replaces
// the contents of target with the response. The request is issued even when
// code is empty. Regions nested inside target are invalidated, so responses
// still pending for them are discarded.
func (g *Generator) Decompile(ctx context.Context, rawURL, code, target string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return g.usage("decompile", errors.New("url is required"))
	}
	if strings.TrimSpace(target) == "" {
		return g.usage("decompile", errors.New("target is required"))
	}

	ticket := g.page.Begin(target)
	g.logger.Debug("decompiling widget code",
		zap.String("url", rawURL),
		zap.String("target", target),
		zap.Int("length", len(code)),
	)
	markup, err := g.loader.Load(ctx, fragment.Request{
		URL:  rawURL,
		Data: url.Values{"code": {code}},
	})
	if err != nil {
		return g.fragmentFailed(ctx, "decompile", ticket, err)
	}
	if err := g.page.CommitHTML(ticket, markup); err != nil {
		return g.commitFailed("decompile", target, err)
	}

	sel := Selection{
		WidgetID: g.page.Value(g.sel.WidgetSelect),
		SkinID:   g.page.Value(g.sel.SkinSelect),
	}
	g.transition(stateOf(sel), sel)
	return nil
}

// stateOf derives the picker state a rebuilt page is in.
func stateOf(sel Selection) State {
	switch {
	case sel.WidgetID == "":
		return Idle
	case sel.SkinID == "":
		return WidgetChosen
	default:
		return SkinChosen
	}
}

// Reset decompiles the current code field into the inputs region using the
// URL the region carries in its data-url attribute.
func (g *Generator) Reset(ctx context.Context) error {
	setupURL, ok := g.page.Data(g.sel.Inputs, "url")
	if !ok {
		return g.usage("reset", errors.New("inputs region has no data-url"))
	}
	return g.Decompile(ctx, setupURL, g.Code(), g.sel.Inputs)
}
