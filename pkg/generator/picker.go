package generator

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/fragment"
	"github.com/goliatone/go-widgetgen/pkg/page"
)

// OnWidgetChange reacts to a new widget choice. The config form region is
// always emptied first. An empty id also empties the skin region and the code
// field; a non-empty id loads the skin list for that widget into the skin
// region.
func (g *Generator) OnWidgetChange(ctx context.Context, widgetID string) error {
	widgetID = strings.TrimSpace(widgetID)

	if _, err := g.page.Select(g.sel.WidgetSelect, widgetID); err != nil && !missingControl(err, widgetID) {
		return g.usage("select widget", err)
	}
	if err := g.page.Empty(g.sel.Form); err != nil {
		return g.usage("select widget", err)
	}

	if widgetID == "" {
		if err := g.page.Empty(g.sel.Skins); err != nil {
			return g.usage("clear widget", err)
		}
		if err := g.page.SetValue(g.sel.Code, ""); err != nil && !errors.Is(err, page.ErrRegionNotFound) {
			return g.usage("clear widget", err)
		}
		g.transition(Idle, Selection{})
		return nil
	}

	skinsURL, ok := g.page.Data(g.sel.Skins, "url")
	if !ok || strings.TrimSpace(skinsURL) == "" {
		return g.usage("select widget", errors.New("skin region has no data-url"))
	}

	ticket := g.page.Begin(g.sel.Skins)
	g.logger.Debug("loading skins", zap.String("widget", widgetID), zap.String("url", skinsURL))
	markup, err := g.loader.Load(ctx, fragment.Request{
		URL:  skinsURL,
		Data: url.Values{"widget": {widgetID}},
	})
	if err != nil {
		return g.fragmentFailed(ctx, "load skins", ticket, err)
	}
	if err := g.page.CommitHTML(ticket, markup); err != nil {
		return g.commitFailed("load skins", g.sel.Skins, err)
	}
	g.transition(WidgetChosen, Selection{WidgetID: widgetID})
	return nil
}

// OnSkinChange reacts to a new skin choice. A non-empty id loads the skin's
// config form from the URL carried in the selected option's data-url into
// the config form region. An empty id empties that region and issues no
// request.
func (g *Generator) OnSkinChange(ctx context.Context, skinID string) error {
	skinID = strings.TrimSpace(skinID)
	widget := g.Selection().WidgetID

	if skinID == "" {
		if _, err := g.page.Select(g.sel.SkinSelect, ""); err != nil && !missingControl(err, "") {
			return g.usage("clear skin", err)
		}
		if err := g.page.Empty(g.sel.Form); err != nil {
			return g.usage("clear skin", err)
		}
		next := Idle
		if widget != "" {
			next = WidgetChosen
		}
		g.transition(next, Selection{WidgetID: widget})
		return nil
	}

	option, err := g.page.Select(g.sel.SkinSelect, skinID)
	if err != nil {
		return g.usage("select skin", err)
	}
	formURL := strings.TrimSpace(option.Data["url"])
	if formURL == "" {
		return g.usage("select skin", errors.New("skin option has no data-url"))
	}

	ticket := g.page.Begin(g.sel.Form)
	g.logger.Debug("loading skin form", zap.String("skin", skinID), zap.String("url", formURL))
	markup, err := g.loader.Load(ctx, fragment.Request{URL: formURL})
	if err != nil {
		return g.fragmentFailed(ctx, "load skin form", ticket, err)
	}
	if err := g.page.CommitHTML(ticket, markup); err != nil {
		return g.commitFailed("load skin form", g.sel.Form, err)
	}
	g.transition(SkinChosen, Selection{WidgetID: widget, SkinID: skinID})
	return nil
}

// missingControl reports errors a picker tolerates: the select is not in the
// page, or an empty value has no placeholder option to mark.
func missingControl(err error, value string) bool {
	if errors.Is(err, page.ErrRegionNotFound) {
		return true
	}
	return value == "" && errors.Is(err, page.ErrOptionNotFound)
}
