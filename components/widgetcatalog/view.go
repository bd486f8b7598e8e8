package widgetcatalog

import (
	"net/url"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

type links struct {
	generate string
	skins    string
	skinForm string
	setup    string
	asset    string
}

func (l links) skinFormURL(widgetID, skinID string) string {
	q := url.Values{}
	q.Set("widget", widgetID)
	q.Set("skin", skinID)
	return l.skinForm + "?" + q.Encode()
}

func fieldViews(prefix string, defs []Field, values payload.Payload) []map[string]any {
	out := make([]map[string]any, 0, len(defs))
	for _, def := range defs {
		value, ok := values.Get(def.Name)
		if !ok {
			value = def.Default
		}
		view := map[string]any{
			"id":       prefix + "-" + def.Name,
			"name":     def.Name,
			"label":    def.Label,
			"kind":     def.Kind,
			"value":    value,
			"required": def.Required,
			"on":       CheckboxOn,
			"checked":  def.Kind == KindCheckbox && value == CheckboxOn,
		}
		if def.Kind == KindSelect {
			options := make([]map[string]any, 0, len(def.Options))
			for _, opt := range def.Options {
				label := opt.Label
				if label == "" {
					label = opt.Value
				}
				options = append(options, map[string]any{
					"value":    opt.Value,
					"label":    label,
					"selected": opt.Value == value,
				})
			}
			view["options"] = options
		}
		out = append(out, view)
	}
	return out
}

func skinViews(l links, w Widget, selected string) []map[string]any {
	out := make([]map[string]any, 0, len(w.Skins))
	for _, s := range w.Skins {
		title := s.Title
		if title == "" {
			title = s.ID
		}
		out = append(out, map[string]any{
			"id":       s.ID,
			"title":    title,
			"url":      l.skinFormURL(w.ID, s.ID),
			"selected": s.ID == selected,
		})
	}
	return out
}

// inputsContext builds the context shared by the page shell and the setup
// fragment. cfg may be empty, in which case nothing is selected.
func inputsContext(cat *Catalog, l links, cfg Config) pongo2.Context {
	widgets := make([]map[string]any, 0, len(cat.Widgets))
	for _, w := range cat.Widgets {
		title := w.Title
		if title == "" {
			title = w.ID
		}
		widgets = append(widgets, map[string]any{
			"id":       w.ID,
			"title":    title,
			"selected": w.ID == cfg.WidgetID,
		})
	}
	ctx := pongo2.Context{
		"generate_url": l.generate,
		"skins_url":    l.skins,
		"widgets":      widgets,
		"has_widget":   false,
		"has_skin":     false,
	}

	widget, ok := cat.Widget(cfg.WidgetID)
	if !ok {
		return ctx
	}
	ctx["has_widget"] = true
	ctx["widget_fields"] = fieldViews("widget", widget.Fields, cfg.Fields)
	ctx["skins"] = skinViews(l, widget, cfg.SkinID)

	skin, ok := widget.Skin(cfg.SkinID)
	if !ok {
		return ctx
	}
	ctx["has_skin"] = true
	ctx["skin_fields"] = fieldViews("skin", skin.Fields, cfg.Skin)
	return ctx
}
