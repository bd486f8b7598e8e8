package widgetcatalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

const (
	widgetField = "widget"
	skinIDField = "skin_id"
)

// ErrInvalidCode is returned when a code string cannot be parsed.
var ErrInvalidCode = errors.New("widgetcatalog: invalid widget code")

// Config is the normalized form state behind one code string.
type Config struct {
	WidgetID string
	SkinID   string
	Fields   payload.Payload
	Skin     payload.Payload
}

// ValidationError reports a missing or unacceptable field in a compile
// request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Field + " " + e.Reason
}

// Compile validates a compile request body against the catalog and returns
// its normalized config. Fields follow catalog order; unknown fields are
// dropped.
func (c *Catalog) Compile(body payload.Payload) (Config, error) {
	widgetID, _ := body.Get(widgetField)
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return Config{}, &ValidationError{Field: widgetField, Reason: "required"}
	}
	widget, ok := c.Widget(widgetID)
	if !ok {
		return Config{}, &ValidationError{Field: widgetField, Reason: "invalid"}
	}

	skinID, _ := body.Get(skinIDField)
	skinID = strings.TrimSpace(skinID)
	if skinID == "" {
		return Config{}, &ValidationError{Field: skinIDField, Reason: "required"}
	}
	skin, ok := widget.Skin(skinID)
	if !ok {
		return Config{}, &ValidationError{Field: skinIDField, Reason: "invalid"}
	}

	fields, err := collectValues(widget.Fields, body)
	if err != nil {
		return Config{}, err
	}
	skinBody, _ := body.Lookup(payload.SkinFieldName)
	skinFields, err := collectValues(skin.Fields, skinBody)
	if err != nil {
		return Config{}, err
	}
	return Config{WidgetID: widgetID, SkinID: skinID, Fields: fields, Skin: skinFields}, nil
}

func collectValues(defs []Field, body payload.Payload) (payload.Payload, error) {
	out := make(payload.Payload, 0, len(defs))
	for _, def := range defs {
		value, present := body.Get(def.Name)
		switch def.Kind {
		case KindCheckbox:
			if present && value != "" {
				value = CheckboxOn
			} else {
				value = ""
			}
		case KindSelect:
			if !present {
				value = def.Default
			}
			if !def.allows(value) {
				return nil, &ValidationError{Field: def.Name, Reason: "invalid"}
			}
		}
		if def.Required && strings.TrimSpace(value) == "" {
			return nil, &ValidationError{Field: def.Name, Reason: "required"}
		}
		out = out.Add(def.Name, value)
	}
	return out, nil
}

type xmlValue struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlSkin struct {
	Values []xmlValue `xml:",any"`
}

type xmlWidget struct {
	XMLName xml.Name   `xml:"xewidget"`
	ID      string     `xml:"id,attr"`
	SkinID  string     `xml:"skin-id,attr"`
	Values  []xmlValue `xml:",any"`
	Skin    *xmlSkin   `xml:"skin"`
}

// EncodeCode renders cfg as an embeddable code string.
func EncodeCode(cfg Config) (string, error) {
	doc := xmlWidget{
		ID:     cfg.WidgetID,
		SkinID: cfg.SkinID,
		Values: toXML(cfg.Fields),
		Skin:   &xmlSkin{Values: toXML(cfg.Skin)},
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("widgetcatalog: encode code: %w", err)
	}
	return string(out), nil
}

// DecodeCode parses a code string produced by EncodeCode. Whitespace around
// the code is ignored.
func DecodeCode(code string) (Config, error) {
	var doc xmlWidget
	if err := xml.Unmarshal([]byte(strings.TrimSpace(code)), &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	if strings.TrimSpace(doc.ID) == "" {
		return Config{}, fmt.Errorf("%w: missing widget id", ErrInvalidCode)
	}
	cfg := Config{
		WidgetID: strings.TrimSpace(doc.ID),
		SkinID:   strings.TrimSpace(doc.SkinID),
		Fields:   fromXML(doc.Values),
		Skin:     payload.Payload{},
	}
	if doc.Skin != nil {
		cfg.Skin = fromXML(doc.Skin.Values)
	}
	return cfg, nil
}

func toXML(values payload.Payload) []xmlValue {
	out := make([]xmlValue, 0, len(values))
	for _, field := range values {
		value, ok := field.String()
		if !ok {
			continue
		}
		out = append(out, xmlValue{XMLName: xml.Name{Local: field.Name}, Value: value})
	}
	return out
}

func fromXML(values []xmlValue) payload.Payload {
	out := make(payload.Payload, 0, len(values))
	for _, v := range values {
		out = out.Add(v.XMLName.Local, v.Value)
	}
	return out
}
