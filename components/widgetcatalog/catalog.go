package widgetcatalog

import (
	"embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

//go:embed data/catalog.yaml
var dataFS embed.FS

const defaultCatalogPath = "data/catalog.yaml"

// Field kinds understood by the form templates.
const (
	KindText     = "text"
	KindTextarea = "textarea"
	KindSelect   = "select"
	KindCheckbox = "checkbox"
)

// CheckboxOn is the value submitted by a checked checkbox field.
const CheckboxOn = "1"

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Catalog lists the widgets offered by the generator and their skins.
type Catalog struct {
	Widgets []Widget `yaml:"widgets"`
}

// Widget is a configurable content block.
type Widget struct {
	ID     string  `yaml:"id"`
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
	Skins  []Skin  `yaml:"skins"`
}

// Skin is a presentation variant of a widget.
type Skin struct {
	ID     string  `yaml:"id"`
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
}

// Field describes one input of a widget or skin form.
type Field struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Kind     string   `yaml:"kind"`
	Required bool     `yaml:"required"`
	Default  string   `yaml:"default"`
	Options  []Choice `yaml:"options"`
}

// Choice is one option of a select field.
type Choice struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultCatalogPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		defaultCatalog, defaultErr = LoadCatalog(f)
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultCatalog, nil
}

// LoadCatalog parses a YAML catalog and validates it.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	if r == nil {
		return nil, fmt.Errorf("widgetcatalog: missing reader")
	}
	var cat Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("widgetcatalog: decode catalog: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Widget returns the widget with id.
func (c *Catalog) Widget(id string) (Widget, bool) {
	if c == nil {
		return Widget{}, false
	}
	for _, w := range c.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// IDs lists widget ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Widgets))
	for _, w := range c.Widgets {
		ids = append(ids, w.ID)
	}
	return ids
}

// Skin returns the skin of w with id.
func (w Widget) Skin(id string) (Skin, bool) {
	for _, s := range w.Skins {
		if s.ID == id {
			return s, true
		}
	}
	return Skin{}, false
}

// SkinIDs lists skin ids in catalog order.
func (w Widget) SkinIDs() []string {
	ids := make([]string, 0, len(w.Skins))
	for _, s := range w.Skins {
		ids = append(ids, s.ID)
	}
	return ids
}

func (c *Catalog) validate() error {
	if len(c.Widgets) == 0 {
		return fmt.Errorf("widgetcatalog: catalog defines no widgets")
	}
	seen := map[string]struct{}{}
	for i := range c.Widgets {
		w := &c.Widgets[i]
		w.ID = strings.TrimSpace(w.ID)
		if w.ID == "" {
			return fmt.Errorf("widgetcatalog: widget %d has no id", i)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("widgetcatalog: duplicate widget %q", w.ID)
		}
		seen[w.ID] = struct{}{}
		if err := validateFields(w.Fields, "widget "+w.ID); err != nil {
			return err
		}
		skins := map[string]struct{}{}
		for j := range w.Skins {
			s := &w.Skins[j]
			s.ID = strings.TrimSpace(s.ID)
			if s.ID == "" {
				return fmt.Errorf("widgetcatalog: widget %q skin %d has no id", w.ID, j)
			}
			if _, dup := skins[s.ID]; dup {
				return fmt.Errorf("widgetcatalog: widget %q: duplicate skin %q", w.ID, s.ID)
			}
			skins[s.ID] = struct{}{}
			if err := validateFields(s.Fields, "skin "+w.ID+"/"+s.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFields(fields []Field, owner string) error {
	seen := map[string]struct{}{}
	for i := range fields {
		f := &fields[i]
		f.Name = strings.TrimSpace(f.Name)
		if !fieldName.MatchString(f.Name) {
			return fmt.Errorf("widgetcatalog: %s: invalid field name %q", owner, f.Name)
		}
		if isReservedName(f.Name) {
			return fmt.Errorf("widgetcatalog: %s: field name %q is reserved", owner, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("widgetcatalog: %s: duplicate field %q", owner, f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.Kind == "" {
			f.Kind = KindText
		}
		switch f.Kind {
		case KindText, KindTextarea, KindCheckbox:
		case KindSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("widgetcatalog: %s: select %q has no options", owner, f.Name)
			}
		default:
			return fmt.Errorf("widgetcatalog: %s: field %q has unknown kind %q", owner, f.Name, f.Kind)
		}
		if f.Label == "" {
			f.Label = f.Name
		}
	}
	return nil
}

func isReservedName(name string) bool {
	switch name {
	case payload.SkinFieldName, widgetField, skinIDField:
		return true
	}
	return false
}

func (f Field) allows(value string) bool {
	if f.Kind != KindSelect {
		return true
	}
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
