package widgetcatalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

const templateExt = ".tpl"

// Renderer executes the catalog's pongo2 templates.
type Renderer struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewRenderer builds a renderer over files. A nil files uses the embedded
// templates.
func NewRenderer(files fs.FS) (*Renderer, error) {
	if files == nil {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("widgetcatalog: open templates: %w", err)
		}
		files = sub
	}
	return &Renderer{
		set:       pongo2.NewSet("widgetcatalog", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data pongo2.Context) (string, error) {
	if r == nil || r.set == nil {
		return "", errors.New("widgetcatalog: renderer is nil")
	}
	path := name
	if !strings.HasSuffix(path, templateExt) {
		path += templateExt
	}
	tmpl, err := r.template(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	r.mu.RLock()
	err = tmpl.ExecuteWriter(data, &buf)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("widgetcatalog: execute template %q: %w", path, err)
	}
	return buf.String(), nil
}

func (r *Renderer) template(path string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[path]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("widgetcatalog: load template %q: %w", path, err)
	}
	r.templates[path] = tmpl
	return tmpl, nil
}
