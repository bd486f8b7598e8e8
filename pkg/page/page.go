package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

var (
	// ErrRegionNotFound is returned when a selector matches nothing in the
	// current document.
	ErrRegionNotFound = errors.New("page: region not found")
	// ErrStale is returned when a ticket was superseded by a newer request or
	// by a mutation of an enclosing region.
	ErrStale = errors.New("page: stale ticket")
	// ErrOptionNotFound is returned by Select when no option carries the
	// requested value.
	ErrOptionNotFound = errors.New("page: option not found")
)

// Sanitizer cleans fragment markup before it is injected. *bluemonday.Policy
// satisfies it.
type Sanitizer interface {
	Sanitize(string) string
}

// Option configures a Page.
type Option func(*Page)

// WithSanitizer filters every fragment committed into the page.
func WithSanitizer(s Sanitizer) Option {
	return func(p *Page) {
		p.sanitizer = s
	}
}

// Ticket identifies one pending request against a region. Only the most
// recently issued ticket of a region can commit.
type Ticket struct {
	Selector string
	Seq      uint64
}

// Page is an in-memory HTML document whose regions are addressed by CSS
// selectors. It is safe for concurrent use.
type Page struct {
	mu        sync.Mutex
	doc       *html.Node
	tokens    map[string]uint64
	selectors map[string]cascadia.Selector
	sanitizer Sanitizer
}

// New parses markup into a Page.
func New(markup string, opts ...Option) (*Page, error) {
	return Parse(strings.NewReader(markup), opts...)
}

// Parse reads a full HTML document into a Page.
func Parse(r io.Reader, opts ...Option) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("page: parse document: %w", err)
	}
	p := &Page{
		doc:       doc,
		tokens:    make(map[string]uint64),
		selectors: make(map[string]cascadia.Selector),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Begin issues a new ticket for selector, invalidating any ticket issued
// before it.
func (p *Page) Begin(selector string) Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[selector]++
	return Ticket{Selector: selector, Seq: p.tokens[selector]}
}

// Current reports whether t is still the latest ticket of its region.
func (p *Page) Current(t Ticket) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens[t.Selector] == t.Seq
}

// CommitHTML replaces the contents of the ticket's region with fragment.
func (p *Page) CommitHTML(t Ticket, fragment string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokens[t.Selector] != t.Seq {
		return fmt.Errorf("%w: %s", ErrStale, t.Selector)
	}
	node, err := p.find(t.Selector)
	if err != nil {
		return err
	}
	return p.replaceChildren(node, t.Selector, fragment)
}

// ReplaceHTML replaces the contents of selector immediately.
func (p *Page) ReplaceHTML(selector, fragment string) error {
	return p.CommitHTML(p.Begin(selector), fragment)
}

// Empty removes every child of selector and invalidates pending tickets for
// it and for the regions it contains. A missing region is not an error.
func (p *Page) Empty(selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tokens[selector]++
	node, err := p.find(selector)
	if errors.Is(err, ErrRegionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p.invalidateWithin(node, selector)
	removeChildren(node)
	return nil
}

// Exists reports whether selector matches an element.
func (p *Page) Exists(selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	node, err := p.find(selector)
	return err == nil && node != nil
}

// HTML renders the inner markup of selector.
func (p *Page) HTML(selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.find(selector)
	if err != nil {
		return "", err
	}
	return innerHTML(node)
}

// Attr returns an attribute of the first element matching selector.
func (p *Page) Attr(selector, key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.find(selector)
	if err != nil {
		return "", false
	}
	return lookupAttr(node, key)
}

// Data returns the data-* attribute of the first element matching selector.
func (p *Page) Data(selector, key string) (string, bool) {
	return p.Attr(selector, "data-"+key)
}

// Value returns the current value of an input, textarea or select.
func (p *Page) Value(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.find(selector)
	if err != nil {
		return ""
	}
	return controlValue(node)
}

// SetValue writes value into a control and invalidates pending tickets for it.
func (p *Page) SetValue(selector, value string) error {
	return p.CommitValue(p.Begin(selector), value)
}

// CommitValue writes value into the ticket's control.
func (p *Page) CommitValue(t Ticket, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokens[t.Selector] != t.Seq {
		return fmt.Errorf("%w: %s", ErrStale, t.Selector)
	}
	node, err := p.find(t.Selector)
	if err != nil {
		return err
	}
	setControlValue(node, value)
	return nil
}

// Form serializes the form matching selector.
func (p *Page) Form(selector string) (payload.Form, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.find(selector)
	if err != nil {
		return payload.Form{}, err
	}
	if node.DataAtom != atom.Form {
		return payload.Form{}, fmt.Errorf("page: %s is <%s>, not a form", selector, node.Data)
	}
	return payload.Serialize(node), nil
}

// Render writes the whole document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return html.Render(w, p.doc)
}

// String renders the whole document, returning an empty string on failure.
func (p *Page) String() string {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (p *Page) find(selector string) (*html.Node, error) {
	sel, err := p.compile(selector)
	if err != nil {
		return nil, err
	}
	node := sel.MatchFirst(p.doc)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrRegionNotFound, selector)
	}
	return node, nil
}

func (p *Page) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := p.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("page: invalid selector %q: %w", selector, err)
	}
	p.selectors[selector] = sel
	return sel, nil
}

func (p *Page) replaceChildren(node *html.Node, selector, fragment string) error {
	if p.sanitizer != nil {
		fragment = p.sanitizer.Sanitize(fragment)
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), contextNode(node))
	if err != nil {
		return fmt.Errorf("page: parse fragment for %s: %w", selector, err)
	}
	p.invalidateWithin(node, selector)
	removeChildren(node)
	for _, child := range nodes {
		node.AppendChild(child)
	}
	return nil
}

// invalidateWithin bumps the ticket of every tracked region located inside
// root, since replacing root detaches those regions.
func (p *Page) invalidateWithin(root *html.Node, except string) {
	for selector := range p.tokens {
		if selector == except {
			continue
		}
		sel, err := p.compile(selector)
		if err != nil {
			continue
		}
		if node := sel.MatchFirst(p.doc); node != nil && isDescendant(node, root) {
			p.tokens[selector]++
		}
	}
}

func contextNode(node *html.Node) *html.Node {
	if node.Type == html.ElementNode {
		return &html.Node{Type: html.ElementNode, Data: node.Data, DataAtom: node.DataAtom}
	}
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

func isDescendant(node, root *html.Node) bool {
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if parent == root {
			return true
		}
	}
	return false
}

func removeChildren(node *html.Node) {
	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		node.RemoveChild(child)
		child = next
	}
}

func innerHTML(node *html.Node) (string, error) {
	var buf bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", fmt.Errorf("page: render: %w", err)
		}
	}
	return buf.String(), nil
}
