package page

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

// SelectOption describes an <option> and its data-* metadata.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
	Data     map[string]string
}

// Control describes a named form control, used by callers that want to fill
// a rendered form field by field.
type Control struct {
	Name     string
	Kind     string
	Label    string
	Value    string
	Options  []SelectOption
	Required bool
	// Checked reports the state of a checkbox or radio control.
	Checked bool
}

// Options lists the options of the select matching selector.
func (p *Page) Options(selector string) ([]SelectOption, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.find(selector)
	if err != nil {
		return nil, err
	}
	return collectOptions(node), nil
}

// Select marks the option carrying value as the only selected option of the
// select matching selector and returns it.
func (p *Page) Select(selector, value string) (SelectOption, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.find(selector)
	if err != nil {
		return SelectOption{}, err
	}
	return selectOption(node, value, selector)
}

// SetField assigns value to the first control named name inside the form
// matching formSelector. Checkboxes are checked when value is non-empty and
// not "0"/"false"; radios check the member whose value matches.
func (p *Page) SetField(formSelector, name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	form, err := p.find(formSelector)
	if err != nil {
		return err
	}
	controls := namedControls(form, name)
	if len(controls) == 0 {
		return fmt.Errorf("%w: %s [name=%q]", ErrRegionNotFound, formSelector, name)
	}

	first := controls[0]
	switch {
	case first.DataAtom == atom.Input && strings.EqualFold(attrOf(first, "type"), "radio"):
		for _, radio := range controls {
			setBoolAttr(radio, "checked", attrOf(radio, "value") == value)
		}
	case first.DataAtom == atom.Input && strings.EqualFold(attrOf(first, "type"), "checkbox"):
		setBoolAttr(first, "checked", truthy(value))
	case first.DataAtom == atom.Select:
		if _, err := selectOption(first, value, name); err != nil {
			return err
		}
	default:
		setControlValue(first, value)
	}
	return nil
}

// Controls lists the named controls of the form matching formSelector in
// document order, one entry per name.
func (p *Page) Controls(formSelector string) ([]Control, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	form, err := p.find(formSelector)
	if err != nil {
		return nil, err
	}
	labels := collectLabels(form)

	var out []Control
	seen := make(map[string]struct{})
	walkNodes(form, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.DataAtom != atom.Input && n.DataAtom != atom.Select && n.DataAtom != atom.Textarea {
			return true
		}
		name := attrOf(n, "name")
		if name == "" {
			return false
		}
		if _, dup := seen[name]; dup {
			return false
		}
		kind := n.Data
		if n.DataAtom == atom.Input {
			kind = strings.ToLower(attrOf(n, "type"))
			if kind == "" {
				kind = "text"
			}
			if kind == "submit" || kind == "button" || kind == "reset" || kind == "image" {
				return false
			}
		}
		seen[name] = struct{}{}
		control := Control{
			Name:     name,
			Kind:     kind,
			Label:    labels[attrOf(n, "id")],
			Value:    controlValue(n),
			Required: hasAttrOf(n, "required"),
			Checked:  hasAttrOf(n, "checked"),
		}
		if control.Label == "" {
			control.Label = name
		}
		if n.DataAtom == atom.Select {
			control.Options = collectOptions(n)
		}
		out = append(out, control)
		return false
	})
	return out, nil
}

func collectLabels(form *html.Node) map[string]string {
	labels := make(map[string]string)
	walkNodes(form, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Label {
			if target := attrOf(n, "for"); target != "" {
				labels[target] = strings.Join(strings.Fields(textOf(n)), " ")
			}
			return false
		}
		return true
	})
	return labels
}

func namedControls(form *html.Node, name string) []*html.Node {
	var out []*html.Node
	walkNodes(form, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Input, atom.Select, atom.Textarea:
			if attrOf(n, "name") == name {
				out = append(out, n)
			}
			return false
		}
		return true
	})
	return out
}

func collectOptions(node *html.Node) []SelectOption {
	var out []SelectOption
	walkNodes(node, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Option {
			return true
		}
		out = append(out, describeOption(n))
		return false
	})
	return out
}

func describeOption(n *html.Node) SelectOption {
	opt := SelectOption{
		Value:    payload.OptionValue(n),
		Label:    strings.Join(strings.Fields(textOf(n)), " "),
		Selected: hasAttrOf(n, "selected"),
	}
	for _, a := range n.Attr {
		if key, ok := strings.CutPrefix(a.Key, "data-"); ok {
			if opt.Data == nil {
				opt.Data = make(map[string]string)
			}
			opt.Data[key] = a.Val
		}
	}
	return opt
}

func selectOption(node *html.Node, value, selector string) (SelectOption, error) {
	var (
		match *html.Node
		all   []*html.Node
	)
	walkNodes(node, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Option {
			return true
		}
		all = append(all, n)
		if match == nil && payload.OptionValue(n) == value {
			match = n
		}
		return false
	})
	if match == nil {
		return SelectOption{}, fmt.Errorf("%w: %s value %q", ErrOptionNotFound, selector, value)
	}
	for _, opt := range all {
		setBoolAttr(opt, "selected", opt == match)
	}
	return describeOption(match), nil
}

func controlValue(n *html.Node) string {
	switch n.DataAtom {
	case atom.Textarea:
		return textOf(n)
	case atom.Select:
		var selected, first string
		found, seenFirst := false, false
		walkNodes(n, func(child *html.Node) bool {
			if child.Type != html.ElementNode || child.DataAtom != atom.Option {
				return true
			}
			if !seenFirst {
				first, seenFirst = payload.OptionValue(child), true
			}
			if hasAttrOf(child, "selected") {
				selected, found = payload.OptionValue(child), true
			}
			return false
		})
		if found {
			return selected
		}
		return first
	default:
		return attrOf(n, "value")
	}
}

func setControlValue(n *html.Node, value string) {
	switch n.DataAtom {
	case atom.Textarea:
		removeChildren(n)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	case atom.Select:
		_, _ = selectOption(n, value, n.Data)
	default:
		setAttr(n, "value", value)
	}
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

func walkNodes(n *html.Node, visit func(*html.Node) bool) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if visit(child) {
			walkNodes(child, visit)
		}
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return b.String()
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attrOf(n *html.Node, key string) string {
	value, _ := lookupAttr(n, key)
	return value
}

func hasAttrOf(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, value string) {
	for idx, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[idx].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func setBoolAttr(n *html.Node, key string, on bool) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	if on {
		n.Attr = append(n.Attr, html.Attribute{Key: key})
	}
}
