package payload

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Serialize walks a <form> element and returns its successful controls in
// document order, following the browser's form serialization rules: disabled
// controls, unnamed controls, buttons and file inputs are skipped, unchecked
// checkboxes and radios are skipped, multi-selects yield one field per
// selected option, and line breaks are normalised to CRLF.
func Serialize(form *html.Node) Form {
	out := Form{Fields: Payload{}}
	if form == nil {
		return out
	}
	out.ID = attr(form, "id")
	out.Action = attr(form, "action")
	out.Method = attr(form, "method")

	walk(form, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Input:
			if field, ok := inputField(n); ok {
				out.Fields = append(out.Fields, field)
			}
			return false
		case atom.Textarea:
			if name, ok := controlName(n); ok {
				out.Fields = append(out.Fields, Field{Name: name, Value: normalizeNewlines(textContent(n))})
			}
			return false
		case atom.Select:
			if name, ok := controlName(n); ok {
				for _, value := range selectValues(n) {
					out.Fields = append(out.Fields, Field{Name: name, Value: normalizeNewlines(value)})
				}
			}
			return false
		}
		return true
	})
	return out
}

var skippedInputTypes = map[string]struct{}{
	"submit": {},
	"button": {},
	"image":  {},
	"reset":  {},
	"file":   {},
}

func inputField(n *html.Node) (Field, bool) {
	name, ok := controlName(n)
	if !ok {
		return Field{}, false
	}
	kind := strings.ToLower(strings.TrimSpace(attr(n, "type")))
	if _, skip := skippedInputTypes[kind]; skip {
		return Field{}, false
	}
	if kind == "checkbox" || kind == "radio" {
		if !hasAttr(n, "checked") {
			return Field{}, false
		}
		value, present := lookupAttr(n, "value")
		if !present {
			value = "on"
		}
		return Field{Name: name, Value: normalizeNewlines(value)}, true
	}
	return Field{Name: name, Value: normalizeNewlines(attr(n, "value"))}, true
}

func controlName(n *html.Node) (string, bool) {
	name := attr(n, "name")
	if name == "" || isDisabled(n) {
		return "", false
	}
	return name, true
}

func isDisabled(n *html.Node) bool {
	if hasAttr(n, "disabled") {
		return true
	}
	for parent := n.Parent; parent != nil; parent = parent.Parent {
		if parent.Type == html.ElementNode && parent.DataAtom == atom.Fieldset && hasAttr(parent, "disabled") {
			return true
		}
	}
	return false
}

func selectValues(n *html.Node) []string {
	var (
		selected  []string
		firstFree *html.Node
	)
	multiple := hasAttr(n, "multiple")
	walk(n, func(child *html.Node) bool {
		if child.Type != html.ElementNode || child.DataAtom != atom.Option {
			return true
		}
		if hasAttr(child, "disabled") {
			return false
		}
		if firstFree == nil {
			firstFree = child
		}
		if hasAttr(child, "selected") {
			selected = append(selected, OptionValue(child))
		}
		return false
	})
	if multiple {
		return selected
	}
	if len(selected) > 0 {
		// a single select reports its last selected option
		return selected[len(selected)-1:]
	}
	if firstFree != nil {
		return []string{OptionValue(firstFree)}
	}
	return nil
}

// OptionValue returns the submitted value of an <option>: its value attribute
// or, when absent, its collapsed text.
func OptionValue(n *html.Node) string {
	if value, ok := lookupAttr(n, "value"); ok {
		return value
	}
	return strings.Join(strings.Fields(textContent(n)), " ")
}

func normalizeNewlines(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return value
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return strings.ReplaceAll(value, "\n", "\r\n")
}

func walk(n *html.Node, visit func(*html.Node) bool) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if visit(child) {
			walk(child, visit)
		}
	}
}

func textContent(n *html.Node) string {
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

func attr(n *html.Node, key string) string {
	value, _ := lookupAttr(n, key)
	return value
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
