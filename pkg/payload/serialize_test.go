package payload

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseForm(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var form *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if form != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Form {
			form = n
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			find(child)
		}
	}
	find(doc)
	if form == nil {
		t.Fatalf("no form in markup")
	}
	return form
}

func TestSerialize_SuccessfulControls(t *testing.T) {
	form := parseForm(t, `
<form id="widgetForm" action="/widget/generate" method="post">
  <input type="hidden" name="widget" value="banner">
  <input type="text" name="title" value="Hello">
  <input type="text" value="no name">
  <input type="text" name="locked" value="x" disabled>
  <fieldset disabled><input type="text" name="inside" value="y"></fieldset>
  <input type="checkbox" name="visible" checked>
  <input type="checkbox" name="hidden-flag" value="1">
  <input type="radio" name="align" value="left">
  <input type="radio" name="align" value="right" checked>
  <input type="submit" name="go" value="Go">
  <input type="file" name="upload">
  <textarea name="body">line one
line two</textarea>
  <select name="size"><option value="s">Small</option><option value="m" selected>Medium</option></select>
  <select name="empty"><option disabled>none</option><option>  First   option </option></select>
  <select name="tags" multiple><option selected>a</option><option>b</option><option value="c" selected>C</option></select>
</form>`)

	got := Serialize(form)

	want := Form{
		ID:     "widgetForm",
		Action: "/widget/generate",
		Method: "post",
		Fields: Payload{
			{Name: "widget", Value: "banner"},
			{Name: "title", Value: "Hello"},
			{Name: "visible", Value: "on"},
			{Name: "align", Value: "right"},
			{Name: "body", Value: "line one\r\nline two"},
			{Name: "size", Value: "m"},
			{Name: "empty", Value: "First option"},
			{Name: "tags", Value: "a"},
			{Name: "tags", Value: "c"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_NilFormYieldsEmptyPayload(t *testing.T) {
	got := Serialize(nil)
	if got.Fields == nil || len(got.Fields) != 0 {
		t.Fatalf("expected empty non-nil payload, got %#v", got.Fields)
	}
}
