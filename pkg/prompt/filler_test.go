package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetgen/pkg/page"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	messages  []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
	selects    []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.messages = append(s.messages, msg)
	return nil
}

const formMarkup = `<form id="f" action="/c">
  <select name="widget"><option value="banner" selected>Banner</option></select>
  <label for="t">Title</label><input id="t" name="title" required>
  <textarea name="intro">old</textarea>
  <select name="count"><option value="5">5</option><option value="10">10</option></select>
  <input type="checkbox" name="show" value="1">
</form>`

func TestFill_WritesAnswersIntoPage(t *testing.T) {
	pg, err := page.New(formMarkup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	driver := &stubDriver{
		inputs:    []string{"Hello"},
		textAreas: []string{"new intro"},
		selectIdx: []int{1},
		confirm:   []bool{true},
	}
	filler := New(WithDriver(driver), WithSkip("widget"))

	if err := filler.Fill(context.Background(), pg, "#f"); err != nil {
		t.Fatalf("fill: %v", err)
	}
	form, err := pg.Form("#f")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	want := []string{"widget", "title", "intro", "count", "show"}
	if diff := cmp.Diff(want, form.Fields.Names()); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
	for name, value := range map[string]string{"title": "Hello", "intro": "new intro", "count": "10", "show": "1"} {
		if got, _ := form.Fields.Get(name); got != value {
			t.Fatalf("expected %s=%q, got %q", name, value, got)
		}
	}
	if len(driver.selects) != 1 || driver.selects[0].Message != "count" {
		t.Fatalf("expected only the count select to be prompted, got %#v", driver.selects)
	}
}

func TestFill_RequiredInputRejectsBlank(t *testing.T) {
	pg, err := page.New(formMarkup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	filler := New(WithDriver(&stubDriver{inputs: []string{"  "}}), WithSkip("widget"))
	if err := filler.Fill(context.Background(), pg, "#f"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestChoose_SkipsPlaceholderAndDefaultsToSelected(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}}
	filler := New(WithDriver(driver))
	got, err := filler.Choose(context.Background(), "Skin", []page.SelectOption{
		{Value: "", Label: "Select a skin"},
		{Value: "default", Label: "Default"},
		{Value: "dark", Label: "Dark", Selected: true},
	})
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got != "default" {
		t.Fatalf("expected default, got %q", got)
	}
	if diff := cmp.Diff([]string{"Default", "Dark"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if driver.selects[0].DefaultIndex != 1 {
		t.Fatalf("expected default index 1, got %d", driver.selects[0].DefaultIndex)
	}
}

func TestChoose_NoOptions(t *testing.T) {
	filler := New(WithDriver(&stubDriver{}))
	if _, err := filler.Choose(context.Background(), "Skin", []page.SelectOption{{Value: ""}}); !errors.Is(err, ErrNoChoice) {
		t.Fatalf("expected ErrNoChoice, got %v", err)
	}
}
