package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-widgetgen/pkg/prompt"
	"github.com/goliatone/go-widgetgen/pkg/testsupport"
)

const bannerCode = `<xewidget id="banner" skin-id="dark"><title>Hello</title><link></link><show_title></show_title><skin><color>red</color><opacity>75</opacity></skin></xewidget>`

type scriptedDriver struct {
	inputs  []string
	selects []int
}

func (d *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("unexpected input prompt: " + cfg.Message)
	}
	val := d.inputs[0]
	d.inputs = d.inputs[1:]
	return val, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return false, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("unexpected select prompt: " + cfg.Message)
	}
	val := d.selects[0]
	d.selects = d.selects[1:]
	return val, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WIDGETGEN_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	widgetFlag, skinFlag, codeFlag, copyFlag, verbose, timeout = "", "", "", false, false, 0

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCommand_FlagsAndPrompts(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)

	driver := &scriptedDriver{inputs: []string{"Hello", "", "red"}, selects: []int{1}}
	prevFiller, prevCopy := newFiller, clipboardWriteAll
	t.Cleanup(func() { newFiller, clipboardWriteAll = prevFiller, prevCopy })
	newFiller = func() *prompt.Filler {
		return prompt.New(prompt.WithDriver(driver), prompt.WithSkip("widget", "skin_id"))
	}
	var copied string
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}

	out, err := run(t, "generate", "--page-url", srv.URL+"/widget/generate", "--widget", "banner", "--skin", "dark", "--copy")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, bannerCode) {
		t.Fatalf("expected generated code in output, got:\n%s", out)
	}
	if copied != bannerCode {
		t.Fatalf("expected code copied to clipboard, got %q", copied)
	}
	if got := len(srv.RequestsTo("/assets/widget-generator.js")); got != 1 {
		t.Fatalf("expected support asset loaded once, got %d", got)
	}
}

func TestGenerateCommand_UnknownWidgetSuggests(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)

	_, err := run(t, "generate", "--page-url", srv.URL+"/widget/generate", "--widget", "baner")
	if err == nil || !strings.Contains(err.Error(), `did you mean "banner"`) {
		t.Fatalf("expected suggestion error, got %v", err)
	}
}

func TestDecompileCommand_PrintsFields(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)

	out, err := run(t, "decompile", "--page-url", srv.URL+"/widget/generate", "--code", bannerCode)
	if err != nil {
		t.Fatalf("decompile: %v", err)
	}
	for _, want := range []string{"banner", "dark", "Hello", "red", "75"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if got := len(srv.RequestsTo("/widget/setup")); got != 1 {
		t.Fatalf("expected one setup request, got %d", got)
	}
}

func TestRootCommand_RejectsRelativePageURL(t *testing.T) {
	if _, err := run(t, "decompile", "--page-url", "/widget/generate", "--code", "x"); err == nil {
		t.Fatalf("expected error for relative page url")
	}
}

func TestRootCommand_ValidatesFlagOverrides(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)

	_, err := run(t, "decompile", "--page-url", srv.URL+"/widget/generate", "--timeout=-1s", "--code", "x")
	if err == nil || !strings.Contains(err.Error(), "timeout must not be negative") {
		t.Fatalf("expected timeout validation error, got %v", err)
	}
	if got := len(srv.Requests()); got != 0 {
		t.Fatalf("expected no requests before validation passes, got %d", got)
	}
}
