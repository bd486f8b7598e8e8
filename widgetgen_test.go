package widgetgen_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	widgetgen "github.com/goliatone/go-widgetgen"
	"github.com/goliatone/go-widgetgen/pkg/generator"
	"github.com/goliatone/go-widgetgen/pkg/notify"
	"github.com/goliatone/go-widgetgen/pkg/testsupport"
)

func TestOpen_BindsGeneratorToPage(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)
	ctx := context.Background()
	rec := &notify.Recorder{}

	gen, err := widgetgen.Open(ctx, srv.URL+"/widget/generate",
		widgetgen.WithHTTPClient(srv.Client()),
		widgetgen.WithNotifier(rec),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := len(srv.RequestsTo("/assets/widget-generator.js")); got != 1 {
		t.Fatalf("expected support asset fetched once, got %d", got)
	}

	if err := gen.Handle(ctx, generator.WidgetSelected{WidgetID: "banner"}); err != nil {
		t.Fatalf("select widget: %v", err)
	}
	if err := gen.Handle(ctx, generator.SkinSelected{SkinID: "default"}); err != nil {
		t.Fatalf("select skin: %v", err)
	}
	if err := gen.Page().SetField(gen.Selectors().WidgetForm, "title", "Hi"); err != nil {
		t.Fatalf("set title: %v", err)
	}

	outcome, err := gen.Do(ctx, generator.GenerateCode{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(outcome.Code, `<xewidget id="banner" skin-id="default">`) {
		t.Fatalf("unexpected code %q", outcome.Code)
	}
	if len(rec.Notices()) != 0 {
		t.Fatalf("expected no notices, got %#v", rec.Notices())
	}
}

func TestOpen_RejectsRelativeURL(t *testing.T) {
	if _, err := widgetgen.Open(context.Background(), "/widget/generate"); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestOpen_PageFailure(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)
	if _, err := widgetgen.Open(context.Background(), srv.URL+"/missing", widgetgen.WithHTTPClient(srv.Client())); err == nil {
		t.Fatalf("expected error for missing page")
	}
}

func TestOpen_NoticesGoToSuppliedNotifierOnly(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)
	srv.Before(func(r *http.Request) {
		if r.URL.Path == "/widget/skins" {
			r.URL.Path = "/widget/unavailable"
		}
	})
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &notify.Recorder{}
	ctx := context.Background()

	gen, err := widgetgen.Open(ctx, srv.URL+"/widget/generate",
		widgetgen.WithHTTPClient(srv.Client()),
		widgetgen.WithLogger(zap.New(core)),
		widgetgen.WithNotifier(rec),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := gen.Handle(ctx, generator.WidgetSelected{WidgetID: "banner"}); err == nil {
		t.Fatalf("expected skin load failure")
	}

	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Kind != notify.KindFragment {
		t.Fatalf("expected one fragment notice, got %#v", notices)
	}
	if n := logs.FilterMessage(notices[0].Message).Len(); n != 0 {
		t.Fatalf("expected notice not to be logged again, got %d entries", n)
	}
}
