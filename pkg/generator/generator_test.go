package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
	"github.com/goliatone/go-widgetgen/pkg/fragment"
	"github.com/goliatone/go-widgetgen/pkg/notify"
	"github.com/goliatone/go-widgetgen/pkg/page"
	"github.com/goliatone/go-widgetgen/pkg/testsupport"
)

const assetPath = "/assets/widget-generator.js"

type fixture struct {
	srv      *testsupport.CatalogServer
	gen      *Generator
	notices  *notify.Recorder
	callback []compiler.Result
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	srv := testsupport.NewCatalogServer(t)
	pg := testsupport.LoadShell(t, srv)
	fx := &fixture{srv: srv, notices: &notify.Recorder{}}

	loader := fragment.NewHTTPLoader(
		fragment.WithClient(srv.Client()),
		fragment.WithBaseURL(srv.URL),
		fragment.WithSupportAsset(assetPath),
	)
	base := []Option{
		WithCompiler(compiler.New(compiler.WithClient(srv.Client()), compiler.WithBaseURL(srv.URL))),
		WithNotifier(fx.notices),
	}
	gen, err := Open(context.Background(), pg, loader, append(base, opts...)...)
	if err != nil {
		t.Fatalf("open generator: %v", err)
	}
	fx.gen = gen
	return fx
}

func (fx *fixture) html(t *testing.T, selector string) string {
	t.Helper()
	out, err := fx.gen.Page().HTML(selector)
	if err != nil {
		t.Fatalf("html %s: %v", selector, err)
	}
	return strings.TrimSpace(out)
}

func TestOpen_InitializesLoaderOnce(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}
	if err := fx.gen.OnSkinChange(ctx, "dark"); err != nil {
		t.Fatalf("skin change: %v", err)
	}
	if err := fx.gen.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := len(fx.srv.RequestsTo(assetPath)); got != 1 {
		t.Fatalf("expected support asset to load once, got %d", got)
	}
}

func TestOpen_FailsWhenSupportAssetMissing(t *testing.T) {
	srv := testsupport.NewCatalogServer(t)
	pg := testsupport.LoadShell(t, srv)
	loader := fragment.NewHTTPLoader(
		fragment.WithClient(srv.Client()),
		fragment.WithBaseURL(srv.URL),
		fragment.WithSupportAsset("/assets/missing.js"),
	)
	if _, err := Open(context.Background(), pg, loader); err == nil {
		t.Fatalf("expected init error")
	}
}

func TestOnWidgetChange_LoadsSkinsAndClearsForm(t *testing.T) {
	fx := newFixture(t)
	sel := fx.gen.Selectors()
	if err := fx.gen.Page().ReplaceHTML(sel.Form, "<p>stale</p>"); err != nil {
		t.Fatalf("seed form: %v", err)
	}

	if err := fx.gen.OnWidgetChange(context.Background(), "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}

	reqs := fx.srv.RequestsTo("/widget/skins")
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one skin list request, got %d", len(reqs))
	}
	if got := reqs[0].Query.Get("widget"); got != "banner" {
		t.Fatalf("expected widget=banner, got %q", got)
	}
	if got := fx.html(t, sel.Form); got != "" {
		t.Fatalf("expected config form to be emptied, got %q", got)
	}
	options, err := fx.gen.Page().Options(sel.SkinSelect)
	if err != nil {
		t.Fatalf("skin options: %v", err)
	}
	if len(options) != 3 {
		t.Fatalf("expected placeholder plus two skins, got %#v", options)
	}
	if got := fx.gen.State(); got != WidgetChosen {
		t.Fatalf("expected state %s, got %s", WidgetChosen, got)
	}
	if diff := cmp.Diff(Selection{WidgetID: "banner"}, fx.gen.Selection()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestOnWidgetChange_EmptyClearsSkinsAndCode(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	sel := fx.gen.Selectors()

	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}
	if err := fx.gen.SetCode("<xewidget id=\"banner\"></xewidget>"); err != nil {
		t.Fatalf("set code: %v", err)
	}
	before := len(fx.srv.Requests())

	if err := fx.gen.OnWidgetChange(ctx, ""); err != nil {
		t.Fatalf("clear widget: %v", err)
	}
	if got := fx.html(t, sel.Skins); got != "" {
		t.Fatalf("expected empty skin region, got %q", got)
	}
	if got := fx.gen.Code(); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
	if got := len(fx.srv.Requests()); got != before {
		t.Fatalf("expected no request, got %d new", got-before)
	}
	if got := fx.gen.State(); got != Idle {
		t.Fatalf("expected state %s, got %s", Idle, got)
	}
}

func TestOnSkinChange_FetchesOptionDataURL(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}
	if err := fx.gen.OnSkinChange(ctx, "dark"); err != nil {
		t.Fatalf("skin change: %v", err)
	}

	reqs := fx.srv.RequestsTo("/widget/skins/form")
	if len(reqs) != 1 {
		t.Fatalf("expected one skin form request, got %d", len(reqs))
	}
	if got := reqs[0].Query.Get("skin"); got != "dark" {
		t.Fatalf("expected skin=dark, got %q", got)
	}
	if got := reqs[0].Query.Get("widget"); got != "banner" {
		t.Fatalf("expected widget=banner, got %q", got)
	}
	if form := fx.html(t, fx.gen.Selectors().Form); !strings.Contains(form, `name="color"`) {
		t.Fatalf("expected skin form in region, got %q", form)
	}
	if diff := cmp.Diff(Selection{WidgetID: "banner", SkinID: "dark"}, fx.gen.Selection()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestOnSkinChange_EmptyIssuesNoRequest(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}
	if err := fx.gen.OnSkinChange(ctx, "dark"); err != nil {
		t.Fatalf("skin change: %v", err)
	}
	before := len(fx.srv.Requests())

	if err := fx.gen.OnSkinChange(ctx, ""); err != nil {
		t.Fatalf("clear skin: %v", err)
	}
	if got := len(fx.srv.Requests()); got != before {
		t.Fatalf("expected no request, got %d new", got-before)
	}
	if got := fx.html(t, fx.gen.Selectors().Form); got != "" {
		t.Fatalf("expected empty config form, got %q", got)
	}
	if got := fx.gen.State(); got != WidgetChosen {
		t.Fatalf("expected state %s, got %s", WidgetChosen, got)
	}
}

func TestOnSkinChange_UnknownSkinIsUsageError(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}

	err := fx.gen.OnSkinChange(ctx, "sepia")
	var uerr *UsageError
	if !errors.As(err, &uerr) || !errors.Is(err, page.ErrOptionNotFound) {
		t.Fatalf("expected usage error wrapping ErrOptionNotFound, got %v", err)
	}
	if notices := fx.notices.Notices(); len(notices) != 0 {
		t.Fatalf("usage errors must not notify, got %#v", notices)
	}
}

func TestGenerate_WritesCodeAndInvokesCallback(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	sel := fx.gen.Selectors()

	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}
	if err := fx.gen.OnSkinChange(ctx, "dark"); err != nil {
		t.Fatalf("skin change: %v", err)
	}
	if err := fx.gen.Page().SetField(sel.WidgetForm, "title", "Hello"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := fx.gen.Page().SetField(sel.SkinForm, "color", "red"); err != nil {
		t.Fatalf("set color: %v", err)
	}

	var got []compiler.Result
	result, err := fx.gen.Generate(ctx, func(r compiler.Result) { got = append(got, r) })
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := `<xewidget id="banner" skin-id="dark"><title>Hello</title><link></link><show_title></show_title><skin><color>red</color><opacity>75</opacity></skin></xewidget>`
	if result.Code != want {
		t.Fatalf("unexpected code:\nwant %s\ngot  %s", want, result.Code)
	}
	if fx.gen.Code() != want {
		t.Fatalf("code field not updated: %q", fx.gen.Code())
	}
	if len(got) != 1 || got[0].Raw["widget"] != "banner" {
		t.Fatalf("expected callback with full response, got %#v", got)
	}
	if fx.gen.State() != CodeGenerated {
		t.Fatalf("expected state %s, got %s", CodeGenerated, fx.gen.State())
	}
}

func TestGenerate_ServerErrorLeavesCodeAndNotifies(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.gen.OnWidgetChange(ctx, "banner"); err != nil {
		t.Fatalf("widget change: %v", err)
	}
	if err := fx.gen.OnSkinChange(ctx, "dark"); err != nil {
		t.Fatalf("skin change: %v", err)
	}
	if err := fx.gen.SetCode("previous"); err != nil {
		t.Fatalf("set code: %v", err)
	}

	called := false
	_, err := fx.gen.Generate(ctx, func(compiler.Result) { called = true })
	var serr *compiler.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected server error, got %v", err)
	}
	if called {
		t.Fatalf("callback must not run on failure")
	}
	if fx.gen.Code() != "previous" {
		t.Fatalf("code field changed to %q", fx.gen.Code())
	}
	want := []notify.Notice{{Kind: "validation", Message: "title required"}}
	if diff := cmp.Diff(want, fx.notices.Notices()); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestReset_RebuildsFormsFromCode(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	sel := fx.gen.Selectors()

	code := `<xewidget id="latest_posts" skin-id="gallery"><board_id>news</board_id><count>10</count><intro></intro><skin><columns>4</columns></skin></xewidget>`
	if err := fx.gen.SetCode(code); err != nil {
		t.Fatalf("set code: %v", err)
	}
	if err := fx.gen.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	reqs := fx.srv.RequestsTo("/widget/setup")
	if len(reqs) != 1 || reqs[0].Query.Get("code") != code {
		t.Fatalf("expected one setup request carrying the code, got %#v", reqs)
	}
	if diff := cmp.Diff(Selection{WidgetID: "latest_posts", SkinID: "gallery"}, fx.gen.Selection()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if fx.gen.State() != SkinChosen {
		t.Fatalf("expected state %s, got %s", SkinChosen, fx.gen.State())
	}
	form, err := fx.gen.Page().Form(sel.SkinForm)
	if err != nil {
		t.Fatalf("skin form: %v", err)
	}
	if got, _ := form.Fields.Get("columns"); got != "4" {
		t.Fatalf("expected columns=4, got %q", got)
	}

	result, err := fx.gen.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if result.Code != code {
		t.Fatalf("expected regenerated code to match:\nwant %s\ngot  %s", code, result.Code)
	}
}

func TestReset_EmptyCodeStillRequests(t *testing.T) {
	fx := newFixture(t)
	if err := fx.gen.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	reqs := fx.srv.RequestsTo("/widget/setup")
	if len(reqs) != 1 {
		t.Fatalf("expected one setup request, got %d", len(reqs))
	}
	if _, ok := reqs[0].Query["code"]; !ok {
		t.Fatalf("expected code parameter even when empty: %#v", reqs[0].Query)
	}
}

func TestFragmentFailure_LeavesRegionAndNotifies(t *testing.T) {
	fx := newFixture(t)
	sel := fx.gen.Selectors()
	before := fx.html(t, sel.Inputs)

	err := fx.gen.Decompile(context.Background(), "/widget/setup", "some-code", sel.Inputs)
	var ferr *fragment.Error
	if !errors.As(err, &ferr) {
		t.Fatalf("expected fragment error, got %v", err)
	}
	if ferr.Status != 422 {
		t.Fatalf("expected status 422, got %d", ferr.Status)
	}
	if got := fx.html(t, sel.Inputs); got != before {
		t.Fatalf("inputs region changed on failure")
	}
	notices := fx.notices.Notices()
	if len(notices) != 1 || notices[0].Kind != notify.KindFragment {
		t.Fatalf("expected one fragment notice, got %#v", notices)
	}
	if got := len(fx.srv.RequestsTo("/widget/setup")); got != 1 {
		t.Fatalf("expected no retry, got %d requests", got)
	}
}
