package compiler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-widgetgen/pkg/payload"
)

func TestRequest_BodyNestsSkin(t *testing.T) {
	req := Request{
		Widget: payload.Form{Fields: payload.Payload{{Name: "title", Value: "Hello"}}},
		Skin:   payload.Payload{{Name: "color", Value: "red"}},
	}

	raw, err := json.Marshal(req.Body())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"name":"title","value":"Hello"},{"name":"skin","value":[{"name":"color","value":"red"}]}]`
	if string(raw) != want {
		t.Fatalf("unexpected body\nwant: %s\n got: %s", want, raw)
	}
	if len(req.Widget.Fields) != 1 {
		t.Fatalf("expected widget fields untouched, got %#v", req.Widget.Fields)
	}
}

func TestCompile_Success(t *testing.T) {
	var (
		gotMethod, gotCT, gotCache string
		gotBody                    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotCache = r.Header.Get("Cache-Control")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"<xewidget id=\"banner\"></xewidget>","widget":"banner"}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	res, err := c.Compile(context.Background(), Request{
		Widget: payload.Form{Action: "/widget/generate", Method: "post", Fields: payload.Payload{{Name: "title", Value: "Hello"}}},
		Skin:   payload.Payload{{Name: "color", Value: "red"}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Code != `<xewidget id="banner"></xewidget>` {
		t.Fatalf("unexpected code %q", res.Code)
	}
	if res.Raw["widget"] != "banner" {
		t.Fatalf("expected raw response to be kept, got %#v", res.Raw)
	}
	if gotMethod != http.MethodPost || gotCT != "application/json" || gotCache != "no-cache" {
		t.Fatalf("unexpected request: method=%s ct=%s cache=%s", gotMethod, gotCT, gotCache)
	}
	want := `[{"name":"title","value":"Hello"},{"name":"skin","value":[{"name":"color","value":"red"}]}]`
	if string(gotBody) != want {
		t.Fatalf("unexpected body\nwant: %s\n got: %s", want, gotBody)
	}
}

func TestCompile_GetAddsCacheBuster(t *testing.T) {
	var gotBuster string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBuster = r.URL.Query().Get("_")
		_, _ = w.Write([]byte(`{"code":"x"}`))
	}))
	defer srv.Close()

	fixed := time.UnixMilli(1700000000000)
	c := New(WithClock(func() time.Time { return fixed }))
	if _, err := c.Compile(context.Background(), Request{Widget: payload.Form{Action: srv.URL, Method: "get"}}); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if gotBuster != "1700000000000" {
		t.Fatalf("expected cache buster, got %q", gotBuster)
	}
}

func TestCompile_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"type":"validation","message":"title required"}`))
	}))
	defer srv.Close()

	_, err := New().Compile(context.Background(), Request{Widget: payload.Form{Action: srv.URL}})
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *ServerError, got %T %v", err, err)
	}
	if serr.Type != "validation" || serr.Message != "title required" || serr.StatusCode() != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected server error %#v", serr)
	}
}

func TestCompile_ErrorPayloadWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"widget missing"}`))
	}))
	defer srv.Close()

	_, err := New().Compile(context.Background(), Request{Widget: payload.Form{Action: srv.URL}})
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *ServerError, got %v", err)
	}
	if serr.Type != TypeError || serr.Message != "widget missing" {
		t.Fatalf("unexpected server error %#v", serr)
	}
}

func TestCompile_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New().Compile(context.Background(), Request{Widget: payload.Form{Action: srv.URL}})
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NetworkError, got %T %v", err, err)
	}
	if nerr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", nerr.Status)
	}
}

func TestCompile_MissingAction(t *testing.T) {
	if _, err := New().Compile(context.Background(), Request{}); !errors.Is(err, ErrMissingAction) {
		t.Fatalf("expected ErrMissingAction, got %v", err)
	}
}
