package pongo_test

import (
	"bytes"
	"embed"
	"io/fs"
	"strings"
	"testing"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formsubmit/pkg/render/template/pongo"
)

//go:embed testdata/templates/*.html
var embedded embed.FS

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()
	sub, err := fs.Sub(embedded, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(sub)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderTemplateWritesToOutputs(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "  Ada  "}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<p>Hello Ada!</p>\n"
	if got != want || buf.String() != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q / %q", want, got, buf.String())
	}
}

func TestRenderTemplateEscapesValues(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderTemplate("hello.html", map[string]any{"name": "<b>x</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(got, "<b>") {
		t.Fatalf("expected escaped output, got %q", got)
	}
}

func TestGlobalsAndFilters(t *testing.T) {
	shout := func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(strings.ToUpper(in.String()) + "!"), nil
	}
	engine := newEngine(t,
		pongo.WithGlobals(map[string]any{"site": "Acme"}),
		pongo.WithFilter("shout", shout),
	)
	got, err := engine.RenderTemplate("global", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<p>Acme / ADA!</p>\n"; got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRenderStringAndErrors(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "two"})
	if err != nil || got != "1-two" {
		t.Fatalf("render string: %q, %v", got, err)
	}
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected configuration error")
	}
}
