package schema_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/schema"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
)

func TestLoadDefinitionsFromFile(t *testing.T) {
	defs, err := schema.LoadDefinitions(context.Background(), nil, schema.SourceFromFile("testdata/contact.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]model.Definition{testsupport.ContactDefinition()}, defs); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFormsList(t *testing.T) {
	raw := []byte(`
forms:
  - id: newsletter
    fields:
      - id: email
        kind: email
        required: true
  - id: feedback
    fields:
      - id: comment
        kind: multiline
`)
	defs, err := schema.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ids := []string{defs[0].ID, defs[1].ID}
	if diff := cmp.Diff([]string{"newsletter", "feedback"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON(t *testing.T) {
	raw := []byte(`{"id":"contact","fields":[{"id":"email","kind":"email","required":true,"maxLength":120}]}`)
	defs, err := schema.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := defs[0].Fields[0].MaxLength; got != 120 {
		t.Fatalf("expected maxLength 120, got %d", got)
	}
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":        "  \n",
		"no forms":     "title: nothing\n",
		"unknown kind": "id: x\nfields:\n  - id: a\n    kind: date\n",
		"malformed":    "id: [unterminated",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := schema.Decode([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoaderFileSystemAndHTTP(t *testing.T) {
	files := fstest.MapFS{"forms/contact.yaml": {Data: testsupport.ReadFixture(t, "testdata/contact.yaml")}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contact.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(files["forms/contact.yaml"].Data)
	}))
	defer srv.Close()

	loader := schema.NewLoader(schema.WithFileSystem(files), schema.WithHTTPClient(srv.Client()))

	if _, err := schema.LoadDefinitions(context.Background(), loader, schema.SourceFromFS("forms/contact.yaml")); err != nil {
		t.Fatalf("fs load: %v", err)
	}
	src, err := schema.SourceFromURL(srv.URL + "/contact.yaml")
	if err != nil {
		t.Fatalf("url source: %v", err)
	}
	if _, err := schema.LoadDefinitions(context.Background(), loader, src); err != nil {
		t.Fatalf("http load: %v", err)
	}

	missing, _ := schema.SourceFromURL(srv.URL + "/missing.yaml")
	if _, err := loader.Load(context.Background(), missing); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoaderHTTPDisabledByDefault(t *testing.T) {
	src, err := schema.SourceFromURL("https://example.com/forms.yaml")
	if err != nil {
		t.Fatalf("url source: %v", err)
	}
	if _, err := schema.NewLoader().Load(context.Background(), src); err == nil {
		t.Fatalf("expected http disabled error")
	}
}

func TestParseSource(t *testing.T) {
	src, err := schema.ParseSource("https://example.com/forms.yaml")
	if err != nil || src.Kind != schema.SourceKindURL {
		t.Fatalf("expected url source, got %+v, %v", src, err)
	}
	src, err = schema.ParseSource("./forms/../forms/contact.yaml")
	if err != nil || src.Kind != schema.SourceKindFile || src.Location != "forms/contact.yaml" {
		t.Fatalf("expected cleaned file source, got %+v, %v", src, err)
	}
	if _, err := schema.SourceFromURL("ftp://example.com/x"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestRegistry(t *testing.T) {
	reg := schema.NewRegistry()
	if err := reg.Register(testsupport.ContactDefinition()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(testsupport.ContactDefinition()); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := reg.Get("contact"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := reg.Get("missing"); err == nil {
		t.Fatalf("expected not found")
	}
	if diff := cmp.Diff([]string{"contact"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
