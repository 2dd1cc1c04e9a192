package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies where a form definition document lives.
type Source struct {
	Kind     SourceKind
	Location string
}

func (s Source) String() string {
	return string(s.Kind) + ":" + s.Location
}

// SourceFromFile points at a file path.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS identifies an entry inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL validates raw and returns an HTTP(S) source.
func SourceFromURL(raw string) (Source, error) {
	if strings.TrimSpace(raw) == "" {
		return Source{}, fmt.Errorf("schema: empty URL source")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return Source{}, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Source{}, fmt.Errorf("schema: unsupported URL scheme %q", parsed.Scheme)
	}
	return Source{Kind: SourceKindURL, Location: raw}, nil
}

// ParseSource interprets a CLI or config value: http(s) URLs become URL
// sources, anything else a file path.
func ParseSource(raw string) (Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Source{}, fmt.Errorf("schema: source is required")
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return SourceFromURL(trimmed)
	}
	return SourceFromFile(trimmed), nil
}
