package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// maxDocumentSize caps remote documents.
const maxDocumentSize = 4 << 20

// Loader fetches raw definition documents from files, an fs.FS or HTTP.
// HTTP is disabled unless a client or timeout is configured.
type Loader struct {
	fs   fs.FS
	http *http.Client
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem enables SourceKindFS lookups.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithHTTPTimeout enables URL sources with a default client.
func WithHTTPTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		if l.http == nil {
			l.http = &http.Client{Timeout: timeout}
		}
	}
}

// NewLoader constructs a Loader.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load returns the raw document behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Location == "" {
		return nil, errors.New("schema loader: source location is required")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location)
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("schema loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location)
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("schema loader: http support disabled")
		}
		data, err = l.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("schema loader: unsupported source kind %q", src.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("schema loader: load %s: %w", src, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("schema loader: %s is empty", src)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}
