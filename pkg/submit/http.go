package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Encoding selects the request body format of an HTTP action.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingForm Encoding = "form"
)

// ParseEncoding accepts "json" (default) and "form".
func ParseEncoding(raw string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return EncodingJSON, nil
	case "form", "urlencoded", "x-www-form-urlencoded":
		return EncodingForm, nil
	default:
		return "", fmt.Errorf("submit: unknown encoding %q", raw)
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submit: endpoint responded %d", e.Code)
	}
	return fmt.Sprintf("submit: endpoint responded %d: %s", e.Code, e.Body)
}

// HTTPOption configures an HTTP action.
type HTTPOption func(*HTTP)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithEncoding selects the request body format.
func WithEncoding(enc Encoding) HTTPOption {
	return func(h *HTTP) {
		if enc != "" {
			h.encoding = enc
		}
	}
}

// WithHeader adds a request header.
func WithHeader(name, value string) HTTPOption {
	return func(h *HTTP) {
		if name = strings.TrimSpace(name); name != "" {
			h.headers.Set(name, value)
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// HTTP posts payloads to an endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
	encoding Encoding
	headers  http.Header
	timeout  time.Duration
}

const maxErrorBody = 512

// NewHTTP validates the endpoint and builds the action.
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	endpoint = strings.TrimSpace(endpoint)
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("submit: invalid endpoint %q", endpoint)
	}
	h := &HTTP{
		endpoint: endpoint,
		client:   http.DefaultClient,
		encoding: EncodingJSON,
		headers:  make(http.Header),
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Submit implements Action.
func (h *HTTP) Submit(ctx context.Context, payload Payload) (Result, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	body, contentType, err := h.encode(payload)
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("submit: build request: %w", err)
	}
	for name, values := range h.headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submit: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("submit: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(raw))
		text = truncateBody(text, maxErrorBody)
		return Result{}, &StatusError{Code: resp.StatusCode, Body: text}
	}

	result := Result{Status: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var decoded Result
		if err := json.Unmarshal(raw, &decoded); err == nil {
			result.Message = decoded.Message
			result.Reference = decoded.Reference
		}
	}
	return result, nil
}

// truncateBody cuts text to at most limit bytes on a rune boundary.
func truncateBody(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func (h *HTTP) encode(payload Payload) ([]byte, string, error) {
	switch h.encoding {
	case EncodingForm:
		values := url.Values{}
		for key, value := range payload.Values {
			values.Set(key, value)
		}
		return []byte(values.Encode()), "application/x-www-form-urlencoded", nil
	case EncodingJSON:
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("submit: encode payload: %w", err)
		}
		return body, "application/json", nil
	default:
		return nil, "", errors.New("submit: unsupported encoding")
	}
}
