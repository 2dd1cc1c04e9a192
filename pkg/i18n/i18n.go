// Package i18n resolves the user-facing strings the controller and views
// emit. The built-in catalog ships English and Russian messages; callers can
// plug any Translator.
package i18n

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Message keys used across the module.
const (
	KeyRequired     = "validation.required"
	KeyFormatEmail  = "validation.format.email"
	KeyMaxLength    = "validation.maxLength"
	KeySubmitBusy   = "submit.busy"
	KeySubmitOK     = "submit.success"
	KeySubmitFailed = "submit.failed"
	KeyCounter      = "counter.format"

	DefaultLocale = "en"
)

// ErrMissingTranslation is returned when no locale in the fallback chain
// defines the key.
var ErrMissingTranslation = errors.New("i18n: missing translation")

// Translator resolves a message key for a locale. Args are applied with
// fmt-style verbs.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

//go:embed catalog.yaml
var builtinCatalog []byte

// Catalog is an in-memory Translator keyed by locale then message key.
type Catalog struct {
	messages map[string]map[string]string
	fallback string
}

// Default returns the embedded catalog.
func Default() *Catalog {
	catalog, err := Parse(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded catalog: %v", err))
	}
	return catalog
}

// Parse reads a YAML document of the form `locale: {key: message}`.
func Parse(data []byte) (*Catalog, error) {
	raw := map[string]map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("i18n: parse catalog: %w", err)
	}
	catalog := &Catalog{
		messages: make(map[string]map[string]string, len(raw)),
		fallback: DefaultLocale,
	}
	for locale, entries := range raw {
		catalog.Merge(locale, entries)
	}
	return catalog, nil
}

// Merge adds or overrides messages for a locale.
func (c *Catalog) Merge(locale string, entries map[string]string) {
	locale = normaliseLocale(locale)
	if locale == "" || len(entries) == 0 {
		return
	}
	if c.messages == nil {
		c.messages = make(map[string]map[string]string)
	}
	dest := c.messages[locale]
	if dest == nil {
		dest = make(map[string]string, len(entries))
		c.messages[locale] = dest
	}
	for key, message := range entries {
		if key = strings.TrimSpace(key); key != "" {
			dest[key] = message
		}
	}
}

// Locales lists the locales the catalog knows, sorted.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate walks locale, its base language (ru-RU -> ru) and the fallback
// locale in that order.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslation
	}
	for _, candidate := range c.chain(locale) {
		if message, ok := c.messages[candidate][key]; ok {
			if len(args) == 0 {
				return message, nil
			}
			return fmt.Sprintf(message, args...), nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
}

func (c *Catalog) chain(locale string) []string {
	locale = normaliseLocale(locale)
	var out []string
	if locale != "" {
		out = append(out, locale)
		if base, _, found := strings.Cut(locale, "-"); found {
			out = append(out, base)
		}
	}
	if c.fallback != "" && c.fallback != locale {
		out = append(out, c.fallback)
	}
	return out
}

// Message translates with t and falls back to the key itself, so missing
// catalog entries degrade to something visible rather than an empty string.
func Message(t Translator, locale, key string, args ...any) string {
	if t == nil {
		return key
	}
	message, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(message) == "" {
		return key
	}
	return message
}

func normaliseLocale(locale string) string {
	locale = strings.TrimSpace(strings.ToLower(locale))
	return strings.ReplaceAll(locale, "_", "-")
}
