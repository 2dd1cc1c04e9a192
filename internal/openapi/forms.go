// Package openapi derives form definitions from the request bodies of OpenAPI
// 3 operations, so an API's own contract can drive the submit form.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formsubmit/pkg/model"
)

const (
	extensionOrder       = "x-formsubmit-order"
	extensionWidget      = "x-formsubmit-widget"
	extensionPlaceholder = "x-formsubmit-placeholder"
	extensionSubmitLabel = "x-formsubmit-submit-label"

	// textareaThreshold is the maxLength from which a string renders as a
	// textarea when no widget is declared.
	textareaThreshold = 256
)

var (
	// ErrOperationNotFound is returned when the document lacks the operation.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoFormBody is returned when an operation has no object request body.
	ErrNoFormBody = errors.New("openapi: operation has no object request body")
)

var bodyMethods = []string{"POST", "PUT", "PATCH"}

// preferredMediaTypes are checked in order before falling back to any entry.
var preferredMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Definitions converts every operation with an object request body into a
// form definition keyed by operationId.
func Definitions(ctx context.Context, raw []byte) (map[string]model.Definition, error) {
	doc, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Definition)
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, method := range bodyMethods {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			def, err := definitionFor(method, path, op)
			if errors.Is(err, ErrNoFormBody) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[def.ID] = def
		}
	}
	return out, nil
}

// Definition converts a single operation, addressed by operationId or by
// `method:path` when the operation has no id.
func Definition(ctx context.Context, raw []byte, operationID string) (model.Definition, error) {
	wanted := strings.TrimSpace(operationID)
	if wanted == "" {
		return model.Definition{}, errors.New("openapi: operation id is required")
	}
	defs, err := Definitions(ctx, raw)
	if err != nil {
		return model.Definition{}, err
	}
	def, ok := defs[wanted]
	if !ok {
		return model.Definition{}, fmt.Errorf("%w: %s", ErrOperationNotFound, wanted)
	}
	return def, nil
}

func load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}
	return doc, nil
}

func definitionFor(method, path string, op *openapi3.Operation) (model.Definition, error) {
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	body := requestSchema(op.RequestBody)
	if body == nil || len(body.Properties) == 0 {
		return model.Definition{}, ErrNoFormBody
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	fields := make([]orderedField, 0, len(body.Properties))
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil || !isString(ref.Value) {
			continue
		}
		fields = append(fields, fieldFor(name, ref.Value, required[name]))
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].less(fields[j]) })

	def := model.Definition{
		ID:          id,
		Title:       strings.TrimSpace(op.Summary),
		Description: strings.TrimSpace(op.Description),
		SubmitLabel: stringExtension(op.Extensions, extensionSubmitLabel),
		Fields:      make([]model.FieldDefinition, 0, len(fields)),
	}
	for _, f := range fields {
		def.Fields = append(def.Fields, f.FieldDefinition)
	}
	if err := def.Validate(); err != nil {
		return model.Definition{}, fmt.Errorf("openapi: operation %s: %w", id, err)
	}
	return def, nil
}

func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range preferredMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

type orderedField struct {
	model.FieldDefinition
	order    int
	hasOrder bool
}

// less orders explicit x-formsubmit-order first, then required fields, then
// alphabetically.
func (f orderedField) less(other orderedField) bool {
	if f.hasOrder != other.hasOrder {
		return f.hasOrder
	}
	if f.hasOrder && f.order != other.order {
		return f.order < other.order
	}
	if f.Required != other.Required {
		return f.Required
	}
	return f.ID < other.ID
}

func fieldFor(name string, schema *openapi3.Schema, required bool) orderedField {
	field := orderedField{
		FieldDefinition: model.FieldDefinition{
			ID:          name,
			Label:       strings.TrimSpace(schema.Title),
			Placeholder: stringExtension(schema.Extensions, extensionPlaceholder),
			Kind:        string(kindFor(schema)),
			Required:    required,
		},
	}
	if schema.MaxLength != nil && *schema.MaxLength <= math.MaxInt32 {
		field.MaxLength = int(*schema.MaxLength)
	}
	if value, ok := schema.Default.(string); ok {
		field.Default = value
	}
	if field.Placeholder == "" {
		if value, ok := schema.Example.(string); ok {
			field.Placeholder = value
		}
	}
	field.order, field.hasOrder = intExtension(schema.Extensions, extensionOrder)
	return field
}

func kindFor(schema *openapi3.Schema) model.Kind {
	if widget := stringExtension(schema.Extensions, extensionWidget); widget != "" {
		if kind, err := model.ParseKind(widget); err == nil {
			return kind
		}
	}
	if strings.EqualFold(schema.Format, "email") {
		return model.KindEmail
	}
	if schema.MaxLength != nil && *schema.MaxLength >= textareaThreshold {
		return model.KindTextarea
	}
	return model.KindText
}

func isString(schema *openapi3.Schema) bool {
	if schema.Type == nil {
		return true
	}
	for _, typ := range schema.Type.Slice() {
		if typ == openapi3.TypeString {
			return true
		}
	}
	return false
}

func stringExtension(ext map[string]any, key string) string {
	value, ok := ext[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func intExtension(ext map[string]any, key string) (int, bool) {
	switch value := ext[key].(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
