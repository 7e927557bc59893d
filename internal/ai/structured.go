// structured.go - Schema-constrained calls: JSON cleanup, schema validation, typed decode

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Result is the outcome of a structured call. Parsed is nil when the model
// output did not conform to the schema; Text always holds what came back.
type Result[T any] struct {
	Text   string
	Parsed *T
	Usage  *Response
}

// GenerateStructured performs a schema-constrained call and decodes the
// output into T. Transport failures are returned as-is; a non-conforming
// output yields a Result with nil Parsed and a *SchemaError.
func GenerateStructured[T any](ctx context.Context, g Generator, req Request, schemaName string) (Result[T], error) {
	if req.Schema == nil {
		return Result[T]{}, fmt.Errorf("structured call %s: no response schema", schemaName)
	}

	resp, err := g.Generate(ctx, req)
	if err != nil {
		return Result[T]{}, err
	}

	result := Result[T]{Text: resp.Text, Usage: resp}
	parsed, err := decodeStructured[T](resp.Text, req.Schema, schemaName)
	if err != nil {
		return result, err
	}
	result.Parsed = parsed
	return result, nil
}

// decodeStructured validates text against schema and unmarshals it into T
func decodeStructured[T any](text string, schema *genai.Schema, schemaName string) (*T, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		return nil, &SchemaError{Schema: schemaName, Reason: "empty output"}
	}

	raw, data, err := parseLenient(cleaned)
	if err != nil {
		return nil, &SchemaError{Schema: schemaName, Reason: "invalid JSON", Err: err}
	}

	if err := validateAgainstSchema(raw, schema, "$"); err != nil {
		return nil, &SchemaError{Schema: schemaName, Reason: "does not match schema", Err: err}
	}

	// re-encode the validated value so whole floats such as 15.0 reach
	// integer fields as 15
	data, err = json.Marshal(raw)
	if err != nil {
		return nil, &SchemaError{Schema: schemaName, Reason: "decode failed", Err: err}
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &SchemaError{Schema: schemaName, Reason: "decode failed", Err: err}
	}
	return &out, nil
}

// parseLenient parses JSON, retrying once with escaping repairs applied.
// It returns the generic value and the bytes that parsed.
func parseLenient(text string) (interface{}, []byte, error) {
	var raw interface{}
	data := []byte(text)
	firstErr := json.Unmarshal(data, &raw)
	if firstErr == nil {
		return raw, data, nil
	}

	// Gemini sometimes sends literal newlines inside JSON strings
	data = []byte(fixJSONEscaping(text))
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, firstErr
	}
	return raw, data, nil
}

// validateAgainstSchema checks JSON types and required properties
func validateAgainstSchema(v interface{}, s *genai.Schema, path string) error {
	if s == nil {
		return nil
	}
	if v == nil {
		if s.Nullable {
			return nil
		}
		return fmt.Errorf("%s: null not allowed", path)
	}

	switch s.Type {
	case genai.TypeObject:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", path, jsonKind(v))
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return fmt.Errorf("%s: missing required field %q", path, name)
			}
		}
		for name, propSchema := range s.Properties {
			val, present := obj[name]
			if !present {
				continue
			}
			if err := validateAgainstSchema(val, propSchema, path+"."+name); err != nil {
				return err
			}
		}

	case genai.TypeArray:
		arr, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("%s: expected array, got %s", path, jsonKind(v))
		}
		for i, item := range arr {
			if err := validateAgainstSchema(item, s.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case genai.TypeString:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %s", path, jsonKind(v))
		}
		if len(s.Enum) > 0 && !containsString(s.Enum, str) {
			return fmt.Errorf("%s: %q not in enum %v", path, str, s.Enum)
		}

	case genai.TypeInteger:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%s: expected integer, got %s", path, jsonKind(v))
		}
		if n != math.Trunc(n) {
			return fmt.Errorf("%s: expected integer, got %v", path, n)
		}

	case genai.TypeNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s: expected number, got %s", path, jsonKind(v))
		}

	case genai.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %s", path, jsonKind(v))
		}
	}

	return nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// stripCodeFences removes a surrounding ```json fence if the model added one
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var jsonStringPattern = regexp.MustCompile(`"([^"\\]*(?:\\.[^"\\]*)*)"`)

// fixJSONEscaping escapes raw control characters found inside JSON string
// values. Only used after a plain json.Unmarshal has failed.
func fixJSONEscaping(jsonStr string) string {
	return jsonStringPattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		if len(match) < 2 {
			return match
		}
		content := match[1 : len(match)-1]

		var b bytes.Buffer
		for _, ch := range content {
			switch {
			case ch == '\n':
				b.WriteString(`\n`)
			case ch == '\r':
				b.WriteString(`\r`)
			case ch == '\t':
				b.WriteString(`\t`)
			case ch == '\f':
				b.WriteString(`\f`)
			case ch == '\b':
				b.WriteString(`\b`)
			case ch < 0x20:
				fmt.Fprintf(&b, `\u%04x`, ch)
			default:
				b.WriteRune(ch)
			}
		}
		return `"` + b.String() + `"`
	})
}
