package linkeddata

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalid marks JSON-LD blocks that cannot be embedded in a page.
var ErrInvalid = errors.New("linkeddata: invalid structured data")

const documentSchema = `{
  "type": "object",
  "minProperties": 1,
  "properties": {
    "@context": {"type": ["string", "object", "array"]},
    "@type": {"type": ["string", "array"]},
    "@id": {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("linked-data.json", strings.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("linked-data.json")
	})
	return schema, schemaErr
}

// Parse decodes a JSON-LD block. Blank input yields nil without error. Anything that is not
// a JSON object with at least one property fails with an error wrapping ErrInvalid.
func Parse(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	s, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("linkeddata: compile schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}

	object, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object", ErrInvalid)
	}
	return object, nil
}

func describe(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	var parts []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "#"
			}
			parts = append(parts, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(parts, "; ")
}
