package schema

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/plaenen/commandkit/pkg/validators"
)

// Attribute maps stay plain JSON objects on the wire.
var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// JSONSchema renders the inputs struct as a JSON Schema document for
// manifests and remote discovery.
func (s *Schema[T]) JSONSchema() ([]byte, error) {
	var v T
	js := reflector.Reflect(v)
	data, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal json schema: %w", err)
	}
	return data, nil
}

// Mask returns a copy of attrs with the values of sensitive fields replaced
// by their masked form. Safe to hand to loggers.
func (s *Schema[T]) Mask(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, val := range attrs {
		if f, ok := s.byName[k]; ok && f.Sensitive {
			out[k] = validators.MaskString(fmt.Sprint(val))
			continue
		}
		out[k] = val
	}
	return out
}
