package portability

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/nspass/nspass-mockd/pkg/validation"
)

const componentPrefix = "#/components/schemas/"

// schemaConverter translates the body schemas of a validation.Registry
// into OpenAPI 3.0 component schemas. Cross-document $refs such as
// "user.update.json" become component references.
type schemaConverter struct {
	registry *validation.Registry
	done     map[string]*openapi3.Schema
	visiting map[string]bool
}

func newSchemaConverter(registry *validation.Registry) *schemaConverter {
	return &schemaConverter{
		registry: registry,
		done:     make(map[string]*openapi3.Schema),
		visiting: make(map[string]bool),
	}
}

// ref returns a component reference for the named schema, converting it on
// first use. It returns nil when the registry does not know the name.
func (c *schemaConverter) ref(name string) *openapi3.SchemaRef {
	if s, ok := c.done[name]; ok {
		return openapi3.NewSchemaRef(componentPrefix+name, s)
	}
	if c.registry == nil || c.visiting[name] {
		return nil
	}
	raw, ok := c.registry.Raw(name)
	if !ok {
		return nil
	}
	var node map[string]any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil
	}

	c.visiting[name] = true
	s := c.convert(node).Value
	delete(c.visiting, name)
	c.done[name] = s
	return openapi3.NewSchemaRef(componentPrefix+name, s)
}

// components returns every converted schema keyed by component name.
func (c *schemaConverter) components() openapi3.Schemas {
	out := make(openapi3.Schemas, len(c.done))
	for name, s := range c.done {
		out[name] = &openapi3.SchemaRef{Value: s}
	}
	return out
}

func (c *schemaConverter) convert(node map[string]any) *openapi3.SchemaRef {
	s := &openapi3.Schema{}

	if ref, ok := node["$ref"].(string); ok {
		if target := c.ref(refName(ref)); target != nil {
			s.AllOf = openapi3.SchemaRefs{target}
		}
	}

	switch t := node["type"].(type) {
	case string:
		s.Type = &openapi3.Types{t}
	case []any:
		// OpenAPI 3.0 has no type unions; "null" maps to nullable.
		var types []string
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				s.Nullable = true
			} else if name != "" {
				types = append(types, name)
			}
		}
		if len(types) == 1 {
			s.Type = &openapi3.Types{types[0]}
		}
	}

	if v, ok := node["description"].(string); ok {
		s.Description = v
	}
	if v, ok := node["format"].(string); ok {
		s.Format = v
	}
	if v, ok := node["enum"].([]any); ok {
		s.Enum = v
	}
	if v, ok := node["const"]; ok {
		s.Enum = []any{v}
	}
	if s.Type == nil && len(s.Enum) > 0 {
		if _, isString := s.Enum[0].(string); isString {
			s.Type = &openapi3.Types{openapi3.TypeString}
		}
	}

	if v, ok := node["minimum"].(float64); ok {
		s.Min = &v
	}
	if v, ok := node["maximum"].(float64); ok {
		s.Max = &v
	}
	if v, ok := node["minLength"].(float64); ok {
		s.MinLength = uint64(v)
	}
	if v, ok := node["maxLength"].(float64); ok {
		n := uint64(v)
		s.MaxLength = &n
	}

	if props, ok := node["properties"].(map[string]any); ok {
		s.Properties = make(openapi3.Schemas, len(props))
		for name, child := range props {
			if m, ok := child.(map[string]any); ok {
				s.Properties[name] = c.convert(m)
			}
		}
	}
	if req, ok := node["required"].([]any); ok {
		for _, v := range req {
			if name, ok := v.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		s.Items = c.convert(items)
	}
	if anyOf, ok := node["anyOf"].([]any); ok {
		for _, v := range anyOf {
			if m, ok := v.(map[string]any); ok {
				s.AnyOf = append(s.AnyOf, c.convert(m))
			}
		}
	}
	return &openapi3.SchemaRef{Value: s}
}

// refName turns "user.update.json" or "#/x/user.update.json" into
// "user.update".
func refName(ref string) string {
	return strings.TrimSuffix(path.Base(ref), ".json")
}

func envelopeSchemas() openapi3.Schemas {
	pagination := openapi3.NewObjectSchema().
		WithProperty("current", openapi3.NewIntegerSchema()).
		WithProperty("pageSize", openapi3.NewIntegerSchema()).
		WithProperty("total", openapi3.NewIntegerSchema()).
		WithProperty("totalPages", openapi3.NewIntegerSchema())

	replyA := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithPropertyRef("data", &openapi3.SchemaRef{Value: &openapi3.Schema{}}).
		WithPropertyRef("pagination", openapi3.NewSchemaRef(componentPrefix+"Pagination", pagination))
	replyA.Required = []string{"success"}

	status := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("errorCode", openapi3.NewStringSchema())
	status.Required = []string{"success"}

	replyB := openapi3.NewObjectSchema().
		WithProperty("status", status).
		WithPropertyRef("data", &openapi3.SchemaRef{Value: &openapi3.Schema{}})
	replyB.Required = []string{"status"}

	return openapi3.Schemas{
		"Pagination": &openapi3.SchemaRef{Value: pagination},
		"ReplyA":     &openapi3.SchemaRef{Value: replyA},
		"ReplyB":     &openapi3.SchemaRef{Value: replyB},
	}
}
