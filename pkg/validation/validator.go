package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const baseURL = "https://nspass.local/schemas/"

// ErrUnknownSchema is returned when a route names a schema that was never
// registered.
var ErrUnknownSchema = errors.New("unknown schema")

// Registry holds the compiled request body schemas.
type Registry struct {
	schemas map[string]*jsonschema.Schema
	raw     map[string]json.RawMessage
}

// New compiles every embedded schema.
func New() (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schemas: %w", err)
	}

	r := &Registry{
		schemas: make(map[string]*jsonschema.Schema, len(entries)),
		raw:     make(map[string]json.RawMessage, len(entries)),
	}
	for _, e := range entries {
		data, err := fs.ReadFile(schemaFS, "schemas/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(baseURL+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", e.Name(), err)
		}
		r.raw[strings.TrimSuffix(e.Name(), ".json")] = data
	}
	for name := range r.raw {
		s, err := compiler.Compile(baseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", name, err)
		}
		r.schemas[name] = s
	}
	return r, nil
}

// MustNew is like New but panics on error. The schemas are embedded, so a
// failure here is a build defect.
func MustNew() *Registry {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Raw returns the source document of a schema.
func (r *Registry) Raw(name string) (json.RawMessage, bool) {
	data, ok := r.raw[name]
	return data, ok
}

// Validate checks doc, a value produced by encoding/json, against the named
// schema. It returns *Error when the document is invalid.
func (r *Registry) Validate(name string, doc any) error {
	s, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	err := s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Fields: []*FieldError{{Code: CodeSchema, Message: "请求参数错误"}}}
	}
	out := &Error{}
	collect(ve, out)
	if len(out.Fields) == 0 {
		out.add(&FieldError{Code: CodeSchema, Message: "请求参数错误"})
	}
	return out
}

func collect(ve *jsonschema.ValidationError, out *Error) {
	keyword := lastSegment(ve.KeywordLocation)
	if len(ve.Causes) == 0 || keyword == "anyOf" || keyword == "oneOf" {
		for _, fe := range toFieldErrors(keyword, ve) {
			out.add(fe)
		}
		return
	}
	for _, c := range ve.Causes {
		collect(c, out)
	}
}

func toFieldErrors(keyword string, ve *jsonschema.ValidationError) []*FieldError {
	field := pointerToField(ve.InstanceLocation)

	if keyword == "required" {
		var fes []*FieldError
		for _, name := range quoted(ve.Message) {
			f := name
			if field != "" {
				f = field + "." + name
			}
			fes = append(fes, &FieldError{Field: f, Code: CodeRequired, Message: f + "不能为空"})
		}
		return fes
	}

	code, suffix := CodeFormat, "格式错误"
	switch keyword {
	case "type":
		code, suffix = CodeType, "类型错误"
	case "enum", "const":
		code, suffix = CodeEnum, "取值无效"
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		code, suffix = CodeRange, "超出范围"
	case "minLength", "maxLength":
		code, suffix = CodeLength, "长度不符合要求"
	}
	label := field
	if label == "" {
		label = "请求体"
	}
	return []*FieldError{{Field: field, Code: code, Message: label + suffix}}
}

func lastSegment(loc string) string {
	if i := strings.LastIndex(loc, "/"); i >= 0 {
		return loc[i+1:]
	}
	return loc
}

// pointerToField turns a JSON pointer such as "/tags/0" into "tags.0".
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}

// quoted extracts 'single quoted' names from a message such as
// "missing properties: 'name', 'email'".
func quoted(msg string) []string {
	var out []string
	for {
		start := strings.IndexByte(msg, '\'')
		if start < 0 {
			return out
		}
		end := strings.IndexByte(msg[start+1:], '\'')
		if end < 0 {
			return out
		}
		out = append(out, msg[start+1:start+1+end])
		msg = msg[start+end+2:]
	}
}
