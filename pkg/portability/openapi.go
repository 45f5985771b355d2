package portability

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/nspass/nspass-mockd/pkg/router"
)

// Default document metadata.
const (
	DefaultTitle   = "NSPass Mock API"
	DefaultVersion = "1.0.0"
)

// OpenAPIExporter exports the route table as an OpenAPI 3.0 document.
type OpenAPIExporter struct {
	// AsYAML outputs YAML instead of JSON.
	AsYAML bool
}

// Export implements Exporter.
func (e *OpenAPIExporter) Export(c *Collection) ([]byte, error) {
	doc, err := e.Build(c)
	if err != nil {
		return nil, err
	}
	if !e.AsYAML {
		return encode(FormatOpenAPI, doc, false)
	}
	// Round-trip through JSON so the YAML keeps the OpenAPI field names.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &ExportError{Format: FormatOpenAPI, Message: "failed to marshal OpenAPI document", Cause: err}
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, &ExportError{Format: FormatOpenAPI, Message: "failed to marshal OpenAPI document", Cause: err}
	}
	return encode(FormatOpenAPI, tree, true)
}

// Format implements Exporter.
func (e *OpenAPIExporter) Format() Format {
	return FormatOpenAPI
}

// Build converts the collection to an OpenAPI document.
func (e *OpenAPIExporter) Build(c *Collection) (*openapi3.T, error) {
	if c == nil {
		return nil, &ExportError{Format: FormatOpenAPI, Message: "collection cannot be nil"}
	}
	title, version := c.Title, c.Version
	if title == "" {
		title = DefaultTitle
	}
	if version == "" {
		version = DefaultVersion
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       title,
			Version:     version,
			Description: "Mock backend for the NSPass dashboard",
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{},
	}
	if c.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: c.ServerURL}}
	}

	conv := newSchemaConverter(c.Schemas)
	var tags []string
	for _, rt := range c.Routes {
		p := convertPath(rt.Pattern)
		item := doc.Paths.Value(p)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(p, item)
		}
		item.SetOperation(rt.Method, operation(rt, conv))
		if rt.Tag != "" && !slices.Contains(tags, rt.Tag) {
			tags = append(tags, rt.Tag)
		}
	}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: t})
	}

	schemas := conv.components()
	for name, s := range envelopeSchemas() {
		schemas[name] = s
	}
	doc.Components.Schemas = schemas
	return doc, nil
}

func operation(rt router.RouteInfo, conv *schemaConverter) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = rt.Name
	op.Summary = rt.Summary
	if rt.Tag != "" {
		op.Tags = []string{rt.Tag}
	}

	params := pathParams(rt.Pattern)
	for _, name := range params {
		schema := openapi3.NewStringSchema()
		if name == "id" || strings.HasSuffix(name, "Id") {
			schema = openapi3.NewInt64Schema()
		}
		op.AddParameter(openapi3.NewPathParameter(name).WithSchema(schema))
	}

	if rt.Schema != "" {
		if ref := conv.ref(rt.Schema); ref != nil {
			required := len(ref.Value.Required) > 0 || len(ref.Value.AllOf) > 0 || len(ref.Value.AnyOf) > 0
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(required).WithJSONSchemaRef(ref),
			}
		}
	}

	reply := envelopeRef(rt.Convention)
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, response("成功", reply)),
	)
	if rt.Schema != "" {
		op.Responses.Set("400", response("请求参数错误", reply))
	}
	if len(params) > 0 {
		op.Responses.Set("404", response("资源不存在", reply))
	}
	return op
}

func response(desc string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(schema)}
}

func envelopeRef(convention string) *openapi3.SchemaRef {
	name := "ReplyA"
	if convention == "B" {
		name = "ReplyB"
	}
	return openapi3.NewSchemaRef(componentPrefix+name, envelopeSchemas()[name].Value)
}

// convertPath converts :param segments to {param}.
func convertPath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

func pathParams(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ":") {
			out = append(out, part[1:])
		}
	}
	return out
}
