package portability

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/nspass/nspass-mockd/pkg/router"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

// Collection is the input to an export: the route table and the schema
// registry that route bodies refer to.
type Collection struct {
	Title   string
	Version string
	// ServerURL is listed as the document's server, if set.
	ServerURL string
	Routes    []router.RouteInfo
	Schemas   *validation.Registry
}

// FromRouter collects the routes of r in match order.
func FromRouter(r *router.Router) []router.RouteInfo {
	routes := r.Routes()
	out := make([]router.RouteInfo, len(routes))
	for i, rt := range routes {
		out[i] = rt.Info()
	}
	return out
}

// Exporter renders a Collection in one format.
type Exporter interface {
	// Export returns the raw bytes suitable for writing to a file.
	Export(c *Collection) ([]byte, error)

	// Format returns the format this exporter produces.
	Format() Format
}

// ExportError reports a failed export.
type ExportError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	msg := e.Message
	if e.Format != FormatUnknown {
		msg = string(e.Format) + ": " + msg
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// encode writes v as YAML or indented JSON.
func encode(format Format, v any, asYAML bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if asYAML {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return nil, &ExportError{Format: format, Message: "failed to marshal output", Cause: err}
	}
	return data, nil
}

// ExportOptions selects the output of Export.
type ExportOptions struct {
	// Format defaults to FormatOpenAPI.
	Format Format

	// AsYAML controls YAML vs JSON output. nil uses the exporter default:
	// JSON for openapi, YAML for routes.
	AsYAML *bool
}

// Export is a convenience function that exports to a specified format.
func Export(c *Collection, opts *ExportOptions) ([]byte, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	format := opts.Format
	if format == FormatUnknown {
		format = FormatOpenAPI
	}

	var exporter Exporter
	switch format {
	case FormatOpenAPI:
		e := &OpenAPIExporter{}
		if opts.AsYAML != nil {
			e.AsYAML = *opts.AsYAML
		}
		exporter = e
	case FormatRoutes:
		e := &RoutesExporter{}
		if opts.AsYAML != nil {
			e.AsJSON = !*opts.AsYAML
		}
		exporter = e
	default:
		exporter = GetExporter(format)
	}
	if exporter == nil {
		return nil, &ExportError{Format: format, Message: "unsupported export format"}
	}
	return exporter.Export(c)
}
