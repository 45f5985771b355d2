package portability

import "github.com/nspass/nspass-mockd/pkg/router"

// RoutesExporter writes the route table in match order.
type RoutesExporter struct {
	// AsJSON outputs JSON instead of YAML.
	AsJSON bool
}

type routeTable struct {
	Title   string             `json:"title,omitempty" yaml:"title,omitempty"`
	Version string             `json:"version,omitempty" yaml:"version,omitempty"`
	Routes  []router.RouteInfo `json:"routes" yaml:"routes"`
}

// Export implements Exporter.
func (e *RoutesExporter) Export(c *Collection) ([]byte, error) {
	if c == nil {
		return nil, &ExportError{Format: FormatRoutes, Message: "collection cannot be nil"}
	}
	routes := c.Routes
	if routes == nil {
		routes = []router.RouteInfo{}
	}
	return encode(FormatRoutes, routeTable{Title: c.Title, Version: c.Version, Routes: routes}, !e.AsJSON)
}

// Format implements Exporter.
func (e *RoutesExporter) Format() Format {
	return FormatRoutes
}
