package portability

import (
	"slices"
	"sync"
)

// Registry maps formats to exporters.
type Registry struct {
	mu        sync.RWMutex
	exporters map[Format]Exporter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exporters: make(map[Format]Exporter)}
}

var defaultRegistry = NewRegistry()

func init() {
	RegisterExporter(&OpenAPIExporter{})
	RegisterExporter(&RoutesExporter{})
}

// RegisterExporter adds an exporter to the default registry.
func RegisterExporter(exporter Exporter) {
	defaultRegistry.RegisterExporter(exporter)
}

// GetExporter returns the exporter for a format from the default registry.
func GetExporter(format Format) Exporter {
	return defaultRegistry.GetExporter(format)
}

// ListFormats returns the formats of the default registry.
func ListFormats() []Format {
	return defaultRegistry.ListFormats()
}

// RegisterExporter adds an exporter to the registry, replacing any
// exporter for the same format.
func (r *Registry) RegisterExporter(exporter Exporter) {
	if exporter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[exporter.Format()] = exporter
}

// GetExporter returns the exporter for format, or nil.
func (r *Registry) GetExporter(format Format) Exporter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exporters[format]
}

// ListFormats returns the registered formats in sorted order.
func (r *Registry) ListFormats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
