// Package portability exports the mock route table in portable formats.
//
// Two formats are supported:
//   - openapi: an OpenAPI 3.0 document built with kin-openapi, with the
//     request body schemas translated into component schemas
//   - routes: the native route table as YAML or JSON
//
// Basic export example:
//
//	exporter := portability.GetExporter(portability.FormatOpenAPI)
//	data, err := exporter.Export(&portability.Collection{
//		Title:   "NSPass Mock API",
//		Routes:  routes,
//		Schemas: registry,
//	})
package portability
