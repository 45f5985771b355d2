package portability

import (
	"fmt"
	"strings"
)

// Format represents a supported export format.
type Format string

// Supported export formats.
const (
	FormatUnknown Format = ""
	FormatOpenAPI Format = "openapi" // OpenAPI 3.0 document
	FormatRoutes  Format = "routes"  // Native route table
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatOpenAPI, FormatRoutes:
		return true
	default:
		return false
	}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openapi", "oas", "oas3":
		return FormatOpenAPI, nil
	case "routes", "native":
		return FormatRoutes, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown export format %q (supported: openapi, routes)", s)
	}
}
