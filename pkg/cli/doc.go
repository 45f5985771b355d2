// Package cli provides the command-line interface for nspass-mockd.
//
// Commands:
//   - serve: run the mock server in the foreground until interrupted
//   - routes: print the route table in match order
//   - seed: dump the effective seed data as YAML
//   - openapi: emit an OpenAPI 3 document of the route table
//   - export: export the route table in any supported format
//   - config: display the resolved configuration
//   - version: show version information
//
// Every command reads the optional --config file, then NSPASS_MOCK_*
// environment overrides, then its own flags.
package cli
