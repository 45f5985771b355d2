// Package config defines the nspass-mockd configuration file.
//
// A configuration file is YAML or JSON:
//
//	env: development
//	server:
//	  port: 8090
//	mock:
//	  apiPrefix: /api
//	  upstream: http://localhost:8080
//	  bypass: ["/api/upload/**"]
//	  actionLatency: 300ms
//	  resetSchedule: "0 4 * * *"
//
// Values may reference the environment with ${VAR} or ${VAR:-default}.
// After loading, NSPASS_MOCK_* environment variables override individual
// fields (see ApplyEnv), and CLI flags override both.
package config
