// Package requestlog keeps a bounded history of requests seen by the mock
// so users can check what the dashboard sent and how each request was
// handled: intercepted, passed through, bypassed or rejected.
//
// It is distinct from operational logging, which uses log/slog.
//
//	store := requestlog.NewMemoryStore(200)
//	store.Log(&requestlog.Entry{Method: "GET", Path: "/api/users", Outcome: "intercepted"})
//	recent := store.List(&requestlog.Filter{Outcome: "passthrough", Limit: 20})
package requestlog
