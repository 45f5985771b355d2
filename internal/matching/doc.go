// Package matching provides request matching algorithms for the mock runtime.
//
// Routes are declared as path templates made of literal segments and
// ":name" parameter segments, for example "/api/servers/:id/restart".
// A template matches a request path when both have the same number of
// segments, every literal segment is equal, and every parameter segment is
// non-empty.
//
// When several templates match the same path the most specific one wins:
//
//   - more literal segments beat fewer literal segments
//   - on a tie, the template whose first differing segment is a literal wins
//   - templates of identical shape are left in registration order
//
// So "/api/servers/stats" is preferred over "/api/servers/:id" for the path
// "/api/servers/stats". Score constants are defined in scores.go.
package matching
