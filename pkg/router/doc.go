// Package router maps (method, path) pairs onto mock handlers.
//
// Routes are registered relative to an API prefix and kept sorted by
// specificity (see matching.Compare), so the first route that matches a
// request is always the most specific one. Templates with an identical
// shape keep registration order.
//
// Each route declares the envelope convention its replies are rendered in
// and, for body-carrying routes, the JSON Schema its body must satisfy.
package router
