// Package handlers implements the mock NSPass REST API on top of a
// fixture.Store.
//
// Every collection gets the same five CRUD routes from a generic resource
// definition; action routes (enable, test, regenerateToken, ...) are
// written per resource. Handlers bind and validate the request body before
// touching the store and report failures as typed envelope errors.
package handlers
