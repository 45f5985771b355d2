// Package proxy forwards requests the mock does not answer to the real
// backend.
package proxy
