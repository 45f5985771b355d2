// Package oauth simulates the code exchange step of a third-party OAuth2
// login. No provider is ever contacted: an authorization code maps
// deterministically onto a synthetic identity, so the same code always
// signs in the same user.
//
// Codes that are empty or start with "invalid" are rejected, which lets the
// dashboard exercise its failure path.
package oauth
