// Package auth implements the mocked login flow: HS256 JWTs for sessions and
// bcrypt for stored passwords. None of it carries a security guarantee; it
// only has to behave like the real backend from the dashboard's side.
package auth
