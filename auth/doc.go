// Package auth provides the authentication core for the driver registry:
// JWT issuance and validation (HS256, short-lived bearer tokens), the
// login flow over a bun-backed accounts repository, and bcrypt password
// verification.
//
// The token service and the guard middleware built on top of it are
// stateless. The signing key is injected at construction and read-only
// afterwards; every request is verified independently against wall-clock
// time, so all types here are safe for concurrent use.
package auth
