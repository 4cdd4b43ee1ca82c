// Package directory provides the user directory consulted by the
// request pipeline.
//
// Two backends implement the Store interface: an in-memory map (the
// default; users do not survive restarts) and a SQLite database for
// single-instance deployments that want persistence. Domain outcomes
// are reported as the sentinel errors ErrExists, ErrNotFound, and
// ErrBadCredentials so handlers can map them to HTTP statuses without
// string matching.
//
// Passwords are stored as provided. This service is a development tool;
// it makes no attempt at credential storage security.
package directory
