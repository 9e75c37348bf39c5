// Package credentials resolves host-scoped upload credentials from a local
// netrc file. Only the login and password fields of a machine record are
// used.
package credentials
