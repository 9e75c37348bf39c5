// Package manifest parses the version manifest produced by the build server.
//
// The manifest lists one component per line (name first, version second) and
// may carry a driver revision marker that refines the version. Parsing is
// pure and isolated from the rest of the pipeline so the grammar can be
// tested without any I/O.
package manifest
