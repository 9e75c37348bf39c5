// Package wiki updates the static redirect pages of the companion
// documentation repository. Version-control operations are delegated to the
// git client, invoked synchronously.
package wiki
