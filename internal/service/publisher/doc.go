// Package publisher orchestrates the release pipeline: per platform it
// rebuilds the staging directory from the build server, resolves component
// versions, packages artifacts into zip archives and uploads them to the
// release store; after the platform loop it rewrites the wiki redirect pages
// and pushes the change.
//
// Execution is fully synchronous and run-to-completion: one step begins only
// after the prior one finishes, and a failed external call aborts the run.
// Upload failures are the single exception—they are recorded per item and the
// loop continues.
package publisher
