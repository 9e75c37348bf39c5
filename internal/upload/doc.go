// Package upload posts release archives to the hosted file-release store.
//
// Upload failures are deliberately not raised as errors: each attempt yields
// a Result and the pipeline proceeds to the remaining artifacts, reporting an
// aggregate summary at the end of the run.
package upload
