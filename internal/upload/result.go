package upload

import (
	"context"

	"github.com/amplopt/release-publisher/internal/logger"
)

// Result is the per-item outcome of an upload attempt.
type Result struct {
	// File is the uploaded archive's base name.
	File string
	// Summary is the descriptive text sent with the archive.
	Summary string
	// URL is the download location reported by the release store.
	URL string
	// Status is the HTTP status code, zero when the request never completed.
	Status int
	// Reason is the status text returned by the store.
	Reason string
	// Err is set when the upload failed or returned no download URL.
	Err error
}

// Failed reports whether the upload did not produce a usable download URL.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Results collects the outcomes of a whole run for end-of-run reporting.
type Results []Result

// FailedCount returns the number of failed uploads.
func (rs Results) FailedCount() int {
	var n int

	for _, r := range rs {
		if r.Failed() {
			n++
		}
	}

	return n
}

// Report logs a per-item and aggregate summary of the run's uploads.
func (rs Results) Report(ctx context.Context) {
	for _, r := range rs {
		if r.Failed() {
			logger.WarnKV(ctx, "Upload failed",
				"file", r.File, "status", r.Status, "reason", r.Reason, "error", r.Err)
			continue
		}

		logger.InfoKV(ctx, "Upload succeeded", "file", r.File, "url", r.URL)
	}

	logger.InfoKV(ctx, "Upload summary",
		"total", len(rs), "failed", rs.FailedCount())
}
