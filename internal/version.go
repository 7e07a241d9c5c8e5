// Package internal is code only for consumption from within the lastquery
// project.
package internal

var (
	// Build-time parameters set -ldflags
	Version = "unknown"
	Commit  = "unknown"
	Built   = "unknown"
)
