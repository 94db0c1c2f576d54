// Package config provides configuration management for fixity.
package config

// Default configuration values.
const (
	// DefaultRetentionDays is how long run history is kept.
	DefaultRetentionDays = 90

	// DefaultWorkers is the number of directory walker workers.
	// Zero lets the walker pick based on GOMAXPROCS.
	DefaultWorkers = 0

	// DefaultBaselineFile is the baseline file name inside DataDir.
	DefaultBaselineFile = "baseline.json"

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "10MB"
)

// DefaultExclusions is empty: every regular file is fingerprinted unless
// the user opts out.
var DefaultExclusions = []string{}
