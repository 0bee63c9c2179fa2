// Package util holds the catalog and housekeeping commands: features,
// graph, history, version and doctor.
package util

import "github.com/spf13/cobra"

// Register attaches the util commands to root. Root must already define
// the catalog and configuration groups.
func Register(root *cobra.Command) {
	root.AddCommand(featuresCmd, dagCmd, historyCmd, versionCmd, doctorCmd)
}
