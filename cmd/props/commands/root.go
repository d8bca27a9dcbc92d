package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool

	// buildVersion feeds the telemetry service version.
	buildVersion = "dev"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	buildVersion = version
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "props",
		Short: "Property wire-protocol inspector",
		Long: `props converts resource property bags between their native JSON form and
the protobuf Struct wire form the engine speaks, the same conversion the
SDK runtime performs during resource registration.

Features:
  - Marshal JSON property bags to the wire form
  - Unmarshal wire values back to native form
  - Render secret and unknown markers readably
  - Inspect the reserved wire signature constants`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newMarshalCommand())
	rootCmd.AddCommand(newUnmarshalCommand())
	rootCmd.AddCommand(newSigCommand())

	return rootCmd
}
