package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aptgen",
		Short: "Generate APT repository metadata for a tree of .deb packages",
		Long: `Aptgen scans a repository's package pool and generates the index files an
APT client needs: per-architecture Packages and Contents indices, and a signed
top-level Release manifest binding every index file by size and checksums.

The generated tree can be served by any static HTTP server.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(NewGenerateCmd())

	return rootCmd
}
