package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zyprctl/zyprctl/internal/zypper"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zyprctl",
		Short: "Reconcile zypper repositories against a desired state",
		Long: `Zyprctl converges a single zypper package repository towards a
declared state by querying zypper, computing the difference and applying
add or remove operations as needed.

The final result is printed as JSON on stdout so configuration management
frameworks can consume it; all progress logging goes to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("zypper", zypper.DefaultBinary, "Path to the zypper binary")

	// Add subcommands
	rootCmd.AddCommand(NewEnsureCmd())
	rootCmd.AddCommand(NewStatusCmd())

	return rootCmd
}
