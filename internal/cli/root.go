package cli

import (
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. cfg carries the environment defaults
// and is updated in place by flags.
func NewRootCmd(cfg *models.DatabaseConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rustman-db",
		Short: "Build and search a local snapshot of the crates.io index",
		Long: `rustman-db pages through the crates.io listing API concurrently,
stores every crate's name, newest version and description in a local
database file and answers substring searches against it.

Environment variables prefixed with RUSTMAN_ provide defaults for every flag.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfg.DatabasePath, "database", "d", cfg.DatabasePath, "Database file (.toml, .yaml, .json, optionally .gz/.zst/.xz)")
	rootCmd.PersistentFlags().StringVar(&cfg.BlacklistPath, "blacklist", cfg.BlacklistPath, "Blacklist file")

	// Add subcommands
	rootCmd.AddCommand(NewUpdateCmd(cfg))
	rootCmd.AddCommand(NewSearchCmd(cfg))
	rootCmd.AddCommand(NewBlacklistCmd(cfg))
	rootCmd.AddCommand(NewInfoCmd(cfg))

	return rootCmd
}
