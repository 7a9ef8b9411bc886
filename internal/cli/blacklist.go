package cli

import (
	"fmt"

	"github.com/sigmaSd/rustman-database/internal/blacklist"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/spf13/cobra"
)

// NewBlacklistCmd creates the blacklist command and its subcommands
func NewBlacklistCmd(cfg *models.DatabaseConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage the crate blacklist",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Append crate names to the blacklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := blacklist.Read(cfg.BlacklistPath)
			if err != nil {
				return err
			}
			for _, name := range args {
				if names, err = blacklist.Add(cfg.BlacklistPath, names, name); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print blacklisted crate names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := blacklist.Read(cfg.BlacklistPath)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	return cmd
}
