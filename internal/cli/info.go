package cli

import (
	"fmt"

	"github.com/sigmaSd/rustman-database/internal/database"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sigmaSd/rustman-database/internal/signer"
	"github.com/sigmaSd/rustman-database/internal/utils"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command
func NewInfoCmd(cfg *models.DatabaseConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the local database file",
		Long: `Prints the crate count, size and SHA-256 of the database. When a GPG key
is given, the detached signature next to the database is verified too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := database.New(nil)
			if err := db.Load(cfg.DatabasePath); err != nil {
				return err
			}

			sum, err := utils.CalculateChecksums(cfg.DatabasePath)
			if err != nil {
				return &models.DatabaseError{Type: models.ErrFileOp, Path: cfg.DatabasePath, Err: err}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", cfg.DatabasePath)
			fmt.Fprintf(out, "Crates:   %d\n", db.Len())
			fmt.Fprintf(out, "Size:     %d bytes\n", sum.Size)
			fmt.Fprintf(out, "SHA256:   %s\n", sum.SHA256)

			if cfg.GPGKeyPath == "" {
				return nil
			}
			if !utils.FileExists(cfg.DatabasePath + signer.SignatureSuffix) {
				fmt.Fprintln(out, "Signature: none")
				return nil
			}

			gpgSigner, err := signer.NewGPGSigner(cfg.GPGKeyPath, cfg.GPGPassphrase)
			if err != nil {
				return &models.DatabaseError{
					Type: models.ErrInvalidConfig,
					Path: cfg.GPGKeyPath,
					Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
				}
			}
			if err := signer.VerifyFile(gpgSigner, cfg.DatabasePath); err != nil {
				fmt.Fprintln(out, "Signature: INVALID")
				return err
			}
			fmt.Fprintln(out, "Signature: OK")
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.GPGKeyPath, "gpg-key", "k", cfg.GPGKeyPath, "Verify the signature with this OpenPGP key")
	cmd.Flags().StringVarP(&cfg.GPGPassphrase, "gpg-passphrase", "p", cfg.GPGPassphrase, "GPG key passphrase")

	return cmd
}
