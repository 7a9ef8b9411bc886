package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/sigmaSd/rustman-database/internal/database"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd(cfg *models.DatabaseConfig) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [TERM...]",
		Short: "Search the local database",
		Long: `Prints every crate whose name or description contains all of the given
terms, case-insensitively. With no terms every crate is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := database.New(nil)
			if err := db.Load(cfg.DatabasePath); err != nil {
				return err
			}

			matches, err := db.Search(args)
			if err != nil {
				return err
			}

			sort.SliceStable(matches, func(i, j int) bool {
				return matches[i].Name < matches[j].Name
			})

			logrus.Debugf("%d of %d crates match %q", len(matches), db.Len(), args)

			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range matches {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Version, c.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most this many results (0 = all)")

	return cmd
}
