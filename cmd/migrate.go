package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datascrub-cli/internal/export"
	"github.com/KaramelBytes/datascrub-cli/internal/source"
)

var (
	migSource    sourceFlags
	migFrom      string
	migTo        string
	migDestTable string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --from <source> --to <conn>",
	Short: "Copy a table or query result into another database",
	Long: `Load a table, query result or file and write it to a destination database,
replacing the destination table. With --clean the table is normalized first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migFrom == "" || migTo == "" {
			return fmt.Errorf("both --from and --to are required")
		}
		dest := migDestTable
		if dest == "" {
			dest = conf().MigrateTable
		}
		// Validate the destination before doing any work on the source.
		if _, _, err := source.ParseConnString(migTo); err != nil {
			return err
		}

		s, err := migSource.openSession(cmd, migFrom)
		if err != nil {
			return err
		}
		db, _, err := source.OpenDatabase(migTo)
		if err != nil {
			return err
		}
		defer source.CloseDatabase(db)

		t := s.Active()
		if err := export.WriteDatabase(cmd.Context(), db, dest, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Migrated %d rows from %s to %s (table %s)\n",
			t.NumRows(), s.Source, source.RedactConnString(migTo), dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migSource.bind(migrateCmd)
	migrateCmd.Flags().StringVar(&migFrom, "from", "", "source file or connection string")
	migrateCmd.Flags().StringVar(&migTo, "to", "", "destination connection string")
	migrateCmd.Flags().StringVar(&migDestTable, "dest-table", "", "destination table (default from config migrate_table)")
}
