package main

import (
	"fmt"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/migrations"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/rdf"

	"github.com/spf13/cobra"
)

var (
	schemaOut     string
	migrationsDir string
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(migrateCmd)

	schemaCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "Write the schema to a file instead of stdout")
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "Migrations directory (default MIGRATIONS_DIR or ./migrations)")
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the Dgraph schema used by the live loader",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaOut == "" {
			fmt.Print(rdf.Schema())
			return nil
		}
		return rdf.WriteSchemaFile(schemaOut)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := migrationsDir
		if dir == "" {
			dir = util.GetEnvString("MIGRATIONS_DIR", "migrations")
		}
		if err := migrations.Up(dir, util.GetEnv("DATABASE_URL")); err != nil {
			return err
		}
		return output(map[string]string{"status": "migrated", "dir": dir}, func() {
			fmt.Printf("Migrations in %s applied\n", dir)
		})
	},
}
