package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agencydesk/relay/internal/config"
	"github.com/agencydesk/relay/internal/db"
)

func main() {
	root := &cobra.Command{
		Use:   "relay",
		Short: "Conversation relay server",
	}
	root.PersistentFlags().String("config", "", "path to the config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			cfgPath, _ := cmd.Flags().GetString("config")
			runServe(cfgPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := db.Migrate(cfg.Postgres); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
