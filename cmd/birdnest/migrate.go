package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/birdnest/internal/app"
	"github.com/d60-Lab/birdnest/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建文章表",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.InitSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("table %q ready on %s", cfg.Store.Table, cfg.Store.Backend)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
