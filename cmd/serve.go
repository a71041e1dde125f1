package cmd

import (
	"github.com/spf13/cobra"

	"RiderBross/FiberConfig"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		return FiberConfig.FiberConfig(cfg, db)
	},
}
