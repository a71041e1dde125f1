package cmd

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"RiderBross/Controllers"
	"RiderBross/Models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect migrates on open
		_, err := connect()
		return err
	},
}

var adminName, adminEmail, adminPassword string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a dashboard administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password are required")
		}
		db, err := connect()
		if err != nil {
			return err
		}
		user, err := Controllers.CreateAdmin(db, adminName, adminEmail, adminPassword)
		if err != nil {
			return errors.Wrap(err, "could not create admin")
		}
		log.Info().Uint("id", user.Id).Str("email", user.Email).Msg("admin created")
		return nil
	},
}

var importVehiclesCmd = &cobra.Command{
	Use:   "import-vehicles <file.xlsx>",
	Short: "Import vehicles and owners from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		n, err := Models.ImportVehicles(db, args[0])
		if err != nil {
			return err
		}
		log.Info().Int("vehicles", n).Str("file", args[0]).Msg("import finished")
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrador", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password")
}
