package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"RiderBross/Config"
	"RiderBross/Models"
)

var (
	configPath string
	cfg        Config.Config
)

var rootCmd = &cobra.Command{
	Use:   "riderbross",
	Short: "RiderBross service records for motorcycle workshops",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := Config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, importVehiclesCmd)
}

func setupLogging(cfg Config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func connect() (*gorm.DB, error) {
	return Models.Connect(cfg.Database)
}
