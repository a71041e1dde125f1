package Models

import (
	"RiderBross/Config"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the configured database, migrates the schema and stores the
// handle in DB.
func Connect(cfg Config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", cfg.Driver)
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}

	DB = connection
	log.Info().Str("driver", cfg.Driver).Msg("database ready")
	return connection, nil
}

func openDialector(cfg Config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		dsn, err := normalizeMySQLDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return gormmysql.Open(dsn), nil
	}
	return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
}

// normalizeMySQLDSN forces parseTime so DATE columns scan into datatypes.Date.
func normalizeMySQLDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.Wrap(err, "invalid mysql dsn")
	}
	parsed.ParseTime = true
	return parsed.FormatDSN(), nil
}

// Migrate creates or updates every table, lookup tables first.
func Migrate(db *gorm.DB) error {
	// 1. Lookup tables with no dependencies
	if err := db.AutoMigrate(
		&User{},
		&Province{},
		&Brand{},
		&State{},
		&ServiceCategory{},
	); err != nil {
		return errors.Wrap(err, "failed to migrate lookup tables")
	}

	// 2. Tables with simple foreign keys
	if err := db.AutoMigrate(
		&ServiceType{}, // Depends on ServiceCategory
		&Client{},      // Depends on Province
		&Vehicle{},     // Depends on Brand and Client
	); err != nil {
		return errors.Wrap(err, "failed to migrate catalog tables")
	}

	// 3. Services and their line items
	if err := db.AutoMigrate(
		&Service{},
		&ServiceDetail{},
	); err != nil {
		return errors.Wrap(err, "failed to migrate service tables")
	}

	return nil
}
