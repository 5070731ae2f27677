package database

import (
	"errors"
	"fmt"

	"github.com/peter-abel/healthcare/db/migrations"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrator applies the embedded SQL migrations over an open gorm connection
type Migrator struct {
	m   *migrate.Migrate
	log *logrus.Logger
}

func NewMigrator(db *gorm.DB, log *logrus.Logger) (*Migrator, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

func (mg *Migrator) Up() error {
	return mg.report("up", mg.m.Up())
}

func (mg *Migrator) Down() error {
	return mg.report("down", mg.m.Down())
}

// Steps applies n migrations, rolling back when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.report(fmt.Sprintf("steps %d", n), mg.m.Steps(n))
}

func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *Migrator) report(op string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Infof("Migrate %s: no change", op)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	version, dirty, verr := mg.Version()
	if verr != nil {
		return verr
	}
	mg.log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Infof("Migrate %s: done", op)
	return nil
}
