package gorm

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: stations and their officers
		{
			ID: "001_stations_officers",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Station{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&Officer{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("officers", "stations")
			},
		},

		// Migration 002: cases, participants and team assignments
		{
			ID: "002_cases",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Case{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&Participant{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&CaseOfficer{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("case_officers", "participants", "cases")
			},
		},

		// Migration 003: criminal register
		{
			ID: "003_criminals",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Criminal{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&CaseCriminal{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("case_criminals", "criminals")
			},
		},

		// Migration 004: participant lookups by case and name
		{
			ID: "004_participant_case_name_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_participants_case_name ON participants(case_id, name)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_participants_case_name").Error
			},
		},
	})

	return m.Migrate()
}
