// Package dbtest opens a throwaway sqlite database with the full schema for
// package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "blood_donation_backend/internals/databases"
	helper "blood_donation_backend/internals/helpers"
	"blood_donation_backend/internals/helpers/dbtime"
)

// Epoch is the instant FixedClock starts at in tests.
var Epoch = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type Env struct {
	DB        *gorm.DB
	Clock     *dbtime.FixedClock
	Validator *helper.Validator
}

func Open(t *testing.T) Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blood_donation_test.db")

	db, err := database.OpenSQLite(path, &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	database.TunePool(db)
	t.Cleanup(func() { database.Close(db) })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	clock := dbtime.NewFixedClock(Epoch)
	return Env{DB: db, Clock: clock, Validator: helper.NewValidator(clock)}
}
