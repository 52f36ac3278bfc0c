package database

import (
	"context"
	"database/sql"

	"travelpoint/internal/platform/database/migrations"

	"github.com/pressly/goose/v3"
)

// gooseUp is swapped out in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUp(ctx, db, ".")
}
