package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations (posts, comments and the
// (post_id, creation_date) index) to the database behind conStr.
func Migrate(ctx context.Context, conStr string) error {
	conf, err := pgx.ParseConfig(conStr)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	db := stdlib.OpenDB(*conf)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.StandardLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
