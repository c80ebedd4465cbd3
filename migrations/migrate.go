// Package migrations embeds the goose SQL migrations and applies them on
// startup.
package migrations

import (
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed *.sql
var embedMigrations embed.FS

func Migrate(pgurl string) error {
	migrationDB, err := sql.Open("pgx", pgurl)
	if err != nil {
		return err
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(migrationDB, "."); err != nil {
		return err
	}
	if err := migrationDB.Close(); err != nil {
		return err
	}

	log.Info().Msg("migrations applied")
	return nil
}
