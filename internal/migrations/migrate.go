package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var embedded embed.FS

// Up applies every pending migration bundled with the binary.
func Up(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedded, "sql")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	for _, r := range results {
		log.Info().Str("migration", r.Source.Path).Dur("duration", r.Duration).Msg("applied migration")
	}
	return nil
}
