package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/KillerBee88/star-burger/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migrationDB interface {
	DBTX
	TxBeginner
}

func Migrate(ctx context.Context, db migrationDB, log *logger.Logger) error {
	return migrate(ctx, db, migrationFiles, "migrations", log)
}

func migrate(ctx context.Context, db migrationDB, fsys fs.FS, dir string, log *logger.Logger) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	upMigrations, err := pendingCandidates(fsys, dir)
	if err != nil {
		return err
	}

	log.Debug("migrations found", "count", len(upMigrations))

	query := "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)"

	for _, migration := range upMigrations {
		var exists bool

		if err := db.QueryRow(ctx, query, migration).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration, err)
		}

		if exists {
			log.Debug("migration is already applied", "version", migration)
			continue
		}

		sqlBytes, err := fs.ReadFile(fsys, dir+"/"+migration)
		if err != nil {
			return fmt.Errorf("failed to read sql file %s: %w", migration, err)
		}

		err = WithTx(ctx, db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
				return fmt.Errorf("failed to complete sql file %s: %w", migration, err)
			}

			if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", migration); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info("migration applied", "version", migration)
	}

	return nil
}

func pendingCandidates(fsys fs.FS, dir string) ([]string, error) {
	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var upMigrations []string
	for _, file := range files {
		if name := file.Name(); strings.HasSuffix(name, ".up.sql") {
			upMigrations = append(upMigrations, name)
		}
	}

	sort.Strings(upMigrations)
	return upMigrations, nil
}
