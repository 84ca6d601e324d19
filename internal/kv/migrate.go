package kv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// RunMigrations applies the "*.up.sql" scripts of dir in file-name order and
// returns how many ran. Scripts must be idempotent since every start replays
// them all. Blank scripts are skipped and the first failing one stops the run.
func RunMigrations(ctx context.Context, db sqlx.ExecerContext, dir string) (int, error) {
	scripts, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return 0, fmt.Errorf("list migrations in %s: %w", dir, err)
	}
	slices.Sort(scripts)

	applied := 0
	for _, script := range scripts {
		body, err := os.ReadFile(script)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", filepath.Base(script), err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", filepath.Base(script), err)
		}
		applied++
		log.Debug().Str("migration", filepath.Base(script)).Msg("migration applied")
	}
	return applied, nil
}
