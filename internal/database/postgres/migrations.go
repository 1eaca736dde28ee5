package postgres

import (
	"context"
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// migration is one embedded SQL file, versioned by its file name.
type migration struct {
	version string
	sql     string
}

func (p *Pool) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(p.db)
}

// appliedVersions creates the bookkeeping table when missing and returns the
// versions recorded in it, oldest first.
func (p *Pool) appliedVersions(ctx context.Context) ([]string, error) {
	if _, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	rows, err := p.builder().Select("version").From(migrationsTable).OrderBy("version").QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return versions, nil
}

// pendingMigrations returns the embedded migrations missing from applied,
// in file name order.
func pendingMigrations(applied []string) ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var pending []migration
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") || slices.Contains(applied, name) {
			continue
		}
		content, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		pending = append(pending, migration{version: name, sql: string(content)})
	}
	slices.SortFunc(pending, func(a, b migration) int { return strings.Compare(a.version, b.version) })
	return pending, nil
}

// Migrate applies pending migrations, each in its own transaction, and
// returns the versions it applied.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	applied, err := p.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := pendingMigrations(applied)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, m := range pending {
		if err := p.apply(ctx, m); err != nil {
			return done, err
		}
		done = append(done, m.version)
	}
	return done, nil
}

func (p *Pool) apply(ctx context.Context, m migration) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("execute migration %s: %w", m.version, err)
	}

	insert := sq.Insert(migrationsTable).Columns("version").Values(m.version).PlaceholderFormat(sq.Dollar).RunWith(tx)
	if _, err := insert.ExecContext(ctx); err != nil {
		return fmt.Errorf("record migration %s: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.version, err)
	}
	return nil
}

// MigrationsApplied returns the applied migration versions, oldest first.
func (p *Pool) MigrationsApplied(ctx context.Context) ([]string, error) {
	return p.appliedVersions(ctx)
}
