package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrUndefinedTable = "42P01"

	// lineOverridesVersion is the first migration carrying the override
	// columns of schedule_lines.
	lineOverridesVersion = 2
)

// ErrDirtySchema is returned when the last migration did not finish.
var ErrDirtySchema = errors.New("database schema is dirty")

// SchemaCapabilities records which optional columns the connected schema
// carries, so repositories can run against a database that has not yet
// been migrated to the latest version.
type SchemaCapabilities struct {
	Version       uint
	LineOverrides bool
}

// CapabilitiesForVersion derives capabilities from a migration version.
func CapabilitiesForVersion(version uint) SchemaCapabilities {
	return SchemaCapabilities{
		Version:       version,
		LineOverrides: version >= lineOverridesVersion,
	}
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LoadSchemaCapabilities reads the migration version recorded by
// golang-migrate. A database that was never migrated reports version 0.
func LoadSchemaCapabilities(ctx context.Context, db rowQuerier) (SchemaCapabilities, error) {
	var (
		version int64
		dirty   bool
	)

	err := db.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == pgErrUndefinedTable) {
			return CapabilitiesForVersion(0), nil
		}
		return SchemaCapabilities{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	if dirty {
		return SchemaCapabilities{}, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}

	return CapabilitiesForVersion(uint(version)), nil
}
