package application

import (
	"context"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationManager applies module-embedded schema files in registration
// order. Schemas are written to be idempotent (CREATE TABLE IF NOT EXISTS),
// so Apply is safe to run on every start.
type MigrationManager interface {
	RegisterSchema(fsys fs.FS, path string)
	Apply(ctx context.Context) error
}

type schemaRef struct {
	fsys fs.FS
	path string
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []schemaRef
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

func (m *migrationManager) RegisterSchema(fsys fs.FS, path string) {
	m.schemas = append(m.schemas, schemaRef{fsys: fsys, path: path})
}

func (m *migrationManager) Apply(ctx context.Context) error {
	for _, ref := range m.schemas {
		sql, err := fs.ReadFile(ref.fsys, ref.path)
		if err != nil {
			return err
		}
		if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
			return err
		}
	}
	return nil
}
