package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/pos?sslmode=disable", pgx5URL("postgres://u:p@db:5432/pos?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/pos", pgx5URL("postgresql://u@db/pos"))
	assert.Equal(t, "pgx5://u@db/pos", pgx5URL("pgx5://u@db/pos"))
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/000001_init.up.sql")
	assert.Contains(t, files, "migrations/000001_init.down.sql")
}
