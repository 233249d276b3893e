package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigrations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"001_a.up.sql":   "CREATE TABLE a (id int);",
		"001_a.down.sql": "DROP TABLE a;",
		"002_b.up.sql":   "CREATE TABLE b (id int);",
		"002_b.down.sql": "DROP TABLE b;",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestMigrationFiles_Order(t *testing.T) {
	dir := writeMigrations(t)

	up, err := migrationFiles(dir, ".up.sql", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "001_a.up.sql"), filepath.Join(dir, "002_b.up.sql")}, up)

	down, err := migrationFiles(dir, ".down.sql", true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "002_b.down.sql"), filepath.Join(dir, "001_a.down.sql")}, down)
}

func TestMigrationFiles_Empty(t *testing.T) {
	_, err := migrationFiles(t.TempDir(), ".up.sql", false)
	assert.Error(t, err)
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	dir := writeMigrations(t)
	files, err := migrationFiles(dir, ".up.sql", false)
	require.NoError(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE a`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE b`).WillReturnError(errors.New("permission denied"))

	err = apply(context.Background(), mock, files)
	assert.ErrorContains(t, err, "002_b.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_RealMigrationsParse(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"), ".up.sql", false)
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}
