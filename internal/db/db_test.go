package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timesheet.db")

	database, err := Open(path, "it's-a-key")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.RunMigrations(), "second run must be a no-op")

	version, dirty, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	var n int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM timesheet_logs").Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, database.Close())
}

func TestOpen_WrongKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timesheet.db")

	database, err := Open(path, "right")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.Close())

	database, err = Open(path, "wrong")
	if err == nil {
		_, err = database.Exec("SELECT count(*) FROM sqlite_master")
		database.Close()
	}
	assert.Error(t, err)
}
