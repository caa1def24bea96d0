package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/config"
)

func TestDriverName(t *testing.T) {
	tests := map[string]string{
		"mysql":      "mysql",
		"postgres":   "postgres",
		"pgsql":      "postgres",
		"postgresql": "postgres",
		"sqlite":     "sqlite3",
		"sqlite3":    "sqlite3",
	}
	for input, expected := range tests {
		name, err := DriverName(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, name)
	}

	_, err := DriverName("oracle")
	assert.Error(t, err)
}

func TestInitDBSQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite3", Database: ":memory:"},
	}

	conn, err := InitDB(cfg)
	require.NoError(t, err)
	defer conn.Close()

	var fk int
	require.NoError(t, conn.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestInitDBUnsupported(t *testing.T) {
	_, err := InitDB(&config.Config{Database: config.DatabaseConfig{Driver: "oracle"}})
	assert.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	conn, err := OpenMemory()
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO t (id) VALUES (1)")
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.Get(&n, "SELECT COUNT(*) FROM t"))
	assert.Equal(t, 1, n)
}
