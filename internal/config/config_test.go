package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("sqlite:\n  path: data/progress.db\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultLogMode, cfg.Log.Mode)
	assert.Equal(t, DefaultTTL, cfg.Redis.TTL)
	assert.Equal(t, DefaultTTL, cfg.Specs.TTL)
	assert.Equal(t, "data/progress.db", cfg.SQLite.Path)
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("GAMES_PG_URL", "postgres://games@db/games")

	cfg, err := Parse([]byte("postgres:\n  url: ${GAMES_PG_URL}\nserver:\n  port: \"9090\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://games@db/games", cfg.Postgres.URL)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestParseRejectsBadTTL(t *testing.T) {
	_, err := Parse([]byte("specs:\n  ttl: soon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specs.ttl")

	_, err = Parse([]byte("redis: [\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, 30*time.Second, TTLDuration("30s", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("bogus", time.Minute))
}
