package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLoginServerDefaults(t *testing.T) {
	cfg, err := LoadLoginServer(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, uint16(6900), cfg.Port)
	assert.Equal(t, DBInMemory, cfg.AccountDB.Type)
	require.Len(t, cfg.CharServers, 1)
}

func TestLoadLoginServerOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
account_db:
  type: postgres
  url: postgres://localhost/ro
char_servers:
  - name: Alpha
    address: 10.0.0.1
    port: 6121
  - name: Beta
    address: 10.0.0.2
    port: 6122
`), 0o644))

	cfg, err := LoadLoginServer(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(7000), cfg.Port)
	assert.Equal(t, DBPostgres, cfg.AccountDB.Type)
	require.Len(t, cfg.CharServers, 2)
	assert.Equal(t, "Beta", cfg.CharServers[1].Name)
}

func TestLoadCharServerFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "char.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
pincode_enabled: true
novice:
  map: prontera
  x: 150
  y: 150
  items:
    - {id: 1201, slot: 0, amount: 1}
`), 0o644))

	cfg, err := LoadCharServer(path)
	require.NoError(t, err)
	assert.True(t, cfg.PincodeEnabled)
	assert.Equal(t, "prontera", cfg.Novice.Map)
	require.Len(t, cfg.Novice.Items, 1)
	// untouched sections keep their defaults
	assert.NotEmpty(t, cfg.Doram.Items)
	assert.Equal(t, uint16(6121), cfg.Port)
}

func TestEnvOverridesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9999\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadLoginServer("ignored.yml")
	require.NoError(t, err)
	assert.Equal(t, uint16(9999), cfg.Port)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not a port"), 0o644))

	_, err := LoadLoginServer(path)
	assert.Error(t, err)
}
