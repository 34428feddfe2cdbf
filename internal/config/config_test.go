package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FNE_API_KEY", "")
	t.Setenv("FNEV4_DB_PATH", "")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/fnev4.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 30*time.Second, cfg.FNE.Timeout)
	assert.Equal(t, int64(20<<20), cfg.Import.MaxUploadSize)
	assert.True(t, cfg.Import.CacheEnabled)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_YAMLAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
database:
  path: /tmp/fne.db
fne:
  base_url: https://fne.example/ws
  establishment: Siege
  timeout: 10s
import:
  upload_dir: /tmp/uploads
  cache_enabled: false
`)
	t.Setenv("FNE_API_KEY", "secret-key")
	t.Setenv("FNEV4_DB_PATH", "/var/lib/fnev4.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/fnev4.db", cfg.Database.Path, "environment overrides the file")
	assert.Equal(t, "secret-key", cfg.FNE.APIKey)
	assert.Equal(t, "https://fne.example/ws", cfg.FNE.BaseURL)
	assert.Equal(t, "Siege", cfg.FNE.Establishment)
	assert.Equal(t, 10*time.Second, cfg.FNE.Timeout)
	assert.Equal(t, "/tmp/uploads", cfg.Import.UploadDir)
	assert.False(t, cfg.Import.CacheEnabled)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "FNE_API_KEY=from-dotenv\nFNE_BASE_URL=https://fne.example\n")
	// registered so that the variables set by gotenv are cleared afterwards
	t.Setenv("FNE_API_KEY", "")
	t.Setenv("FNE_BASE_URL", "")
	require.NoError(t, os.Unsetenv("FNE_API_KEY"))
	require.NoError(t, os.Unsetenv("FNE_BASE_URL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.FNE.APIKey)
	assert.Equal(t, "https://fne.example", cfg.FNE.BaseURL)
}

func TestLoad_APIKeyWithoutBaseURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FNE_API_KEY", "secret-key")
	t.Setenv("FNE_BASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fne.base_url")
}

func TestToContainerConfig(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8081},
		Database: DatabaseConfig{Path: "x.db", BusyTimeout: time.Second},
		FNE:      FNEConfig{BaseURL: "https://fne.example", APIKey: "k", PointOfSale: "PV1"},
		Import:   ImportConfig{UploadDir: "up", MaxUploadSize: 10, CacheEnabled: true},
		Logger:   LoggerConfig{Level: "debug", Format: "json"},
	}

	cc := cfg.ToContainerConfig()
	require.NoError(t, cc.Validate())
	assert.Equal(t, "x.db", cc.Database.Path)
	assert.Equal(t, time.Second, cc.Database.BusyTimeout)
	assert.Equal(t, "PV1", cc.FNE.PointOfSale)
	assert.Equal(t, int64(10), cc.Import.MaxUploadSize)
	assert.Equal(t, 8081, cc.Server.Port)

	lc := cfg.ToLoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
