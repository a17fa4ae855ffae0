package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 9090
  mode: "debug"
database:
  host: "db.internal"
  user: "svc"
  password: "secret"
  db_name: "dockprep"
redis:
  addr: "cache.internal:6379"
storage:
  work_dir: "/var/lib/dockprep"
tools:
  openbabel_bin: "/opt/openbabel/bin/obabel"
docking:
  num_modes: 5
log:
  level: "debug"
  format: "console"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidFile(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "/var/lib/dockprep", cfg.Storage.WorkDir)
	assert.Equal(t, "/opt/openbabel/bin/obabel", cfg.Tools.OpenBabelBin)
	assert.Equal(t, 5, cfg.Docking.NumModes)

	// Unset fields must pick up defaults.
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultSminaBin, cfg.Tools.SminaBin)
	assert.Equal(t, DefaultConvertTimeout, cfg.Tools.ConvertTimeout)
	assert.Equal(t, DefaultDockTimeout, cfg.Tools.DockTimeout)
	assert.Equal(t, DefaultLigandPH, cfg.Docking.LigandPH)
	assert.Equal(t, "/var/lib/dockprep/uploads", cfg.Storage.UploadDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvDefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultWorkDir, cfg.Storage.WorkDir)
	assert.Equal(t, DefaultNumModes, cfg.Docking.NumModes)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("DOCKPREP_SERVER_PORT", "7001")
	t.Setenv("DOCKPREP_TOOLS_SMINA_BIN", "/usr/local/bin/smina")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "/usr/local/bin/smina", cfg.Tools.SminaBin)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"no db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"no redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"no work dir", func(c *Config) { c.Storage.WorkDir = "" }, "storage.work_dir"},
		{"zero convert timeout", func(c *Config) { c.Tools.ConvertTimeout = -time.Second }, "convert_timeout"},
		{"too many modes", func(c *Config) { c.Docking.NumModes = 10 }, "num_modes"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Docking.Exhaustiveness = 16
	cfg.Redis.DefaultTTL = 5 * time.Minute
	ApplyDefaults(cfg)
	assert.Equal(t, 16, cfg.Docking.Exhaustiveness)
	assert.Equal(t, 5*time.Minute, cfg.Redis.DefaultTTL)
}

func TestApplyDefaultsNilIsSafe(t *testing.T) {
	ApplyDefaults(nil)
}

func TestMustLoadPanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "none.yaml")) })
}
