package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all service settings.
const envPrefix = "DOCKPREP"

// newViper builds a pre-configured viper instance: YAML file type, DOCKPREP_
// env prefix, automatic env binding, and a key replacer that maps "." to "_"
// so that nested keys like "database.host" resolve to
// "DOCKPREP_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Unmarshal only reads keys viper already knows about, so env-only keys
	// must be bound explicitly.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// envKeys lists every configuration key so that DOCKPREP_* variables are
// honoured even without a config file.
var envKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_upload_size", "server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.max_idle_conns", "database.conn_max_lifetime", "database.migration_path",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"storage.work_dir", "storage.upload_dir", "storage.results_dir",
	"tools.openbabel_bin", "tools.smina_bin", "tools.convert_timeout", "tools.dock_timeout",
	"remote.uniprot_base_url", "remote.alphafold_url", "remote.esmfold_url",
	"remote.pubchem_base_url", "remote.fetch_timeout", "remote.fold_timeout",
	"docking.num_modes", "docking.exhaustiveness", "docking.box_size", "docking.ligand_ph",
	"log.level", "log.format", "log.output",
}

// Load reads the YAML file at configPath, merges DOCKPREP_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from DOCKPREP_* environment variables
// with no config file required.  This is the loading strategy for
// containerised deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad wraps Load and panics on any error.  Intended for main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
