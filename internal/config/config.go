// Package config defines the configuration structures for the dockprep
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the remote-fetch cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// StorageConfig holds filesystem layout for per-job working directories.
type StorageConfig struct {
	WorkDir    string `mapstructure:"work_dir"`
	UploadDir  string `mapstructure:"upload_dir"`
	ResultsDir string `mapstructure:"results_dir"`
}

// ToolsConfig holds the external-binary paths and timeouts for structure
// conversion and docking.
type ToolsConfig struct {
	OpenBabelBin   string        `mapstructure:"openbabel_bin"`
	SminaBin       string        `mapstructure:"smina_bin"`
	ConvertTimeout time.Duration `mapstructure:"convert_timeout"`
	DockTimeout    time.Duration `mapstructure:"dock_timeout"`
}

// RemoteConfig holds endpoints and timeouts for the remote structure and
// compound sources.
type RemoteConfig struct {
	UniProtBaseURL string        `mapstructure:"uniprot_base_url"`
	AlphaFoldURL   string        `mapstructure:"alphafold_url"`
	ESMFoldURL     string        `mapstructure:"esmfold_url"`
	PubChemBaseURL string        `mapstructure:"pubchem_base_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	FoldTimeout    time.Duration `mapstructure:"fold_timeout"`
}

// DockingConfig holds default docking engine parameters.
type DockingConfig struct {
	NumModes       int     `mapstructure:"num_modes"`
	Exhaustiveness int     `mapstructure:"exhaustiveness"`
	BoxSize        float64 `mapstructure:"box_size"`
	LigandPH       float64 `mapstructure:"ligand_ph"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// Config is the root configuration structure.  Every infrastructure
// component and application service reads its settings from the relevant
// sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Docking  DockingConfig  `mapstructure:"docking"`
	Log      LogConfig      `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must not be negative, got %d", c.Redis.DB)
	}

	if c.Storage.WorkDir == "" {
		return fmt.Errorf("config: storage.work_dir is required")
	}

	if c.Tools.ConvertTimeout <= 0 {
		return fmt.Errorf("config: tools.convert_timeout must be positive")
	}
	if c.Tools.DockTimeout <= 0 {
		return fmt.Errorf("config: tools.dock_timeout must be positive")
	}

	if c.Docking.NumModes < 1 || c.Docking.NumModes > 9 {
		return fmt.Errorf("config: docking.num_modes %d is out of range [1, 9]", c.Docking.NumModes)
	}
	if c.Docking.Exhaustiveness < 1 {
		return fmt.Errorf("config: docking.exhaustiveness must be at least 1, got %d", c.Docking.Exhaustiveness)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}
