package config

import "time"

// Default values applied to unset fields.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "dockprep"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = time.Hour
	DefaultRedisKeyPrefix = "dockprep:"

	DefaultWorkDir = "/tmp/dockprep"

	DefaultOpenBabelBin   = "obabel"
	DefaultSminaBin       = "smina"
	DefaultConvertTimeout = 60 * time.Second
	DefaultDockTimeout    = 300 * time.Second

	DefaultUniProtBaseURL = "https://rest.uniprot.org"
	DefaultAlphaFoldURL   = "https://alphafold.ebi.ac.uk/files"
	DefaultESMFoldURL     = "https://api.esmatlas.com/foldSequence/v1/pdb/"
	DefaultPubChemBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	DefaultFetchTimeout   = 30 * time.Second
	DefaultFoldTimeout    = 120 * time.Second

	DefaultNumModes       = 9
	DefaultExhaustiveness = 8
	DefaultBoxSize        = 20.0
	DefaultLigandPH       = 7.4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Minute
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = 32 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "dockprep"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.Storage.WorkDir == "" {
		cfg.Storage.WorkDir = DefaultWorkDir
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = cfg.Storage.WorkDir + "/uploads"
	}
	if cfg.Storage.ResultsDir == "" {
		cfg.Storage.ResultsDir = cfg.Storage.WorkDir + "/results"
	}

	if cfg.Tools.OpenBabelBin == "" {
		cfg.Tools.OpenBabelBin = DefaultOpenBabelBin
	}
	if cfg.Tools.SminaBin == "" {
		cfg.Tools.SminaBin = DefaultSminaBin
	}
	if cfg.Tools.ConvertTimeout == 0 {
		cfg.Tools.ConvertTimeout = DefaultConvertTimeout
	}
	if cfg.Tools.DockTimeout == 0 {
		cfg.Tools.DockTimeout = DefaultDockTimeout
	}

	if cfg.Remote.UniProtBaseURL == "" {
		cfg.Remote.UniProtBaseURL = DefaultUniProtBaseURL
	}
	if cfg.Remote.AlphaFoldURL == "" {
		cfg.Remote.AlphaFoldURL = DefaultAlphaFoldURL
	}
	if cfg.Remote.ESMFoldURL == "" {
		cfg.Remote.ESMFoldURL = DefaultESMFoldURL
	}
	if cfg.Remote.PubChemBaseURL == "" {
		cfg.Remote.PubChemBaseURL = DefaultPubChemBaseURL
	}
	if cfg.Remote.FetchTimeout == 0 {
		cfg.Remote.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Remote.FoldTimeout == 0 {
		cfg.Remote.FoldTimeout = DefaultFoldTimeout
	}

	if cfg.Docking.NumModes == 0 {
		cfg.Docking.NumModes = DefaultNumModes
	}
	if cfg.Docking.Exhaustiveness == 0 {
		cfg.Docking.Exhaustiveness = DefaultExhaustiveness
	}
	if cfg.Docking.BoxSize == 0 {
		cfg.Docking.BoxSize = DefaultBoxSize
	}
	if cfg.Docking.LigandPH == 0 {
		cfg.Docking.LigandPH = DefaultLigandPH
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}
