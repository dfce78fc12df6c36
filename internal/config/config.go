package config

import "time"

// Default configuration values.
const (
	defaultServiceName     = "enrichment"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8082
	defaultConcurrency     = 4
	defaultBatchSize       = 100
	defaultPollIntervalSec = 30

	defaultMinLanguageConfidence = 0.55
	defaultZeroShotThreshold     = 0.45
	defaultKeywordLimit          = 8
	defaultValuePhraseLimit      = 5
	defaultSidecarRPS            = 10

	defaultDBDriver       = "sqlite3"
	defaultDBPath         = "screenaso.db"
	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "screenaso"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5

	defaultRedisAddr    = "localhost:6379"
	defaultRedisChannel = "reviews.enriched"

	defaultLogLevel = "info"
)

// Config holds all configuration for the enrichment service. It is read
// once at startup and treated as immutable afterward.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Port         int           `env:"ENRICHMENT_PORT"        yaml:"port"`
	Debug        bool          `env:"APP_DEBUG"              yaml:"debug"`
	Concurrency  int           `env:"ENRICHMENT_CONCURRENCY" yaml:"concurrency"`
	BatchSize    int           `yaml:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// EnrichmentConfig holds the pipeline toggles and limits of the
// enrichment core. Fields map one-to-one onto the documented
// configuration surface.
type EnrichmentConfig struct {
	EnableZeroShot        bool    `env:"ENRICHMENT_ENABLE_ZERO_SHOT" yaml:"enable_zero_shot"`
	KeywordLimit          int     `yaml:"keyword_limit"`
	ValuePhraseLimit      int     `yaml:"value_phrase_limit"`
	MinLanguageConfidence float64 `yaml:"min_language_confidence"`
	ZeroShotThreshold     float64 `yaml:"zero_shot_threshold"`

	// MLServiceURL points at the optional model sidecar used for PII span
	// detection and zero-shot aspect classification. Empty disables the
	// sidecar entirely; the pipeline then performs no network I/O.
	MLServiceURL string `env:"ENRICHMENT_ML_SERVICE_URL" yaml:"ml_service_url"`

	// SidecarRPS caps requests per second against the sidecar.
	SidecarRPS int `yaml:"sidecar_rps"`
}

// DatabaseConfig holds review store configuration. Driver selects
// "postgres" for service deployments or "sqlite3" for offline batch runs.
type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER"         yaml:"driver"`
	Path     string `env:"SQLITE_PATH"       yaml:"path"`
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`

	MaxConnections int           `yaml:"max_connections"`
	MaxIdleConns   int           `yaml:"max_idle_connections"`
	ConnMaxLife    time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds the optional enriched-review publisher configuration.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Addr     string `env:"REDIS_ADDR"     yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	Database int    `yaml:"database"`
	Channel  string `yaml:"channel"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// Load loads configuration from the given path, applying defaults and
// environment overrides.
func Load(path string) (*Config, error) {
	return load[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setEnrichmentDefaults(&cfg.Enrichment)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchSize == 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.PollInterval == 0 {
		s.PollInterval = defaultPollIntervalSec * time.Second
	}
}

func setEnrichmentDefaults(e *EnrichmentConfig) {
	if e.KeywordLimit == 0 {
		e.KeywordLimit = defaultKeywordLimit
	}
	if e.ValuePhraseLimit == 0 {
		e.ValuePhraseLimit = defaultValuePhraseLimit
	}
	if e.MinLanguageConfidence == 0 {
		e.MinLanguageConfidence = defaultMinLanguageConfidence
	}
	if e.ZeroShotThreshold == 0 {
		e.ZeroShotThreshold = defaultZeroShotThreshold
	}
	if e.SidecarRPS == 0 {
		e.SidecarRPS = defaultSidecarRPS
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Path == "" {
		d.Path = defaultDBPath
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLife == 0 {
		d.ConnMaxLife = time.Hour
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = defaultRedisAddr
	}
	if r.Channel == "" {
		r.Channel = defaultRedisChannel
	}
}
