package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath = "."

	// StoreDriverSQLite selects the file-backed SQLite store.
	StoreDriverSQLite = "sqlite"
	// StoreDriverPostgres selects PostgreSQL (PostGIS enables the geodesic strategy).
	StoreDriverPostgres = "postgres"
)

// Defaults applied by New when a value is missing or zero.
const (
	DefaultHTTPPort             = 8000
	DefaultTable                = "location_data"
	DefaultSQLitePath           = "data/locations.db"
	DefaultAcquireTimeout       = 5 * time.Second
	DefaultCacheSize            = 1000
	DefaultSearchLimit          = 1000
	DefaultMaxSearchLimit       = 5000
	DefaultMaxRadiusMeters      = 50000
	DefaultSpatialRadiusMeters  = 15000
	DefaultLoaderBatchSize      = 5000
	DefaultRateLimitPerSecond   = 50
	DefaultRateLimitBurst       = 100
	DefaultRateLimitExpiresIn   = 3 * time.Minute
	defaultLogLevel             = "info"
	defaultServiceName          = "locator"
	defaultEnv                  = "local"
	defaultReadHeaderTimeoutSec = 5
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
		CORS      CORSConfig      `json:"cors" yaml:"cors"`
		RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
	} `json:"http" yaml:"http"`

	Store StoreConfig `json:"store" yaml:"store"`

	// Cache configuration for exact postcode lookups
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Search limits shared by the HTTP layer and the query planner
	Search SearchConfig `json:"search" yaml:"search"`

	// Distance strategy selection
	Distance DistanceConfig `json:"distance" yaml:"distance"`

	// Loader configuration for the ETL command
	Loader LoaderConfig `json:"loader" yaml:"loader"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// CORSConfig defines allowed cross-origin callers
type CORSConfig struct {
	AllowOrigins []string `json:"allowOrigins" yaml:"allowOrigins"`
}

// RateLimitConfig defines the per-client request limiter
type RateLimitConfig struct {
	Enabled   bool          `json:"enabled" yaml:"enabled"`
	PerSecond float64       `json:"perSecond" yaml:"perSecond"`
	Burst     int           `json:"burst" yaml:"burst"`
	ExpiresIn time.Duration `json:"expiresIn" yaml:"expiresIn"`
}

// StoreConfig defines where location rows live
type StoreConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string `json:"driver" yaml:"driver"`

	// Table holding the location rows
	Table string `json:"table" yaml:"table"`

	// AcquireTimeout bounds every store operation, including connection acquisition
	AcquireTimeout time.Duration `json:"acquireTimeout" yaml:"acquireTimeout"`

	// SlowQueryThreshold logs statements slower than this at warn level
	SlowQueryThreshold time.Duration `json:"slowQueryThreshold" yaml:"slowQueryThreshold"`

	SQLite struct {
		Path string `json:"path" yaml:"path"`
	} `json:"sqlite" yaml:"sqlite"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`
}

// CacheConfig defines the postcode LRU cache
type CacheConfig struct {
	Size int `json:"size" yaml:"size"`
	// TTL of a cached entry; zero disables expiry
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// SearchConfig defines search bounds
type SearchConfig struct {
	DefaultLimit               int     `json:"defaultLimit" yaml:"defaultLimit"`
	MaxLimit                   int     `json:"maxLimit" yaml:"maxLimit"`
	MaxRadiusMeters            float64 `json:"maxRadiusMeters" yaml:"maxRadiusMeters"`
	SpatialDefaultRadiusMeters float64 `json:"spatialDefaultRadiusMeters" yaml:"spatialDefaultRadiusMeters"`
}

// DistanceConfig defines distance strategy selection
type DistanceConfig struct {
	// Geodesic enables the store-native strategy when the probe succeeds
	Geodesic bool `json:"geodesic" yaml:"geodesic"`
}

// LoaderConfig defines ETL behaviour
type LoaderConfig struct {
	BatchSize int `json:"batchSize" yaml:"batchSize"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override YAML: STORE_SQLITE_PATH -> store.sqlite.path
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Store.Postgres != nil {
		// STORE_POSTGRES_REPLICAS_0_HOST, STORE_POSTGRES_REPLICAS_0_PORT, ...
		cfg.Store.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, cfg.Validate()
}

// ApplyDefaults fills every zero value with its default.
func (cfg *Config) ApplyDefaults() {
	if cfg.Env.Env == "" {
		cfg.Env.Env = defaultEnv
	}
	if cfg.Env.ServiceName == "" {
		cfg.Env.ServiceName = defaultServiceName
	}
	if cfg.Env.Log.Level == "" {
		cfg.Env.Log.Level = defaultLogLevel
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = DefaultHTTPPort
	}
	if cfg.HTTP.Timeouts.ReadHeaderTimeout == 0 {
		cfg.HTTP.Timeouts.ReadHeaderTimeout = defaultReadHeaderTimeoutSec * time.Second
	}
	if cfg.HTTP.RateLimit.PerSecond <= 0 {
		cfg.HTTP.RateLimit.PerSecond = DefaultRateLimitPerSecond
	}
	if cfg.HTTP.RateLimit.Burst <= 0 {
		cfg.HTTP.RateLimit.Burst = DefaultRateLimitBurst
	}
	if cfg.HTTP.RateLimit.ExpiresIn <= 0 {
		cfg.HTTP.RateLimit.ExpiresIn = DefaultRateLimitExpiresIn
	}
	if len(cfg.HTTP.CORS.AllowOrigins) == 0 {
		cfg.HTTP.CORS.AllowOrigins = []string{"*"}
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverSQLite
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = DefaultTable
	}
	if cfg.Store.AcquireTimeout <= 0 {
		cfg.Store.AcquireTimeout = DefaultAcquireTimeout
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultSQLitePath
	}

	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = DefaultCacheSize
	}
	if cfg.Cache.TTL < 0 {
		cfg.Cache.TTL = 0
	}

	if cfg.Search.MaxLimit <= 0 {
		cfg.Search.MaxLimit = DefaultMaxSearchLimit
	}
	if cfg.Search.DefaultLimit <= 0 || cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		cfg.Search.DefaultLimit = min(DefaultSearchLimit, cfg.Search.MaxLimit)
	}
	if cfg.Search.MaxRadiusMeters <= 0 {
		cfg.Search.MaxRadiusMeters = DefaultMaxRadiusMeters
	}
	if cfg.Search.SpatialDefaultRadiusMeters <= 0 || cfg.Search.SpatialDefaultRadiusMeters > cfg.Search.MaxRadiusMeters {
		cfg.Search.SpatialDefaultRadiusMeters = min(DefaultSpatialRadiusMeters, cfg.Search.MaxRadiusMeters)
	}

	if cfg.Loader.BatchSize <= 0 {
		cfg.Loader.BatchSize = DefaultLoaderBatchSize
	}
}

// Validate rejects configurations the service cannot run with.
func (cfg *Config) Validate() error {
	switch cfg.Store.Driver {
	case StoreDriverSQLite:
	case StoreDriverPostgres:
		if cfg.Store.Postgres == nil {
			return errors.New("store.postgres is required when store.driver is postgres")
		}
	default:
		return errors.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds read replicas from STORE_POSTGRES_REPLICAS_{index}_{field}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "STORE_POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
