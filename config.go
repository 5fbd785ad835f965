package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/9seconds/tracemap/providers"
	"github.com/BurntSushi/toml"
	"github.com/hjson/hjson-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen                             = "127.0.0.1:8080"
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
	DefaultCacheMemorySize                    = 10000

	CacheBackendFile     = "file"
	CacheBackendPostgres = "postgres"
)

var defaultProviderNames = []string{providers.NameIPAPI, providers.NameIPAPICo}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen         string           `json:"listen"`
	WorkerPoolSize uint             `json:"worker_pool_size"`
	CitiesPath     string           `json:"cities_path"`
	AirportsPath   string           `json:"airports_path"`
	CORSOrigins    []string         `json:"cors_origins"`
	Origin         *configOrigin    `json:"origin"`
	BasicAuth      configBasicAuth  `json:"basic_auth"`
	Cache          configCache      `json:"cache"`
	Probe          configProbe      `json:"probe"`
	Retry          configRetry      `json:"retry"`
	Providers      []configProvider `json:"providers"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

func (c config) GetProviders() []configProvider {
	if len(c.Providers) > 0 {
		return c.Providers
	}

	rv := make([]configProvider, len(defaultProviderNames))
	for i, v := range defaultProviderNames {
		rv[i].Name = v
	}

	return rv
}

type configOrigin struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != ""
}

type configCache struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	DSN        string `json:"dsn"`
	MemorySize uint   `json:"memory_size"`
}

func (c configCache) GetBackend() string {
	if c.Backend != "" {
		return strings.ToLower(c.Backend)
	}

	return CacheBackendFile
}

func (c configCache) GetPath() string {
	if c.Path != "" {
		return c.Path
	}

	return filepath.Join(os.TempDir(), "tracemap", "hop_locations.jsonl")
}

// GetDSN falls back to DATABASE_URL environment variable, so a
// password does not have to live in the config file.
func (c configCache) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	return os.Getenv("DATABASE_URL")
}

func (c configCache) GetMemorySize() int {
	if c.MemorySize == 0 {
		return DefaultCacheMemorySize
	}

	return int(c.MemorySize)
}

type configProbe struct {
	Binary     string   `json:"binary"`
	MaxHops    uint     `json:"max_hops"`
	Timeout    duration `json:"timeout"`
	Nameserver string   `json:"nameserver"`
}

type configRetry struct {
	Count uint     `json:"count"`
	Delay duration `json:"delay"`
}

type configProvider struct {
	Name                               string            `json:"name"`
	RateLimitInterval                  duration          `json:"rate_limit_interval"`
	RateLimitBurst                     uint              `json:"rate_limit_burst"`
	HTTPTimeout                        duration          `json:"http_timeout"`
	CircuitBreakerOpenThreshold        uint32            `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout      duration          `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTimeout duration          `json:"circuit_breaker_reset_failures_timeout"`
	SpecificParameters                 map[string]string `json:"specific_parameters"`
}

func (c configProvider) GetName() string {
	return c.Name
}

func (c configProvider) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configProvider) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configProvider) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c configProvider) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreakerOpenThreshold == 0 {
		return DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreakerOpenThreshold
}

func (c configProvider) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreakerHalfOpenTimeout.Duration == 0 {
		return DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreakerHalfOpenTimeout.Duration
}

func (c configProvider) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreakerResetFailuresTimeout.Duration == 0 {
		return DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreakerResetFailuresTimeout.Duration
}

func (c configProvider) GetSpecificParameters() map[string]string {
	if c.SpecificParameters == nil {
		return map[string]string{}
	}

	return c.SpecificParameters
}

// parseConfig reads HJSON, TOML or YAML config. A format is chosen by
// file extension, HJSON is a default one. All of them are normalized
// through JSON so field tags are the same.
func parseConfig(fs afero.Fs, path string) (*config, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	rawMap := map[string]interface{}{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(content), &rawMap); err != nil {
			return nil, fmt.Errorf("cannot parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &rawMap); err != nil {
			return nil, fmt.Errorf("cannot parse yaml: %w", err)
		}
	default:
		if err := hjson.Unmarshal(content, &rawMap); err != nil {
			return nil, fmt.Errorf("cannot parse json: %w", err)
		}
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize config: %w", err)
	}

	conf := config{}

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *config) validate() error {
	if _, _, err := net.SplitHostPort(c.GetListen()); err != nil {
		return fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	switch c.Cache.GetBackend() {
	case CacheBackendFile:
	case CacheBackendPostgres:
		if c.Cache.GetDSN() == "" {
			return errors.New("dsn is required for postgres cache")
		}
	default:
		return fmt.Errorf("unsupported cache backend %s", c.Cache.Backend)
	}

	if c.BasicAuth.Enabled() && c.BasicAuth.Password == "" {
		return errors.New("password is required for basic auth")
	}

	seenProviderNames := map[string]struct{}{}

	for _, v := range c.GetProviders() {
		if v.GetName() == "" {
			return errors.New("provider name is empty")
		}

		if _, ok := seenProviderNames[v.GetName()]; ok {
			return fmt.Errorf("Name %s is duplicated", v.GetName())
		}

		seenProviderNames[v.GetName()] = struct{}{}
	}

	return nil
}
