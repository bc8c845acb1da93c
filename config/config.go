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
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

// Realtime defaults, applied to zero values.
const (
	defaultViewportDebounce        = 500 * time.Millisecond
	defaultLocationThrottle        = 10 * time.Second
	defaultLocationPersistAccuracy = 100
	defaultMaxViewportCells        = 10000
	defaultUpdateRadius            = 5000
	defaultSearchActivityRadius    = 1000

	defaultSendBuffer     = 256
	defaultMaxMessageSize = 64 * 1024
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second

	defaultExpiryInterval     = 5 * time.Minute
	defaultExpiryStartupDelay = 5 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Worker configuration for the Pub/Sub push endpoint
	Worker struct {
		Port int `json:"port" yaml:"port"`
	} `json:"worker" yaml:"worker"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	// Firebase configuration for push notifications
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// PubSub configuration for event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// WebSocket configuration for the realtime gateway
	WebSocket WebSocketConfig `json:"websocket" yaml:"websocket"`

	// Realtime configuration for presence and fan-out
	Realtime RealtimeConfig `json:"realtime" yaml:"realtime"`

	// Expiry configuration for the listing expiry sweep
	Expiry ExpiryConfig `json:"expiry" yaml:"expiry"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// FirebaseConfig defines Firebase configuration for push notifications
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider); defaults to this process's worker /push
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// Expected audience of push JWTs on the worker; verification is skipped when empty
	PushAudience string `json:"pushAudience" yaml:"pushAudience"`
}

// WebSocketConfig defines transport limits of realtime connections
type WebSocketConfig struct {
	// Origins allowed to open a connection; empty allows any origin
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`

	// Outbound events buffered per connection before events are dropped
	SendBuffer int `json:"sendBuffer" yaml:"sendBuffer"`

	// Largest inbound frame in bytes
	MaxMessageSize int64 `json:"maxMessageSize" yaml:"maxMessageSize"`

	WriteWait time.Duration `json:"writeWait" yaml:"writeWait"`
	PongWait  time.Duration `json:"pongWait" yaml:"pongWait"`
}

// RealtimeConfig defines presence and fan-out tuning
type RealtimeConfig struct {
	// Quiet period after the last viewport change before a viewport update is pushed
	ViewportDebounce time.Duration `json:"viewportDebounce" yaml:"viewportDebounce"`

	// Minimum spacing between accepted location updates of one session
	LocationThrottle time.Duration `json:"locationThrottle" yaml:"locationThrottle"`

	// Location updates more accurate than this many meters are persisted to the user
	LocationPersistAccuracy float64 `json:"locationPersistAccuracy" yaml:"locationPersistAccuracy"`

	// Largest number of cells a single viewport may subscribe to
	MaxViewportCells int `json:"maxViewportCells" yaml:"maxViewportCells"`

	// Radius in meters of the nearby path of listing updates
	UpdateRadius float64 `json:"updateRadius" yaml:"updateRadius"`

	// Radius in meters within which map searches are announced
	SearchActivityRadius float64 `json:"searchActivityRadius" yaml:"searchActivityRadius"`
}

// ExpiryConfig defines the periodic listing expiry sweep
type ExpiryConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Interval     time.Duration `json:"interval" yaml:"interval"`
	StartupDelay time.Duration `json:"startupDelay" yaml:"startupDelay"`
}

func (c *RealtimeConfig) withDefaults() {
	if c.ViewportDebounce <= 0 {
		c.ViewportDebounce = defaultViewportDebounce
	}
	if c.LocationThrottle <= 0 {
		c.LocationThrottle = defaultLocationThrottle
	}
	if c.LocationPersistAccuracy <= 0 {
		c.LocationPersistAccuracy = defaultLocationPersistAccuracy
	}
	if c.MaxViewportCells <= 0 {
		c.MaxViewportCells = defaultMaxViewportCells
	}
	if c.UpdateRadius <= 0 {
		c.UpdateRadius = defaultUpdateRadius
	}
	if c.SearchActivityRadius <= 0 {
		c.SearchActivityRadius = defaultSearchActivityRadius
	}
}

func (c *WebSocketConfig) withDefaults() {
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
}

func (c *ExpiryConfig) withDefaults() {
	if c.Interval <= 0 {
		c.Interval = defaultExpiryInterval
	}
	if c.StartupDelay <= 0 {
		c.StartupDelay = defaultExpiryStartupDelay
	}
}

// ApplyDefaults fills every zero tuning value with its default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	c.WebSocket.withDefaults()
	c.Realtime.withDefaults()
	c.Expiry.withDefaults()
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

	// Try to find and load the config file
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

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
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

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
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

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
