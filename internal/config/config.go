// Package config loads service settings from the environment and the map layout (tracks,
// markers, tile layers) from a YAML or JSON file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/saviobatista/telemetry-map/internal/types"
)

// ErrNoSources is returned when the ingestor has nothing to capture
var ErrNoSources = errors.New("SOURCES environment variable is required")

// Config holds the application configuration
type Config struct {
	NATSURL   string
	RedisAddr string
	DBConnStr string
	HTTPAddr  string
	LogLevel  string
	LogFile   string
	MapConfig string
	Sources   []string
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		NATSURL:   getenv("NATS_URL", "nats://nats:4222"),
		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		DBConnStr: os.Getenv("DB_CONN_STR"),
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFile:   os.Getenv("LOG_FILE"),
		MapConfig: getenv("MAP_CONFIG", "./map.yaml"),
	}

	if sources := os.Getenv("SOURCES"); sources != "" {
		for _, s := range strings.Split(sources, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Sources = append(cfg.Sources, s)
			}
		}
	}

	return cfg, nil
}

// LoadIngestor is Load for the ingestor, which needs at least one source
func LoadIngestor() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if len(cfg.Sources) == 0 {
		return nil, ErrNoSources
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// TrackDefaults apply to tracks without their own color or trail time
type TrackDefaults struct {
	Color     string `mapstructure:"color" validate:"required"`
	TrailTime int    `mapstructure:"trailTime" validate:"gt=0"`
}

// RenderConfig selects how geometry is published
type RenderConfig struct {
	Projection string `mapstructure:"projection" validate:"required"`
}

// MapConfig is the map layout
type MapConfig struct {
	Defaults TrackDefaults           `mapstructure:"defaults"`
	Render   RenderConfig            `mapstructure:"render"`
	Tracks   []types.TrackConfig     `mapstructure:"tracks" validate:"unique=Name,dive"`
	Markers  []types.MarkerConfig    `mapstructure:"markers" validate:"unique=Name,dive"`
	Layers   []types.TileLayerConfig `mapstructure:"layers" validate:"unique=Name,dive"`
}

// MapLoader reads and validates the map file
type MapLoader struct {
	v        *viper.Viper
	validate *validator.Validate
	mu       sync.Mutex
}

// NewMapLoader creates a loader for the file at path. The format follows the extension.
func NewMapLoader(path string) *MapLoader {
	v := viper.New()
	v.SetDefault("defaults.color", "#ffff00")
	v.SetDefault("defaults.trailTime", 900)
	v.SetDefault("render.projection", "EPSG:4326")
	v.SetConfigFile(path)

	return &MapLoader{v: v, validate: validator.New()}
}

// Load reads the file and returns the validated map configuration
func (l *MapLoader) Load() (*MapConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading map config: %w", err)
	}
	return l.decode()
}

func (l *MapLoader) decode() (*MapConfig, error) {
	var cfg MapConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding map config: %w", err)
	}
	if err := l.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid map config: %w", err)
	}
	return &cfg, nil
}

// Watch calls onChange with every valid revision of the file. Invalid revisions go to
// onError and leave the previous configuration in effect.
func (l *MapLoader) Watch(onChange func(*MapConfig), onError func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		l.mu.Lock()
		cfg, err := l.decode()
		l.mu.Unlock()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}
