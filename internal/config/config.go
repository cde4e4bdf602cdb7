package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Gallery  GalleryConfig  `yaml:"gallery"`
	Database DatabaseConfig `yaml:"database"`
	Detector DetectorConfig `yaml:"detector"`
	Cache    CacheConfig    `yaml:"cache"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Match    MatchConfig    `yaml:"match"`
	Log      LogConfig      `yaml:"log"`
	Web      WebConfig      `yaml:"web"`
}

type GalleryConfig struct {
	Root string `yaml:"root"` // directory that is scanned for photos
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`         // sqlite, postgres or mariadb
	URL          string `yaml:"url"`            // file path for sqlite, DSN otherwise
	MaxOpenConns int    `yaml:"max_open_conns"` // Maximum open connections (default 25)
	MaxIdleConns int    `yaml:"max_idle_conns"` // Maximum idle connections (default 5)
}

type DetectorConfig struct {
	ModelsDir     string  `yaml:"models_dir"`     // directory holding the dlib model files
	ScalingFactor float64 `yaml:"scaling_factor"` // decode scale, defaults to 0.1
}

type CacheConfig struct {
	Size int `yaml:"size"`
}

type CleanupConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type MatchConfig struct {
	DistanceThreshold float64 `yaml:"distance_threshold"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev or prod
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS whitelist, localhost is always allowed
}

// Driver names accepted in DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMariaDB  = "mariadb"
)

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a positive float from the environment, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads a positive duration (e.g. "15m") from the environment.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load builds the configuration from environment variables. When
// PHOTO_FACES_CONFIG points to a YAML file, values set there override the
// environment.
func Load() (*Config, error) {
	cfg := &Config{
		Gallery: GalleryConfig{
			Root: os.Getenv("GALLERY_ROOT"),
		},
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", DriverSQLite),
			URL:          envString("DATABASE_URL", "photo-faces.db"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Detector: DetectorConfig{
			ModelsDir:     envString("DETECTOR_MODELS_DIR", "models"),
			ScalingFactor: envFloat("DETECTOR_SCALING_FACTOR", constants.DefaultScalingFactor),
		},
		Cache: CacheConfig{
			Size: envInt("CACHE_SIZE", constants.ImageCacheSize),
		},
		Cleanup: CleanupConfig{
			Interval: envDuration("CLEANUP_INTERVAL", constants.DefaultCleanupInterval),
		},
		Match: MatchConfig{
			DistanceThreshold: envFloat("MATCH_DISTANCE_THRESHOLD", constants.DefaultMatchDistance),
		},
		Log: LogConfig{
			Mode: envString("LOG_MODE", "dev"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
	}

	if path := os.Getenv("PHOTO_FACES_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays non-zero values from a YAML file onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMariaDB:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for driver %s", c.Database.Driver)
	}
	if c.Detector.ScalingFactor <= 0 || c.Detector.ScalingFactor > 1 {
		return fmt.Errorf("detector scaling factor must be in (0, 1], got %v", c.Detector.ScalingFactor)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
	}
	return nil
}
