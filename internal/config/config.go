package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-memories/internal/constants"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	PhotoPrism PhotoPrismConfig
	Database   DatabaseConfig
	Geocoder   GeocoderConfig
	Cluster    ClusterConfig
	Log        LogConfig
	Web        WebConfig

	// ScanSchedule is a cron spec for periodic scans in serve mode; empty disables them.
	ScanSchedule string
}

type PhotoPrismConfig struct {
	URL         string
	Username    string
	Password    string
	Domain      string // public domain for generating photo links (e.g., https://photos.example.com)
	DatabaseURL string // MariaDB DSN for direct database access (e.g., photoprism:photoprism@tcp(mariadb:3306)/photoprism)
}

// PhotoURL returns an OSC 8 hyperlink for terminal emulators (iTerm2, etc.)
// Displays the UID but makes it clickable to open the photo in PhotoPrism
// Returns empty string if Domain is not set
func (c *PhotoPrismConfig) PhotoURL(uid string) string {
	if c.Domain == "" {
		return ""
	}
	url := c.Domain + "/library/browse?view=cards&order=newest&q=uid:" + uid
	// OSC 8 hyperlink format: \e]8;;URL\e\\TEXT\e]8;;\e\\
	return "\x1b]8;;" + url + "\x1b\\" + uid + "\x1b]8;;\x1b\\"
}

type DatabaseConfig struct {
	Driver       string // sqlite (default) or postgres
	URL          string // PostgreSQL connection URL
	SQLitePath   string // SQLite database file (default ~/.photo-memories/memories.db)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type GeocoderConfig struct {
	URL       string  // defaults to the public Nominatim instance
	UserAgent string  // sent with every request, required by Nominatim's usage policy
	Language  string  // preferred language of place names (optional)
	Rate      float64 // requests per second (default 1)
}

// ClusterConfig holds the clustering tunables.
type ClusterConfig struct {
	BatchSize              int     `yaml:"batch_size"`
	SubClusterRadiusMeters float64 `yaml:"sub_cluster_radius_meters"`
	TravelJumpMeters       float64 `yaml:"travel_jump_meters"`
	MinClusterSize         int     `yaml:"min_cluster_size"`
	TravelMinClusterSize   int     `yaml:"travel_min_cluster_size"`
}

type LogConfig struct {
	Level  string // debug, info, warn, error (default info)
	Format string // text or json (default text)
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // extra CORS origins besides localhost
}

type defaults struct {
	Cluster ClusterConfig `yaml:"cluster"`
}

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

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
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

// envString returns the env var or the default when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated env var, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".photo-memories", "memories.db")
	}
	return filepath.Join(home, ".photo-memories", "memories.db")
}

func loadClusterDefaults() ClusterConfig {
	d := defaults{Cluster: ClusterConfig{
		BatchSize:              constants.CheckpointBatchSize,
		SubClusterRadiusMeters: constants.SubClusterRadiusMeters,
		TravelJumpMeters:       constants.TravelJumpMeters,
		MinClusterSize:         constants.MinClusterSize,
		TravelMinClusterSize:   constants.TravelMinClusterSize,
	}}
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return d.Cluster
}

func Load() *Config {
	cluster := loadClusterDefaults()

	return &Config{
		PhotoPrism: PhotoPrismConfig{
			URL:         os.Getenv("PHOTOPRISM_URL"),
			Username:    os.Getenv("PHOTOPRISM_USERNAME"),
			Password:    os.Getenv("PHOTOPRISM_PASSWORD"),
			Domain:      os.Getenv("PHOTOPRISM_DOMAIN"),
			DatabaseURL: os.Getenv("PHOTOPRISM_DATABASE_URL"),
		},
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", DriverSQLite),
			URL:          os.Getenv("DATABASE_URL"),
			SQLitePath:   envString("SQLITE_PATH", defaultSQLitePath()),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Geocoder: GeocoderConfig{
			URL:       os.Getenv("GEOCODER_URL"),
			UserAgent: envString("GEOCODER_USER_AGENT", constants.DefaultGeocoderUserAgent),
			Language:  os.Getenv("GEOCODER_LANGUAGE"),
			Rate:      envFloat("GEOCODER_RATE", constants.DefaultGeocoderRate),
		},
		Cluster: ClusterConfig{
			BatchSize:              envInt("CLUSTER_BATCH_SIZE", cluster.BatchSize),
			SubClusterRadiusMeters: envFloat("CLUSTER_SUB_CLUSTER_RADIUS", cluster.SubClusterRadiusMeters),
			TravelJumpMeters:       envFloat("CLUSTER_TRAVEL_JUMP", cluster.TravelJumpMeters),
			MinClusterSize:         envInt("CLUSTER_MIN_SIZE", cluster.MinClusterSize),
			TravelMinClusterSize:   envInt("CLUSTER_TRAVEL_MIN_SIZE", cluster.TravelMinClusterSize),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		ScanSchedule: os.Getenv("SCAN_SCHEDULE"),
	}
}
