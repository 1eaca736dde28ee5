package config

import (
	"os"
	"strings"
	"testing"
)

func TestPhotoURL_EmptyDomain(t *testing.T) {
	cfg := PhotoPrismConfig{
		Domain: "",
	}

	result := cfg.PhotoURL("photo123")

	if result != "" {
		t.Errorf("expected empty string for empty domain, got '%s'", result)
	}
}

func TestPhotoURL_CorrectFormat(t *testing.T) {
	cfg := PhotoPrismConfig{
		Domain: "https://photos.example.com",
	}

	result := cfg.PhotoURL("test123")

	// Verify OSC 8 start sequence exists: \x1b]8;;
	startSeq := "\x1b]8;;"
	if !strings.HasPrefix(result, startSeq) {
		t.Error("expected result to start with OSC 8 sequence '\\x1b]8;;'")
	}

	// Verify end sequence exists: \x1b]8;;\x1b\\
	endSeq := "\x1b]8;;\x1b\\"
	if !strings.HasSuffix(result, endSeq) {
		t.Error("expected result to end with OSC 8 close sequence")
	}

	if !strings.Contains(result, "q=uid:test123") {
		t.Errorf("expected result to contain the search URL, got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_DRIVER", "SQLITE_PATH", "GEOCODER_RATE", "GEOCODER_USER_AGENT",
		"CLUSTER_BATCH_SIZE", "CLUSTER_MIN_SIZE", "LOG_LEVEL", "WEB_PORT", "SCAN_SCHEDULE",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver sqlite, got '%s'", cfg.Database.Driver)
	}
	if !strings.HasSuffix(cfg.Database.SQLitePath, "memories.db") {
		t.Errorf("expected default sqlite path to end with memories.db, got '%s'", cfg.Database.SQLitePath)
	}
	if cfg.Geocoder.Rate != 1 {
		t.Errorf("expected default geocoder rate 1, got %f", cfg.Geocoder.Rate)
	}
	if cfg.Geocoder.UserAgent == "" {
		t.Error("expected default user agent")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got '%s'", cfg.Log.Level)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Web.Port)
	}
	if cfg.ScanSchedule != "" {
		t.Errorf("expected scheduled scans disabled by default, got '%s'", cfg.ScanSchedule)
	}
}

func TestLoad_ClusterDefaultsFromYAML(t *testing.T) {
	cfg := Load()

	expected := ClusterConfig{
		BatchSize:              50,
		SubClusterRadiusMeters: 20000,
		TravelJumpMeters:       50000,
		MinClusterSize:         5,
		TravelMinClusterSize:   1,
	}
	if cfg.Cluster != expected {
		t.Errorf("expected cluster defaults %+v, got %+v", expected, cfg.Cluster)
	}
}

func TestLoad_ClusterOverrides(t *testing.T) {
	t.Setenv("CLUSTER_BATCH_SIZE", "10")
	t.Setenv("CLUSTER_SUB_CLUSTER_RADIUS", "5000")
	t.Setenv("CLUSTER_MIN_SIZE", "3")

	cfg := Load()

	if cfg.Cluster.BatchSize != 10 {
		t.Errorf("expected batch size 10, got %d", cfg.Cluster.BatchSize)
	}
	if cfg.Cluster.SubClusterRadiusMeters != 5000 {
		t.Errorf("expected radius 5000, got %f", cfg.Cluster.SubClusterRadiusMeters)
	}
	if cfg.Cluster.MinClusterSize != 3 {
		t.Errorf("expected min size 3, got %d", cfg.Cluster.MinClusterSize)
	}
	if cfg.Cluster.TravelJumpMeters != 50000 {
		t.Errorf("expected untouched travel jump 50000, got %f", cfg.Cluster.TravelJumpMeters)
	}
}

func TestLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "invalid"},
		{"negative", "-100"},
		{"zero", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLUSTER_BATCH_SIZE", tt.value)
			t.Setenv("GEOCODER_RATE", tt.value)

			cfg := Load()

			if cfg.Cluster.BatchSize != 50 {
				t.Errorf("expected default batch size 50 for %q, got %d", tt.value, cfg.Cluster.BatchSize)
			}
			if cfg.Geocoder.Rate != 1 {
				t.Errorf("expected default rate 1 for %q, got %f", tt.value, cfg.Geocoder.Rate)
			}
		})
	}
}

func TestLoad_PhotoPrismConfig(t *testing.T) {
	t.Setenv("PHOTOPRISM_URL", "https://photos.test.com")
	t.Setenv("PHOTOPRISM_USERNAME", "testuser")
	t.Setenv("PHOTOPRISM_PASSWORD", "testpass")
	t.Setenv("PHOTOPRISM_DATABASE_URL", "photoprism:photoprism@tcp(mariadb:3306)/photoprism")

	cfg := Load()

	if cfg.PhotoPrism.URL != "https://photos.test.com" {
		t.Errorf("expected URL 'https://photos.test.com', got '%s'", cfg.PhotoPrism.URL)
	}
	if cfg.PhotoPrism.Username != "testuser" {
		t.Errorf("expected username 'testuser', got '%s'", cfg.PhotoPrism.Username)
	}
	if cfg.PhotoPrism.Password != "testpass" {
		t.Errorf("expected password 'testpass', got '%s'", cfg.PhotoPrism.Password)
	}
	if cfg.PhotoPrism.DatabaseURL == "" {
		t.Error("expected database URL to be set")
	}
}

func TestLoad_DatabaseConfig(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/memories")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg := Load()

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got '%s'", cfg.Database.Driver)
	}
	if cfg.Database.URL != "postgres://u:p@localhost/memories" {
		t.Errorf("unexpected database URL '%s'", cfg.Database.URL)
	}
	if cfg.Database.SQLitePath != "/tmp/x.db" {
		t.Errorf("expected sqlite path '/tmp/x.db', got '%s'", cfg.Database.SQLitePath)
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", " https://memories.example.com, ,https://admin.example.com ")

	cfg := Load()

	want := []string{"https://memories.example.com", "https://admin.example.com"}
	if strings.Join(cfg.Web.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("expected origins %v, got %v", want, cfg.Web.AllowedOrigins)
	}
}
