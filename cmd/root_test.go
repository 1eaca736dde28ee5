package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("PHOTO_MEMORIES_TEST_VALUE=from-file\nPHOTO_MEMORIES_TEST_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PHOTO_MEMORIES_TEST_VALUE", "")
	os.Unsetenv("PHOTO_MEMORIES_TEST_VALUE")
	t.Setenv("PHOTO_MEMORIES_TEST_SET", "from-env")

	if err := loadEnvFile(path, true); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("PHOTO_MEMORIES_TEST_VALUE"); got != "from-file" {
		t.Errorf("expected value from file, got %q", got)
	}
	if got := os.Getenv("PHOTO_MEMORIES_TEST_SET"); got != "from-env" {
		t.Errorf("expected existing variable to win, got %q", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	if err := loadEnvFile(missing, false); err != nil {
		t.Errorf("expected missing default file to be ignored, got %v", err)
	}
	if err := loadEnvFile(missing, true); err == nil {
		t.Error("expected error for missing explicit file")
	}
}
