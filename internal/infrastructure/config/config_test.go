package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AUTO_MIGRATE", "")
	t.Setenv("REBUILD_LOCK_TTL", "")
	t.Setenv("EXPORT_BATCH_SIZE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.AutoMigrate {
		t.Error("expected AutoMigrate to default to false")
	}
	if cfg.RebuildLockTTL != 600*time.Second {
		t.Errorf("unexpected lock ttl %v", cfg.RebuildLockTTL)
	}
	if cfg.ExportBatchSize != 1000 {
		t.Errorf("unexpected export batch size %d", cfg.ExportBatchSize)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("READ_TIMEOUT", "5")
	t.Setenv("INSERT_BATCH_SIZE", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if !cfg.AutoMigrate {
		t.Error("expected AutoMigrate true")
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.ReadTimeout)
	}
	if cfg.InsertBatchSize != 500 {
		t.Errorf("expected invalid batch size to fall back to 500, got %d", cfg.InsertBatchSize)
	}
}
