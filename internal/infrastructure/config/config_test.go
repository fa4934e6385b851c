package config

import (
	"context"
	"testing"
)

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error for empty secret in production")
	}
}

func TestLoad_DevelopmentFallsBack(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected development fallback secret")
	}
	if cfg.Production() {
		t.Fatal("development config reported as production")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessTokenTTL.Hours() != 24 {
		t.Fatalf("expected 24h access TTL, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL.Hours() != 168 {
		t.Fatalf("expected 168h refresh TTL, got %v", cfg.RefreshTokenTTL)
	}
}

func TestMySQLConfig_DSN(t *testing.T) {
	cfg := MySQLConfig{Host: "db", Port: "3306", User: "console", Password: "pw", Database: "console"}
	want := "console:pw@tcp(db:3306)/console?charset=utf8mb4&parseTime=true&loc=UTC"
	if got := cfg.DSN(); got != want {
		t.Fatalf("dsn mismatch:\n got %s\nwant %s", got, want)
	}

	cfg.Password = ""
	want = "console@tcp(db:3306)/console?charset=utf8mb4&parseTime=true&loc=UTC"
	if got := cfg.DSN(); got != want {
		t.Fatalf("dsn mismatch:\n got %s\nwant %s", got, want)
	}
}
