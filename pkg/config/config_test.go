package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNPassesThroughExplicitDSN(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://user:pw@localhost:5432/mercafresh"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN != "postgres://user:pw@localhost:5432/mercafresh" {
		t.Fatalf("DSN should be untouched, got %q", cfg.DSN)
	}
}

func TestEnsureDSNBuildsFromLegacyParts(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     5433,
		LegacyUser:     "mercafresh",
		LegacyPassword: "s3cret",
		LegacyName:     "store",
		LegacySSLMode:  "require",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"db.internal:5433", "mercafresh:s3cret", "/store", "sslmode=require"} {
		if !strings.Contains(cfg.DSN, want) {
			t.Fatalf("DSN %q missing %q", cfg.DSN, want)
		}
	}
}

func TestEnsureDSNReportsMissingParts(t *testing.T) {
	cfg := DBConfig{LegacyHost: "db.internal"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing legacy values")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name missing vars, got %v", err)
	}
}

func TestStripeEnvironmentNormalization(t *testing.T) {
	if env := (StripeConfig{Env: " Live "}).Environment(); env != "live" {
		t.Fatalf("expected live, got %q", env)
	}
	if env := (StripeConfig{}).Environment(); env != "test" {
		t.Fatalf("expected test default, got %q", env)
	}
}
