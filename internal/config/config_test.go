package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set only required env var
	os.Setenv("STORE_BUCKET", "test-bucket")
	defer os.Unsetenv("STORE_BUCKET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Store.Region != "eu-central-1" {
		t.Errorf("Store.Region = %q, want %q", cfg.Store.Region, "eu-central-1")
	}
	if cfg.Store.Timeout != 30*time.Second {
		t.Errorf("Store.Timeout = %s, want %s", cfg.Store.Timeout, 30*time.Second)
	}
	if cfg.Fetch.MinBytes != 100000 {
		t.Errorf("Fetch.MinBytes = %d, want %d", cfg.Fetch.MinBytes, 100000)
	}
	if cfg.Pipeline.CleanWorkers != 4 {
		t.Errorf("Pipeline.CleanWorkers = %d, want %d", cfg.Pipeline.CleanWorkers, 4)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Replica.Table != "auctions_raw" {
		t.Errorf("Replica.Table = %q, want %q", cfg.Replica.Table, "auctions_raw")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("STORE_BUCKET", "test-bucket")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("PIPELINE_CLEAN_WORKERS", "8")
	os.Setenv("STORE_TIMEOUT", "45s")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("STORE_BUCKET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("PIPELINE_CLEAN_WORKERS")
		os.Unsetenv("STORE_TIMEOUT")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Pipeline.CleanWorkers != 8 {
		t.Errorf("Pipeline.CleanWorkers = %d, want %d", cfg.Pipeline.CleanWorkers, 8)
	}
	if cfg.Store.Timeout != 45*time.Second {
		t.Errorf("Store.Timeout = %s, want %s", cfg.Store.Timeout, 45*time.Second)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_RequiredMissing(t *testing.T) {
	os.Unsetenv("STORE_BUCKET")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() without STORE_BUCKET must fail")
	}
	if !strings.Contains(err.Error(), "STORE_BUCKET") {
		t.Errorf("error = %v, want mention of STORE_BUCKET", err)
	}
}

func TestLoad_CommaSeparatedLists(t *testing.T) {
	os.Setenv("STORE_BUCKET", "test-bucket")
	os.Setenv("FILTER_DOMAINS", "somedomain.com,other.be")
	os.Setenv("FILTER_EMAILS", "a@b.com")
	defer func() {
		os.Unsetenv("STORE_BUCKET")
		os.Unsetenv("FILTER_DOMAINS")
		os.Unsetenv("FILTER_EMAILS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Filter.Domains) != 2 || cfg.Filter.Domains[0] != "somedomain.com" {
		t.Errorf("Filter.Domains = %v, want two entries", cfg.Filter.Domains)
	}
	if len(cfg.Filter.Emails) != 1 {
		t.Errorf("Filter.Emails = %v, want one entry", cfg.Filter.Emails)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	os.Setenv("STORE_BUCKET", "test-bucket")
	os.Setenv("SERVER_PORT", "not-a-port")
	defer func() {
		os.Unsetenv("STORE_BUCKET")
		os.Unsetenv("SERVER_PORT")
	}()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with invalid SERVER_PORT must fail")
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	os.Setenv("STORE_BUCKET", "test-bucket")
	os.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		os.Unsetenv("STORE_BUCKET")
		os.Unsetenv("LOG_LEVEL")
	}()

	_, err := Load()
	if err == nil {
		t.Fatal("Load() with bad LOG_LEVEL must fail")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error = %v, want mention of LOG_LEVEL", err)
	}
}

func TestAddr(t *testing.T) {
	sc := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := sc.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:9000")
	}

	sc = ServerConfig{Port: 8080}
	if got := sc.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want %q", got, ":8080")
	}
}

func TestString_MasksDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Replica.DSN = "user:password@tcp(db:3306)/auctions"

	s := cfg.String()
	if strings.Contains(s, "password") {
		t.Error("String() must not leak the replica DSN")
	}
	if !strings.Contains(s, "MASKED") {
		t.Error("String() must mark the DSN as masked")
	}
}
