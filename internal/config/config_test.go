package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MCP.Transport != "stdio" || cfg.MCP.Host != "localhost" || cfg.MCP.Port != 3000 {
		t.Fatalf("unexpected mcp defaults: %+v", cfg.MCP)
	}
	if cfg.MCP.MaxContentChars != 10000 {
		t.Fatalf("MaxContentChars = %d, want 10000", cfg.MCP.MaxContentChars)
	}
	if !cfg.Search.Headless {
		t.Fatal("search should default to headless")
	}
	if cfg.Search.RateLimit != 1 || cfg.Search.RateIntervalMs != 2000 {
		t.Fatalf("unexpected search rate defaults: %+v", cfg.Search)
	}
	if cfg.Fetch.RateLimit != 1 || cfg.Fetch.RateIntervalMs != 1000 || cfg.Fetch.TimeoutMs != 30000 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
mcp:
  transport: HTTP
  port: 4000
search:
  headless: false
  maxResults: 5
fetch:
  respectRobots: true
  useReadability: true
log:
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("server port = %d", cfg.Server.Port)
	}
	if cfg.MCP.Transport != "http" || cfg.MCP.Port != 4000 {
		t.Fatalf("unexpected mcp config: %+v", cfg.MCP)
	}
	if cfg.Search.Headless {
		t.Fatal("headless: false was ignored")
	}
	if cfg.Search.MaxResults != 5 || !cfg.Fetch.RespectRobots || !cfg.Fetch.UseReadability || cfg.Log.Format != "json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "mcp:\n  port: 4000\nsearch:\n  headless: true\n")
	t.Setenv("WEBSCOUT_MCP_PORT", "5000")
	t.Setenv("WEBSCOUT_SEARCH_HEADLESS", "false")
	t.Setenv("WEBSCOUT_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MCP.Port != 5000 {
		t.Fatalf("env override ignored, port = %d", cfg.MCP.Port)
	}
	if cfg.Search.Headless {
		t.Fatal("env headless override ignored")
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("redis url = %q", cfg.Redis.URL)
	}
}

func TestLoadEnvHeadlessWithoutFileValue(t *testing.T) {
	path := writeConfig(t, "mcp:\n  port: 4000\n")
	t.Setenv("WEBSCOUT_SEARCH_HEADLESS", "false")
	t.Setenv("WEBSCOUT_FETCH_USE_READABILITY", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Headless {
		t.Fatal("env headless override ignored")
	}
	if !cfg.Fetch.UseReadability {
		t.Fatal("env readability override ignored")
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.example.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Search.Headless {
		t.Fatal("example config should run headless")
	}

	t.Setenv("WEBSCOUT_SEARCH_HEADLESS", "false")
	cfg, err = Load(filepath.Join("..", "..", "config", "config.example.yaml"))
	if err != nil {
		t.Fatalf("Load with env override: %v", err)
	}
	if cfg.Search.Headless {
		t.Fatal("env headless override ignored for example config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"transport": "mcp:\n  transport: grpc\n",
		"port":      "mcp:\n  port: 70000\n",
		"format":    "log:\n  format: xml\n",
		"yaml":      "mcp: [unclosed\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("WEBSCOUT_MCP_PORT", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatal("expected env parse error")
	}
}
