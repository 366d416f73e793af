package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("IDEAVAULT_TOKEN", "secret-token")

	path := writeConfig(t, `
version: "1"
modules:
  channel.telegram:
    token: ${IDEAVAULT_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("version = %q, want %q", cfg.Version, "1")
	}

	node, ok := cfg.Modules["channel.telegram"]
	if !ok {
		t.Fatal("channel.telegram module missing")
	}
	var mod struct {
		Token string `yaml:"token"`
	}
	if err := node.Decode(&mod); err != nil {
		t.Fatalf("decoding module config: %v", err)
	}
	if mod.Token != "secret-token" {
		t.Errorf("token = %q, want %q", mod.Token, "secret-token")
	}
}

func TestLoadEnvDefault(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  gateway.http:
    listen: ${IDEAVAULT_LISTEN:-:8080}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var mod struct {
		Listen string `yaml:"listen"`
	}
	node := cfg.Modules["gateway.http"]
	if err := node.Decode(&mod); err != nil {
		t.Fatalf("decoding module config: %v", err)
	}
	if mod.Listen != ":8080" {
		t.Errorf("listen = %q, want %q", mod.Listen, ":8080")
	}
}

func TestLoadUnresolvedEnv(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  channel.telegram:
    token: ${IDEAVAULT_MISSING_VALUE}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "IDEAVAULT_MISSING_VALUE") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

func TestLoadRejectsUnknownSection(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modlues:
  channel.telegram: {}
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for misspelled section")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateVersion(t *testing.T) {
	cfg := &Config{Version: "2"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if !strings.Contains(err.Error(), "unsupported version") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateNoModules(t *testing.T) {
	cfg := &Config{Version: "1"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one module") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateUnknownModule(t *testing.T) {
	cfg := &Config{Version: "1", Modules: map[string]yaml.Node{"storage.flatfile": {}}}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), `unknown module "storage.flatfile"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateBadCron(t *testing.T) {
	cfg := &Config{Version: "1"}
	cfg.Jobs.CostReset = "not a cron expr"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "jobs.cost_reset") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveSorted(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  storage.notion: {}
  channel.telegram: {}
  gateway.http: {}
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := c.Resolve()
	want := []string{"channel.telegram", "gateway.http", "storage.notion"}
	if len(got) != len(want) {
		t.Fatalf("Resolve returned %d IDs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
