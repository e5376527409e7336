package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evanmh/activitybot/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
username = "bot"
repo = "bot/playground"
repo_path = "/tmp/playground"
cron_schedule = "0 */6 * * *"
min_files = 2
max_files = 5
min_lines = 1
max_lines = 4
debug = true
ignore = ["docs/**"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Repo != "bot/playground" {
		t.Errorf("Repo = %q, want bot/playground", cfg.Repo)
	}
	if cfg.MinFiles != 2 || cfg.MaxFiles != 5 {
		t.Errorf("file range = [%d,%d], want [2,5]", cfg.MinFiles, cfg.MaxFiles)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}

	owner, name := cfg.RepoParts()
	if owner != "bot" || name != "playground" {
		t.Errorf("RepoParts() = %q/%q, want bot/playground", owner, name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load should fail for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Repo = "owner/name"
		cfg.RepoPath = "/tmp/repo"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid", func(c *Config) {}, true},
		{"equal ranges", func(c *Config) { c.MinFiles, c.MaxFiles = 3, 3 }, true},
		{"repo missing separator", func(c *Config) { c.Repo = "ownername" }, false},
		{"repo empty owner", func(c *Config) { c.Repo = "/name" }, false},
		{"repo too many parts", func(c *Config) { c.Repo = "a/b/c" }, false},
		{"missing repo_path", func(c *Config) { c.RepoPath = "" }, false},
		{"bad cron", func(c *Config) { c.CronSchedule = "not a schedule" }, false},
		{"min_files > max_files", func(c *Config) { c.MinFiles, c.MaxFiles = 5, 2 }, false},
		{"min_lines > max_lines", func(c *Config) { c.MinLines, c.MaxLines = 9, 2 }, false},
		{"negative min_files", func(c *Config) { c.MinFiles = -1 }, false},
		{"bad ignore glob", func(c *Config) { c.Ignore = []string{"[unclosed"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK {
				var cfgErr *domain.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Validate() = %v, want ConfigError", err)
				}
			}
		})
	}
}

func TestToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	if _, err := Token(); err == nil {
		t.Error("Token should fail when GITHUB_TOKEN is unset")
	}

	t.Setenv("GITHUB_TOKEN", "ghp_test")
	token, err := Token()
	if err != nil {
		t.Fatal(err)
	}
	if token != "ghp_test" {
		t.Errorf("Token() = %q, want ghp_test", token)
	}
}

func TestExtensionList(t *testing.T) {
	cfg := Default()
	if got := cfg.ExtensionList(); len(got) != len(DefaultExtensions) {
		t.Errorf("ExtensionList() = %v, want defaults", got)
	}

	cfg.Extensions = []string{".Go", "PY"}
	got := cfg.ExtensionList()
	if got[0] != "go" || got[1] != "py" {
		t.Errorf("ExtensionList() = %v, want normalized [go py]", got)
	}
}
