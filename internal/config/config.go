package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/evanmh/activitybot/internal/domain"
)

// DefaultExtensions is the candidate-file allow-list used when the config
// does not override it.
var DefaultExtensions = []string{"go", "rs", "txt", "md", "toml", "json", "yaml", "yml"}

// Config holds all application configuration. It is loaded once at startup
// and shared read-only across runs.
type Config struct {
	Username     string   `toml:"username"`
	Repo         string   `toml:"repo"` // owner/name
	RepoPath     string   `toml:"repo_path"`
	CronSchedule string   `toml:"cron_schedule"`
	MinFiles     int      `toml:"min_files"`
	MaxFiles     int      `toml:"max_files"`
	MinLines     int      `toml:"min_lines"`
	MaxLines     int      `toml:"max_lines"`
	Debug        bool     `toml:"debug"`
	Ignore       []string `toml:"ignore"`
	Extensions   []string `toml:"extensions"`
	SlackWebhook string   `toml:"slack_webhook"`
	ListenAddr   string   `toml:"listen_addr"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		CronSchedule: "0 */8 * * *",
		MinFiles:     1,
		MaxFiles:     3,
		MinLines:     1,
		MaxLines:     5,
	}
}

// Load reads configuration from a TOML file and validates it
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.RepoPath = ExpandPath(cfg.RepoPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration invariants. Any violation is fatal at
// startup; validation never runs mid-run.
func (c *Config) Validate() error {
	owner, name, ok := splitRepo(c.Repo)
	if !ok || owner == "" || name == "" {
		return &domain.ConfigError{Field: "repo", Reason: "must be in the format 'owner/repo'"}
	}
	if c.RepoPath == "" {
		return &domain.ConfigError{Field: "repo_path", Reason: "is required"}
	}
	if c.CronSchedule == "" {
		return &domain.ConfigError{Field: "cron_schedule", Reason: "is required"}
	}
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		return &domain.ConfigError{Field: "cron_schedule", Reason: err.Error()}
	}
	if c.MinFiles < 0 || c.MinLines < 0 {
		return &domain.ConfigError{Field: "min_files/min_lines", Reason: "must not be negative"}
	}
	if c.MinFiles > c.MaxFiles {
		return &domain.ConfigError{Field: "max_files", Reason: fmt.Sprintf("must be >= min_files (%d)", c.MinFiles)}
	}
	if c.MinLines > c.MaxLines {
		return &domain.ConfigError{Field: "max_lines", Reason: fmt.Sprintf("must be >= min_lines (%d)", c.MinLines)}
	}
	for _, pattern := range c.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			return &domain.ConfigError{Field: "ignore", Reason: fmt.Sprintf("bad pattern %q: %v", pattern, err)}
		}
	}
	return nil
}

// RepoParts returns the owner and name halves of the repo setting.
// Only valid after Validate.
func (c *Config) RepoParts() (owner, name string) {
	owner, name, _ = splitRepo(c.Repo)
	return owner, name
}

// ExtensionList returns the configured extension allow-list, lower-cased,
// falling back to DefaultExtensions.
func (c *Config) ExtensionList() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	exts := make([]string, len(c.Extensions))
	for i, e := range c.Extensions {
		exts[i] = strings.ToLower(strings.TrimPrefix(e, "."))
	}
	return exts
}

func splitRepo(repo string) (owner, name string, ok bool) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Token reads the hosting-API credential from the environment.
// Its absence is startup-fatal.
func Token() (string, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return "", &domain.ConfigError{Field: "GITHUB_TOKEN", Reason: "environment variable not set"}
	}
	return token, nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
