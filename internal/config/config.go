package config

import (
	"os"
	"strings"
	"time"

	"nhtk-schedule/internal/scrapers/nhtk"
	"nhtk-schedule/pkg/configutil"
)

const (
	CONFIG_FILE    = "config.json5"
	DEFAULT_OUTPUT = "nhtk_schedule.json"
	// every 3 hours, the site is usually updated once or twice a day
	DEFAULT_CRON = "0 */3 * * *"
)

// environment variables, they take priority over the config file.
const (
	ENV_SUPABASE_URL = "SUPABASE_URL"
	ENV_SUPABASE_KEY = "SUPABASE_KEY"
	ENV_FORCE_UPDATE = "FORCE_UPDATE"
	ENV_IS_SCHEDULED = "IS_SCHEDULED"
	ENV_URL          = "NHTK_URL"
	ENV_ARCHIVE_DSN  = "NHTK_ARCHIVE_DSN"
)

type SupabaseConfig struct {
	Url   string `json:"url"`
	Key   string `json:"key"`
	Table string `json:"table"`
}

type ArchiveConfig struct {
	// Driver is either "sqlite" (default) or "libsql".
	Driver string `json:"driver"`
	Dsn    string `json:"dsn"`
}

type Config struct {
	Url              string         `json:"url"`
	Output           string         `json:"output"`
	BaseUrl          string         `json:"base_url"`
	CourseDomain     string         `json:"course_domain"`
	ScheduleDomain   string         `json:"schedule_domain"`
	TimeoutSeconds   int            `json:"timeout_seconds"`
	CloudflareBypass bool           `json:"cloudflare_bypass"`
	Supabase         SupabaseConfig `json:"supabase"`
	Archive          ArchiveConfig  `json:"archive"`
	Cron             string         `json:"cron"`

	// Force syncs even if the fingerprint did not change.
	Force bool `json:"-"`
	// Scheduled marks a run started by a scheduler rather than by hand, it
	// only changes what gets logged.
	Scheduled bool `json:"-"`
}

// ParseBool accepts true, 1 and yes in any case, everything else is false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// ApplyEnv overrides the config with the environment variables that are set.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if v := getenv(ENV_SUPABASE_URL); v != "" {
		c.Supabase.Url = v
	}
	if v := getenv(ENV_SUPABASE_KEY); v != "" {
		c.Supabase.Key = v
	}
	if v := getenv(ENV_URL); v != "" {
		c.Url = v
	}
	if v := getenv(ENV_ARCHIVE_DSN); v != "" {
		c.Archive.Dsn = v
	}
	c.Force = c.Force || ParseBool(getenv(ENV_FORCE_UPDATE))
	c.Scheduled = c.Scheduled || ParseBool(getenv(ENV_IS_SCHEDULED))
	return c
}

func (c Config) withDefaults() Config {
	if c.Url == "" {
		c.Url = nhtk.DEFAULT_PAGE_URL
	}
	if c.Output == "" {
		c.Output = DEFAULT_OUTPUT
	}
	if c.Cron == "" {
		c.Cron = DEFAULT_CRON
	}
	return c
}

// Read reads the config file at `path` (with its local override) and
// applies the environment, a missing file is not an error.
func Read(path string, getenv func(string) string) (Config, error) {
	c, err := configutil.ReadConfig[Config](path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	return c.ApplyEnv(getenv).withDefaults(), nil
}

// Load searches for config.json5 from the working directory upwards and
// applies the process environment.
func Load() (Config, error) {
	c, err := configutil.ReadRecursively[Config](CONFIG_FILE)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	return c.ApplyEnv(os.Getenv).withDefaults(), nil
}

// SyncEnabled is true only when both the supabase url and key are known.
func (c Config) SyncEnabled() bool {
	return c.Supabase.Url != "" && c.Supabase.Key != ""
}

func (c Config) ArchiveEnabled() bool {
	return c.Archive.Dsn != ""
}

func (c Config) ParserOptions() nhtk.Options {
	return nhtk.Options{
		BaseUrl:        c.BaseUrl,
		CourseDomain:   c.CourseDomain,
		ScheduleDomain: c.ScheduleDomain,
	}
}

func (c Config) ClientOptions() nhtk.ClientOptions {
	return nhtk.ClientOptions{
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		CloudflareBypass: c.CloudflareBypass,
	}
}
