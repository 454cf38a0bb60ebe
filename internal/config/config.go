package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/folio/internal/item"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// TokenEnv holds the optional GitHub API token.
const TokenEnv = "FOLIO_GITHUB_TOKEN"

type GitHub struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token,omitempty"`
}

type Projects struct {
	DefaultCategory string            `yaml:"default_category" validate:"required"`
	TTL             string            `yaml:"ttl"`
	Items           []item.ItemConfig `yaml:"items" validate:"dive"`
}

type Feed struct {
	URL      string `yaml:"url" validate:"required,url"`
	Category string `yaml:"category,omitempty"`
}

type Blog struct {
	DefaultCategory string            `yaml:"default_category" validate:"required"`
	TTL             string            `yaml:"ttl"`
	Posts           []item.ItemConfig `yaml:"posts" validate:"dive"`
	Feeds           []Feed            `yaml:"feeds" validate:"dive"`
}

type Proxy struct {
	Name  string `yaml:"name" validate:"required"`
	URL   string `yaml:"url" validate:"required"`
	Field string `yaml:"field,omitempty"`
}

type Fetch struct {
	ProxyTimeout string  `yaml:"proxy_timeout"`
	ItemTimeout  string  `yaml:"item_timeout"`
	BatchTimeout string  `yaml:"batch_timeout"`
	MinPayload   int     `yaml:"min_payload" validate:"gte=0"`
	Concurrency  int     `yaml:"concurrency" validate:"gte=0"`
	PreviewURL   string  `yaml:"preview_url"`
	Proxies      []Proxy `yaml:"proxies" validate:"dive"`
}

type Cache struct {
	Backend      string `yaml:"backend" validate:"oneof=sqlite memory"`
	Path         string `yaml:"path"`
	Namespace    string `yaml:"namespace" validate:"required"`
	MemorySizeMB int    `yaml:"memory_size_mb" validate:"gte=0"`
}

type Seed struct {
	Projects []item.DisplayItem `yaml:"projects"`
	Blog     []item.DisplayItem `yaml:"blog"`
}

type Config struct {
	RefreshInterval string   `yaml:"refresh_interval"`
	GitHub          GitHub   `yaml:"github"`
	Projects        Projects `yaml:"projects"`
	Blog            Blog     `yaml:"blog"`
	Fetch           Fetch    `yaml:"fetch"`
	Cache           Cache    `yaml:"cache"`
	Seed            Seed     `yaml:"seed"`
}

// GitHubToken returns the configured token, falling back to the environment.
func (c *Config) GitHubToken() string {
	if c.GitHub.Token != "" {
		return c.GitHub.Token
	}
	return os.Getenv(TokenEnv)
}

func (c *Config) RefreshDuration() time.Duration {
	return ParseDuration(c.RefreshInterval, 15*time.Minute)
}

func (c *Config) ProjectsTTL() time.Duration {
	return ParseDuration(c.Projects.TTL, 30*time.Minute)
}

func (c *Config) BlogTTL() time.Duration {
	return ParseDuration(c.Blog.TTL, 10*time.Minute)
}

func (c *Config) ProxyTimeout() time.Duration {
	return ParseDuration(c.Fetch.ProxyTimeout, 5*time.Second)
}

func (c *Config) ItemTimeout() time.Duration {
	return ParseDuration(c.Fetch.ItemTimeout, 8*time.Second)
}

func (c *Config) BatchTimeout() time.Duration {
	return ParseDuration(c.Fetch.BatchTimeout, 20*time.Second)
}

// CacheFile returns the SQLite cache location.
func (c *Config) CacheFile() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return CachePath()
}

// ParseDuration parses Go durations plus a whole-day "Nd" form. Empty or
// invalid input yields fallback.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	d, err := parseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "folio", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "folio", "folio.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "folio", "folio.log")
}

// LoadEnv reads .env files from the working directory and next to the
// config file. Variables already set in the environment win.
func LoadEnv(configPath string) error {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	for _, p := range []string{".env", filepath.Join(filepath.Dir(configPath), ".env")} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path on top of the embedded defaults. A missing
// file is created from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

var structValidator = validator.New()

func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return err
	}

	for name, s := range map[string]string{
		"refresh_interval":    cfg.RefreshInterval,
		"projects.ttl":        cfg.Projects.TTL,
		"blog.ttl":            cfg.Blog.TTL,
		"fetch.proxy_timeout": cfg.Fetch.ProxyTimeout,
		"fetch.item_timeout":  cfg.Fetch.ItemTimeout,
		"fetch.batch_timeout": cfg.Fetch.BatchTimeout,
	} {
		if _, err := parseDuration(s); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if !(cfg.ProxyTimeout() < cfg.ItemTimeout() && cfg.ItemTimeout() < cfg.BatchTimeout()) {
		return fmt.Errorf("fetch timeouts must satisfy proxy_timeout < item_timeout < batch_timeout, got %s, %s, %s",
			cfg.ProxyTimeout(), cfg.ItemTimeout(), cfg.BatchTimeout())
	}

	names := make(map[string]bool, len(cfg.Fetch.Proxies))
	for _, p := range cfg.Fetch.Proxies {
		if names[p.Name] {
			return fmt.Errorf("proxy %q: duplicate name", p.Name)
		}
		names[p.Name] = true
		if !strings.Contains(p.URL, "{url}") && !strings.Contains(p.URL, "{raw}") {
			return fmt.Errorf("proxy %q: url must contain {url} or {raw}", p.Name)
		}
		if err := httpURL(strings.NewReplacer("{url}", "x", "{raw}", "x").Replace(p.URL)); err != nil {
			return fmt.Errorf("proxy %q: %w", p.Name, err)
		}
	}

	for _, f := range cfg.Blog.Feeds {
		if err := httpURL(f.URL); err != nil {
			return fmt.Errorf("feed %q: %w", f.URL, err)
		}
	}
	return nil
}

func httpURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
