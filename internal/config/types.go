package config

import "time"

// Config is the top-level walkthrough configuration, corresponding to .walkthrough.yml.
type Config struct {
	Port     int            `yaml:"port" koanf:"port"`
	BasePath string         `yaml:"base_path" koanf:"base_path"`
	Data     DataConfig     `yaml:"data" koanf:"data"`
	Cache    CacheConfig    `yaml:"cache" koanf:"cache"`
	Cookie   CookieConfig   `yaml:"cookie" koanf:"cookie"`
	NotFound NotFoundConfig `yaml:"not_found" koanf:"not_found"`
	Render   RenderConfig   `yaml:"render" koanf:"render"`
	Watch    WatchConfig    `yaml:"watch" koanf:"watch"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// DataConfig locates chapters.json and the narrative files. URL wins over Dir.
type DataConfig struct {
	Dir     string        `yaml:"dir" koanf:"dir"`
	URL     string        `yaml:"url,omitempty" koanf:"url"`
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// CacheConfig holds the narrative cache settings used with a remote data URL.
type CacheConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// CookieConfig controls the persisted selection.
type CookieConfig struct {
	Name       string `yaml:"name" koanf:"name"`
	MaxAgeDays int    `yaml:"max_age_days" koanf:"max_age_days"`
}

// NotFoundConfig is the lecture shown for unresolvable deep links.
type NotFoundConfig struct {
	Href  string `yaml:"href" koanf:"href"`
	Title string `yaml:"title" koanf:"title"`
	MD    string `yaml:"md" koanf:"md"`
}

// RenderConfig controls the content pane.
type RenderConfig struct {
	Style     string `yaml:"style" koanf:"style"`
	EmbedBase string `yaml:"embed_base" koanf:"embed_base"`
	NoVideo   bool   `yaml:"no_video" koanf:"no_video"`
	RepoURL   string `yaml:"repo_url,omitempty" koanf:"repo_url"`
}

// WatchConfig controls live reload of a local data directory.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" koanf:"enabled"`
	Patterns []string      `yaml:"patterns" koanf:"patterns"`
	Debounce time.Duration `yaml:"debounce" koanf:"debounce"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RateLimit       int           `yaml:"rate_limit" koanf:"rate_limit"`
	RateWindow      time.Duration `yaml:"rate_window" koanf:"rate_window"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// CookieMaxAge returns the persisted selection lifetime.
func (c *Config) CookieMaxAge() time.Duration {
	return time.Duration(c.Cookie.MaxAgeDays) * 24 * time.Hour
}

// Remote reports whether data is fetched from a URL.
func (c *Config) Remote() bool { return c.Data.URL != "" }
