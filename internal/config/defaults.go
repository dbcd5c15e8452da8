package config

import "time"

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".walkthrough.yml"

// DefaultWatchPatterns match the catalog and the narrative files.
var DefaultWatchPatterns = []string{"chapters.json", "**/*.md"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:     8080,
		BasePath: "/",
		Data: DataConfig{
			Dir:     "data",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Path: ".walkthrough/cache.db",
		},
		Cookie: CookieConfig{
			Name:       "latest",
			MaxAgeDays: 365,
		},
		NotFound: NotFoundConfig{
			Href:  "https://youtu.be/KuLFXr7OPpc",
			Title: "Lecture not found",
			MD:    "404.md",
		},
		Render: RenderConfig{
			Style:     "github",
			EmbedBase: "https://www.youtube.com/embed/",
		},
		Watch: WatchConfig{
			Patterns: append([]string(nil), DefaultWatchPatterns...),
			Debounce: 300 * time.Millisecond,
		},
		Server: ServerConfig{
			RateLimit:  120,
			RateWindow: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
