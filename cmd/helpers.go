package cmd

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/config"
	"github.com/ziadkadry99/walkthrough/internal/db"
	"github.com/ziadkadry99/walkthrough/internal/log"
)

// loadConfig loads and validates the config, then configures logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `walkthrough init` to create a config file", err)
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log.Configure(log.Config{Level: level, Format: cfg.Log.Format})
}

// openSource builds the data source described by cfg. A remote source gets an
// ETag cache backed by SQLite; the returned closer releases it.
func openSource(cfg *config.Config) (catalog.Source, io.Closer, error) {
	if !cfg.Remote() {
		return catalog.NewDirSource(cfg.Data.Dir), closerFunc(func() error { return nil }), nil
	}

	database, err := db.Open(cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening narrative cache: %w", err)
	}
	src, err := catalog.NewHTTPSource(cfg.Data.URL, cfg.Data.Timeout,
		catalog.WithValidator(db.NewNarrativeCache(database)))
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return src, database, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// loadCatalog opens the configured source and loads the catalog from it.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, catalog.Source, io.Closer, error) {
	src, closer, err := openSource(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := catalog.Load(ctx, src)
	if err != nil {
		closer.Close()
		return nil, nil, nil, err
	}
	return c, src, closer, nil
}

// notFoundLecture returns the lecture shown for unresolvable deep links.
func notFoundLecture(cfg *config.Config) catalog.Lecture {
	return catalog.Lecture{
		NotFound: true,
		Href:     cfg.NotFound.Href,
		Title:    cfg.NotFound.Title,
		MD:       cfg.NotFound.MD,
	}
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
