package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/config"
	"github.com/ziadkadry99/walkthrough/internal/log"
	"github.com/ziadkadry99/walkthrough/internal/present"
	"github.com/ziadkadry99/walkthrough/internal/viewer"
	"github.com/ziadkadry99/walkthrough/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lecture viewer",
	Long: `Starts the lecture viewer on the configured port. With a local data
directory and --watch, edits to chapters.json or the narrative files
reload open pages.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().String("data", "", "local data directory (overrides config)")
	serveCmd.Flags().String("data-url", "", "remote data base URL (overrides config)")
	serveCmd.Flags().String("base-path", "", "path the viewer is mounted at (overrides config)")
	serveCmd.Flags().Bool("watch", false, "reload open pages when local data changes")
	serveCmd.Flags().Bool("open", false, "open the viewer in a browser")
	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags overlays explicitly set flags on cfg.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("data") {
		cfg.Data.Dir, _ = flags.GetString("data")
		cfg.Data.URL = ""
	}
	if flags.Changed("data-url") {
		cfg.Data.URL, _ = flags.GetString("data-url")
	}
	if flags.Changed("base-path") {
		cfg.BasePath, _ = flags.GetString("base-path")
	}
	if flags.Changed("watch") {
		cfg.Watch.Enabled, _ = flags.GetBool("watch")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := log.WithComponent("serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, src, closer, err := loadCatalog(ctx, cfg)
	if errors.Is(err, catalog.ErrCatalogFetch) {
		return fmt.Errorf("%w\nCheck data.dir or data.url in %s", err, cfgFile)
	}
	if err != nil {
		return err
	}
	defer closer.Close()

	presenter := present.New(src, present.Config{
		Style:     cfg.Render.Style,
		EmbedBase: cfg.Render.EmbedBase,
		NoVideo:   cfg.Render.NoVideo,
		RepoURL:   cfg.Render.RepoURL,
	})
	srv, err := viewer.New(viewer.Config{
		Port:         cfg.Port,
		BasePath:     cfg.BasePath,
		CookieName:   cfg.Cookie.Name,
		CookieMaxAge: cfg.CookieMaxAge(),
		AllowAll:     cfg.Server.AllowAllOrigins,
		RateLimit:    cfg.Server.RateLimit,
		RateWindow:   cfg.Server.RateWindow,
		LiveReload:   cfg.Watch.Enabled,
	}, catalog.NewHolder(c), src, presenter, notFoundLecture(cfg))
	if err != nil {
		return fmt.Errorf("creating viewer: %w", err)
	}

	source := cfg.Data.Dir
	if cfg.Remote() {
		source = cfg.Data.URL
	}
	fmt.Fprintf(os.Stderr, "walkthrough %s serving %d chapters\n", Version, c.Len())
	fmt.Fprintf(os.Stderr, "  Data: %s\n", source)
	fmt.Fprintf(os.Stderr, "  URL:  http://localhost:%d%s\n", cfg.Port, cfg.BasePath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if cfg.Watch.Enabled {
		w := watch.New(cfg.Data.Dir, cfg.Watch.Patterns, cfg.Watch.Debounce, srv.Reload)
		g.Go(func() error { return w.Run(gctx) })
		logger.Info().Str(log.FieldPath, cfg.Data.Dir).Msg("watching data directory")
	}

	if open, _ := cmd.Flags().GetBool("open"); open {
		openBrowser(fmt.Sprintf("http://localhost:%d%s", cfg.Port, cfg.BasePath))
	}

	return g.Wait()
}
