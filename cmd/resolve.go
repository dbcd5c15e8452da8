package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/walkthrough/internal/nav"
	"github.com/ziadkadry99/walkthrough/internal/persist"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Show how an initial page load would be resolved",
	Long: `Runs the initial navigation for a query string such as "2.3.some-title"
against the configured catalog and prints the chosen lecture, the
history entry and the stored selection. Use --stored to simulate a
returning visitor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("stored", "", `stored selection, e.g. '{"chapter":1,"lecture":2}'`)
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, _, closer, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	query, url := "", cfg.BasePath
	if len(args) == 1 {
		query = args[0]
		url += "?" + query
	}

	store := persist.NewMemoryStore()
	if stored, _ := cmd.Flags().GetString("stored"); stored != "" {
		if err := store.Set(cfg.Cookie.Name, stored); err != nil {
			return err
		}
	}
	history := nav.NewMemoryHistory()
	sess := nav.NewSession(&nav.Resolver{Catalog: c, NotFound: notFoundLecture(cfg)}, store, history,
		nav.WithBase(cfg.BasePath), nav.WithCookieName(cfg.Cookie.Name))

	out, err := sess.Handle(cmd.Context(), nav.DeepLinkRequest{Query: query, URL: url})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()
	if out.Lecture.IsError() {
		fmt.Fprintf(tw, "lecture:\tnot found (%v)\n", out.Err)
	} else {
		fmt.Fprintf(tw, "lecture:\t%s %s\n", out.Lecture.Coordinate(), out.Lecture.Title)
	}
	fmt.Fprintf(tw, "narrative:\t%s\n", out.Lecture.MD)
	fmt.Fprintf(tw, "history:\t%s %s\n", out.Effects.History, out.URL)
	if v, ok := store.Get(cfg.Cookie.Name); ok {
		fmt.Fprintf(tw, "stored:\t%s\n", v)
	}
	fmt.Fprintf(tw, "persisted:\t%t\n", out.Effects.Persist != nil)
	return nil
}
