package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/deeplink"
)

var linkCmd = &cobra.Command{
	Use:   "link <chapter> <lecture>",
	Short: "Print the deep link for a lecture",
	Args:  cobra.ExactArgs(2),
	RunE:  runLink,
}

func init() {
	linkCmd.Flags().String("origin", "", "scheme and host to prefix (default http://localhost:<port>)")
	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	chapter, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid chapter %q", args[0])
	}
	lecture, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid lecture %q", args[1])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, _, closer, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	coord := catalog.Coordinate{Chapter: chapter, Lecture: lecture}
	lec, ok := c.Lookup(coord)
	if !ok {
		return fmt.Errorf("no lecture at %s", coord)
	}

	origin, _ := cmd.Flags().GetString("origin")
	if origin == "" {
		origin = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	fmt.Fprintln(cmd.OutOrStdout(), deeplink.Build(origin+cfg.BasePath, chapter, lecture, lec.Title))
	return nil
}
