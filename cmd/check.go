package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/progress"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate chapters.json and the narrative files",
	Long: `Loads the catalog, reports structural problems such as IDs that do not
match their position (deep links are positional), then fetches every
narrative file. Exits non-zero if any error is found.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("skip-narratives", false, "only check chapters.json")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	c, src, closer, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	issues := catalog.Check(c)
	if skip, _ := cmd.Flags().GetBool("skip-narratives"); !skip {
		issues = append(issues, catalog.CheckNarratives(ctx, c, src, progress.NewReporter("Fetching notes"))...)
	}

	for _, i := range issues {
		fmt.Fprintln(cmd.ErrOrStderr(), i)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d chapters, %d lectures, %d issues\n", c.Len(), len(c.Lectures()), len(issues))
	if catalog.HasErrors(issues) {
		return fmt.Errorf("catalog has errors")
	}
	return nil
}
