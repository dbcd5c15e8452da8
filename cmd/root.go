package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "walkthrough",
	Short: "Serve a chaptered video course with shareable deep links",
	Long: `Walkthrough serves a single-page viewer for a course of video lectures
grouped into chapters. Each lecture has a narrative markdown file and a
deep link of the form ?chapter.lecture.title-slug; the last lecture a
visitor watched is remembered between visits.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".walkthrough.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
