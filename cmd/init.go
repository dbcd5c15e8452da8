package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/walkthrough/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize walkthrough configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the viewer and generates a .walkthrough.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			if err := config.DefaultConfig().Save(cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote default configuration to %s\n", cfgFile)
			return nil
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	initCmd.Flags().BoolP("yes", "y", false, "write the defaults without prompting")
	rootCmd.AddCommand(initCmd)
}
