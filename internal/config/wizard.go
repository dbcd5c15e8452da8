package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// detectDataDir checks the current directory for a catalog.
func detectDataDir() string {
	for _, dir := range []string{"data", "."} {
		if _, err := os.Stat(dir + "/chapters.json"); err == nil {
			return dir
		}
	}
	return "data"
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to walkthrough! Let's configure your course viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Data source.
	sourcePrompt := promptui.Select{
		Label: "Where are chapters.json and the lecture notes?",
		Items: []string{
			"local directory",
			"remote URL",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data source selection: %w", err)
	}

	if sourceIdx == 0 {
		dirPrompt := promptui.Prompt{
			Label:   "Data directory",
			Default: detectDataDir(),
		}
		if cfg.Data.Dir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}

		watchPrompt := promptui.Select{
			Label: "Reload the browser when notes change?",
			Items: []string{"yes", "no"},
		}
		watchIdx, _, err := watchPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("watch selection: %w", err)
		}
		cfg.Watch.Enabled = watchIdx == 0
	} else {
		urlPrompt := promptui.Prompt{
			Label: "Data base URL",
			Validate: func(s string) error {
				if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
					return fmt.Errorf("must be an http(s) URL")
				}
				return nil
			},
		}
		if cfg.Data.URL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("data url: %w", err)
		}
	}

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p < 1 || p > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 3. Optional repository link for the page footer.
	repoPrompt := promptui.Prompt{
		Label:   "Repository URL for the \"star it on GitHub\" footer (blank for none)",
		Default: "",
	}
	if cfg.Render.RepoURL, err = repoPrompt.Run(); err != nil {
		return nil, fmt.Errorf("repo url: %w", err)
	}
	cfg.Render.RepoURL = strings.TrimSpace(cfg.Render.RepoURL)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
