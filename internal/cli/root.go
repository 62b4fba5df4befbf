// Package cli implements matchctl, the operator command line for the vehicle match engine.
package cli

import (
	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/config"
	"vehicle-match-engine/internal/utils"
)

const appName = "matchctl"

// NewRootCommand builds the matchctl command tree.
func NewRootCommand() *cobra.Command {
	var debug, jsonLogs bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "matchctl scores vehicle catalogs against shopper profiles and manages their stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level := "info"
			if debug {
				level = "debug"
			}
			logger, err := utils.NewLogger(level, jsonLogs)
			if err != nil {
				return err
			}
			utils.Logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			utils.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolVarP(&jsonLogs, "json", "j", false, "json format for logging")

	root.AddCommand(
		newRankCmd(),
		newExplainCmd(),
		newReviewsCmd(),
		newCatalogCmd(),
		newProfileCmd(),
		newInitDBCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig reads the environment and applies a --catalog override.
func loadConfig(catalogDir string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if catalogDir != "" {
		cfg.CatalogDir = catalogDir
	}
	return cfg, nil
}
