package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the interactive app",
	RunE: func(cmd *cobra.Command, args []string) error {
		noSplash, _ := cmd.Flags().GetBool("no-splash")
		return runApp(cmd, !noSplash)
	},
}

func init() {
	runCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")
}

// runApp opens the environment and launches the TUI.
func runApp(cmd *cobra.Command, splash bool) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	e.log.Info("starting app", "api", e.cfg.API.BaseURL)
	return app.Run(e.deps(cmd), splash)
}
