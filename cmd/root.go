package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/config"
)

// settings is the effective configuration source shared by every command.
var settings = config.New()

var rootCmd = &cobra.Command{
	Use:   "stylequiz",
	Short: "Adaptive tests and learning styles in the terminal",
	Long: "Stylequiz takes adaptive tests against a learning platform, works out your " +
		"VARK learning style and suggests how to study with it.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, true)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/stylequiz/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides STYLEQUIZ_DB env var)")
	pf.String("api-url", "", "Learning platform base URL")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-file", "", "Log file, or - for stderr (default: stylequiz.log in the data dir)")

	for key, flag := range map[string]string{
		"db":           "db",
		"api.base_url": "api-url",
		"log.level":    "log-level",
		"log.file":     "log-file",
	} {
		_ = settings.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(subjectsCmd, testCmd)
	rootCmd.AddCommand(varkCmd, tipsCmd)
	rootCmd.AddCommand(resultsCmd, studentsCmd, questionCmd)
	rootCmd.AddCommand(historyCmd, statsCmd, resetCmd)
	rootCmd.AddCommand(configCmd, devserverCmd)
	rootCmd.AddCommand(updateCmd, versionCmd)
}
