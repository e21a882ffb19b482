package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update [version]",
	Short: "Update stylequiz to the latest or a given version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		checker := selfupdate.NewChecker(selfupdate.WithTimeout(2 * time.Minute))

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		if check, _ := cmd.Flags().GetBool("check"); check {
			rel, newer, err := checker.Newer(ctx, version)
			switch {
			case errors.Is(err, selfupdate.ErrDevBuild):
				fmt.Fprintln(out, "Development build; update checks are disabled.")
				return nil
			case err != nil:
				return err
			case newer:
				fmt.Fprintf(out, "Version %s is available (running %s). Run: stylequiz update\n", rel.Version, version)
			default:
				fmt.Fprintln(out, "Already running the latest version.")
			}
			return nil
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		err := checker.Update(ctx, version, target, func(stage, msg string) {
			fmt.Fprintln(out, msg)
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, selfupdate.ErrDevBuild) {
			fmt.Fprintln(out, "Cannot update a development build. Install a release build first.")
			return nil
		}
		if errors.Is(err, selfupdate.ErrAlreadyLatest) {
			fmt.Fprintln(out, "Already running the latest version.")
			return nil
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w\n\nTry running: sudo stylequiz update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether a newer version exists")
}
