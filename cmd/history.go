package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show tests recorded on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		f := cmd.Flags()
		opts := store.QueryOpts{}
		opts.Limit, _ = f.GetInt("limit")
		opts.SubjectID, _ = f.GetString("subject")
		if since, _ := f.GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		attempts, err := e.store.Events().History(cmd.Context(), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No tests recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "%-18s %-20s %-10s %9s %9s\n", "Finished", "Subject", "Status", "Correct", "Accuracy")
		fmt.Fprintln(out, strings.Repeat("─", 70))
		for _, a := range attempts {
			name := a.SubjectName
			if name == "" {
				name = a.SubjectID
			}
			status := "completed"
			if a.Action == store.ActionAbandon {
				status = "abandoned"
			}
			fmt.Fprintf(out, "%-18s %-20s %-10s %4d/%-4d %8d%%\n",
				a.FinishedAt.Format("Jan 02 15:04"), name, status, a.Correct, a.Answered, a.Accuracy)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics recorded on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := e.store.Events().Stats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tests started:     %d\n", st.AttemptsStarted)
		fmt.Fprintf(out, "Tests completed:   %d\n", st.AttemptsCompleted)
		fmt.Fprintf(out, "Tests abandoned:   %d\n", st.AttemptsAbandoned)
		fmt.Fprintf(out, "Questions:         %d\n", st.Answered)
		fmt.Fprintf(out, "Accuracy:          %d%%\n", st.Accuracy)
		if st.Answered > 0 {
			fmt.Fprintf(out, "Avg time/answer:   %s\n", (time.Duration(st.AvgElapsedMs) * time.Millisecond).Round(100*time.Millisecond))
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-10s %9s %9s %9s\n", "Difficulty", "Answered", "Correct", "Accuracy")
		fmt.Fprintln(out, strings.Repeat("─", 40))
		for _, d := range []assessment.Difficulty{assessment.DifficultyEasy, assessment.DifficultyMedium, assessment.DifficultyHard} {
			ds := st.ByDifficulty[string(d)]
			fmt.Fprintf(out, "%-10s %9d %9d %8d%%\n", d.Label(), ds.Answered, ds.Correct, assessment.Accuracy(ds.Correct, ds.Answered))
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "API calls:         %d (%d failed)\n", st.APICalls, st.APIFailures)
		fmt.Fprintf(out, "LLM requests:      %d\n", st.LLMRequests)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete local history and cached results",
	Long:  "Delete every test attempt, API log and cached learning style on this device. Your login is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			ok, err := newPrompter(cmd.InOrStdin(), out).confirm("Delete all local history?")
			if err != nil || !ok {
				fmt.Fprintln(out, "Nothing deleted.")
				return nil
			}
		}
		if err := e.store.Events().Reset(cmd.Context()); err != nil {
			return err
		}
		e.log.Info("local data reset")
		fmt.Fprintln(out, "Local history deleted.")
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of tests to show (0 for all)")
	historyCmd.Flags().String("subject", "", "Only show this subject id")
	historyCmd.Flags().Duration("since", 0, "Only show tests finished within this long, e.g. 168h")
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
