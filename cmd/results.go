package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/gateway"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show your test results from the platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ov, err := gateway.LoadOverview(cmd.Context(), e.client)
		if err != nil {
			return friendly(err)
		}

		out := cmd.OutOrStdout()
		r := ov.Results
		fmt.Fprintf(out, "Tests completed:  %d\n", r.TestsCompleted)
		fmt.Fprintf(out, "Average score:    %.0f%%\n", r.AverageScore)
		fmt.Fprintf(out, "Correct answers:  %d\n", r.CorrectAnswers)
		if ov.Vark != nil {
			fmt.Fprintf(out, "Learning style:   %s\n", ov.Vark.Type.Label())
		}

		if len(r.History) == 0 {
			fmt.Fprintln(out, "\nNo tests taken yet. Run: stylequiz test")
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-14s %-20s %6s %10s\n", "Date", "Subject", "Score", "Questions")
		fmt.Fprintln(out, strings.Repeat("─", 54))
		for _, t := range r.History {
			date := t.CompletedAt
			if at, ok := t.Completed(); ok {
				date = at.Format("Jan 02, 2006")
			}
			fmt.Fprintf(out, "%-14s %-20s %5.0f%% %10d\n", date, t.Subject, t.Score, t.QuestionsAnswered)
		}
		return nil
	},
}

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List students and their results (teachers only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		students, err := e.client.Students(cmd.Context())
		if err != nil {
			return friendly(err)
		}

		out := cmd.OutOrStdout()
		if len(students) == 0 {
			fmt.Fprintln(out, "No students yet.")
			return nil
		}
		fmt.Fprintf(out, "%-28s %-18s %-13s %6s %8s  %s\n", "Email", "Name", "Style", "Tests", "Average", "Last test")
		fmt.Fprintln(out, strings.Repeat("─", 92))
		for _, s := range students {
			style := "-"
			if s.VarkType.Valid() {
				style = s.VarkType.Label()
			}
			last := s.LastTestDate
			if last == "" {
				last = "-"
			}
			fmt.Fprintf(out, "%-28s %-18s %-13s %6d %7.0f%%  %s\n",
				s.Email, s.Name, style, s.TestsCompleted, s.AverageScore, last)
		}
		return nil
	},
}
