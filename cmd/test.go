package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/store"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the subjects you can be tested on",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		subjects, err := e.client.ListSubjects(cmd.Context())
		if err != nil {
			return friendly(err)
		}
		printSubjects(cmd.OutOrStdout(), subjects)
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test [subject]",
	Short: "Take an adaptive test on the command line",
	Long: "Take an adaptive test. The subject may be given by id or name; " +
		"without one you pick from the list. Type q at any question to abandon the test.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		p := newPrompter(cmd.InOrStdin(), out)

		subjects, err := e.client.ListSubjects(ctx)
		if err != nil {
			return friendly(err)
		}
		var subject assessment.Subject
		if len(args) == 1 {
			s, ok := findSubject(subjects, args[0])
			if !ok {
				return fmt.Errorf("no subject matches %q; run: stylequiz subjects", args[0])
			}
			subject = s
		} else {
			printSubjects(out, subjects)
			if len(subjects) == 0 {
				return nil
			}
			i, err := p.choice("Subject: ", len(subjects))
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				return err
			}
			subject = subjects[i]
		}

		ctrl := assessment.NewController(e.client,
			assessment.WithObserver(store.NewAttemptRecorder(e.store.Events(), e.log)),
		)
		return playTest(ctx, ctrl, subject, p, out)
	},
}

func printSubjects(w io.Writer, subjects []assessment.Subject) {
	if len(subjects) == 0 {
		fmt.Fprintln(w, "No subjects are available yet.")
		return
	}
	fmt.Fprintf(w, "%-4s %-20s %-10s %s\n", "#", "Subject", "Questions", "Description")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for i, s := range subjects {
		fmt.Fprintf(w, "%-4d %-20s %-10d %s\n", i+1, s.Name, s.QuestionCount, s.Description)
	}
}

// findSubject matches by id first, then by case-insensitive name.
func findSubject(subjects []assessment.Subject, key string) (assessment.Subject, bool) {
	for _, s := range subjects {
		if s.ID == key {
			return s, true
		}
	}
	for _, s := range subjects {
		if strings.EqualFold(s.Name, key) {
			return s, true
		}
	}
	return assessment.Subject{}, false
}

// playTest runs one test to completion or until the learner quits. A failed
// submission keeps the question so it can be answered again.
func playTest(ctx context.Context, ctrl *assessment.Controller, subject assessment.Subject, p *prompter, out io.Writer) error {
	if err := ctrl.ChooseSubject(ctx, subject); err != nil {
		return friendly(err)
	}
	fmt.Fprintf(out, "\n%s: answer with the option number, q to quit.\n", subject.Name)

	for {
		q, ok := ctrl.Question()
		if !ok {
			break
		}
		snap := ctrl.Snapshot()
		fmt.Fprintf(out, "\nQuestion %d  [%s]\n%s\n", snap.Answered+1, q.Difficulty.Label(), q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}

		i, err := p.choice("> ", len(q.Options))
		if err != nil {
			ctrl.Restart()
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "Test abandoned.")
				return nil
			}
			return err
		}
		if err := ctrl.SelectOption(i); err != nil {
			return err
		}
		res, err := ctrl.SubmitAnswer(ctx)
		if err != nil {
			fmt.Fprintln(out, assessment.UserMessage(err))
			continue
		}
		if res.Correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintln(out, "Not quite.")
		}
		if res.Completed {
			break
		}
	}

	snap := ctrl.Snapshot()
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintf(out, "Subject:    %s\n", snap.Subject.Name)
	fmt.Fprintf(out, "Questions:  %d\n", snap.Answered)
	fmt.Fprintf(out, "Correct:    %d\n", snap.Correct)
	fmt.Fprintf(out, "Accuracy:   %d%%\n", snap.Accuracy)
	return nil
}
