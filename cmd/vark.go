package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/coach"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/screens/questionnaire"
	"github.com/abhisek/stylequiz/internal/screens/varkresult"
	"github.com/abhisek/stylequiz/internal/store"
	"github.com/abhisek/stylequiz/internal/vark"
)

var varkCmd = &cobra.Command{
	Use:   "vark",
	Short: "Take the learning style questionnaire",
	Long: "Answer the VARK questionnaire on the command line. The result is sent to " +
		"the platform when you are logged in and always kept on this device.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		p := newPrompter(cmd.InOrStdin(), out)
		res, note, err := takeQuestionnaire(cmd, e.client, e.store.Vark(), e.log, p)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "Questionnaire cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		printProfile(out, res)
		if note != "" {
			fmt.Fprintln(out, note)
		}
		return nil
	},
}

var varkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your saved learning style",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		res, note, err := varkresult.Lookup(cmd.Context(), e.client, e.store.Vark())
		if gateway.IsNotFound(err) {
			fmt.Fprintln(out, "You have not taken the questionnaire yet. Run: stylequiz vark")
			return nil
		}
		if err != nil {
			return friendly(err)
		}
		printProfile(out, *res)
		if note != "" {
			fmt.Fprintln(out, note)
		}
		return nil
	},
}

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Get study tips for your learning style",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		res, _, err := varkresult.Lookup(ctx, e.client, e.store.Vark())
		if err != nil {
			if gateway.IsNotFound(err) {
				fmt.Fprintln(out, "Take the questionnaire first. Run: stylequiz vark")
				return nil
			}
			return friendly(err)
		}

		deps := e.deps(cmd)
		tips, err := deps.Coach.Tips(ctx, coach.TipsInput{
			Distribution: res.Distribution,
			Style:        res.Type,
			Recent:       deps.RecentScores(ctx, 20),
		})
		if err != nil {
			return err
		}
		printTips(out, tips)
		return nil
	},
}

func init() {
	varkCmd.AddCommand(varkShowCmd)
}

// takeQuestionnaire asks every question in turn. Typing b goes back one
// question and q abandons.
func takeQuestionnaire(cmd *cobra.Command, src questionnaire.Source, cache store.VarkRepo, log *logging.Logger, p *prompter) (vark.Result, string, error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	qs, fallback := questionnaire.LoadQuestions(ctx, src, log)
	if fallback {
		fmt.Fprintln(out, "The platform questionnaire is unavailable; using the built-in one.")
	}
	q, err := vark.NewQuestionnaire(qs)
	if err != nil {
		return vark.Result{}, "", err
	}

	for !q.Finished() {
		cur := q.Current()
		fmt.Fprintf(out, "\n[%d/%d] %s\n", q.Index()+1, q.Len(), cur.Text)
		for i, opt := range cur.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt.Text)
		}
		reply, err := p.line("> ")
		if err != nil {
			return vark.Result{}, "", err
		}
		switch strings.ToLower(reply) {
		case "q":
			return vark.Result{}, "", errQuit
		case "b":
			if !q.Back() {
				fmt.Fprintln(out, "This is the first question.")
			}
			continue
		}
		n, err := strconv.Atoi(reply)
		if err != nil || q.SelectIndex(n-1) != nil {
			fmt.Fprintf(out, "Enter a number from 1 to %d, b to go back or q to quit.\n", len(cur.Options))
			continue
		}
		if _, err := q.Next(); err != nil {
			return vark.Result{}, "", err
		}
	}

	res, err := q.Result()
	if err != nil {
		return vark.Result{}, "", err
	}
	res, note := questionnaire.Submit(ctx, src, cache, log, res)
	return res, note, nil
}

func printProfile(w io.Writer, res vark.Result) {
	fmt.Fprintf(w, "\nYour learning style: %s\n", res.Type.Label())
	fmt.Fprintln(w, strings.Repeat("─", 44))
	for _, st := range vark.Styles {
		pct := res.Distribution.Get(st)
		fmt.Fprintf(w, "%-13s %-20s %3d%%\n", st.Label(), strings.Repeat("█", pct/5), pct)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, vark.Description(res.Type))
}

func printTips(w io.Writer, t coach.Tips) {
	fmt.Fprintf(w, "Study tips for %s learners\n", t.Style.Label())
	fmt.Fprintln(w, strings.Repeat("─", 44))
	if t.Source == coach.SourceLLM && t.Headline != "" {
		fmt.Fprintln(w, t.Headline)
		fmt.Fprintln(w)
	}
	for _, item := range t.Items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}
