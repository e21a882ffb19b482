package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/assessment"
)

var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Manage the question bank (teachers only)",
}

var questionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a question to a subject",
	Example: `  stylequiz question add --subject 1 --text "7 x 8 = ?" \
    --option 54 --option 56 --option 58 --option 64 --correct 2 --difficulty easy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		subject, _ := f.GetString("subject")
		text, _ := f.GetString("text")
		options, _ := f.GetStringArray("option")
		correct, _ := f.GetInt("correct")
		difficulty, _ := f.GetString("difficulty")

		draft := assessment.Draft{
			SubjectID:    subject,
			Text:         text,
			Options:      options,
			CorrectIndex: correct - 1,
			Difficulty:   assessment.Difficulty(strings.ToLower(difficulty)),
		}
		if err := assessment.ValidateDraft(draft); err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := e.client.CreateQuestion(cmd.Context(), draft)
		if err != nil {
			return friendly(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added question %s (%s) to subject %s.\n", q.ID, q.Difficulty.Label(), subject)
		return nil
	},
}

func init() {
	f := questionAddCmd.Flags()
	f.String("subject", "", "Subject id")
	f.String("text", "", "Question text")
	f.StringArray("option", nil, "An answer option; give exactly four")
	f.Int("correct", 0, "Number of the correct option, 1-4")
	f.String("difficulty", string(assessment.DifficultyMedium), "easy, medium or hard")
	questionCmd.AddCommand(questionAddCmd)
}
