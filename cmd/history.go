package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/app"
	"github.com/abhisek/studyquiz/internal/review"
	"github.com/abhisek/studyquiz/internal/screens/flashcards"
	"github.com/abhisek/studyquiz/internal/screens/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past quiz results",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		return app.Run(history.New(quietContext(cmd.Context()), st.ResultRepo()))
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review missed questions as flashcards",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		missed, err := st.ResultRepo().MissedAnswers(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query missed answers: %w", err)
		}
		if len(missed) == 0 {
			fmt.Println("No missed questions to review.")
			return nil
		}
		return app.Run(flashcards.New(review.Deck(missed)))
	},
}

func init() {
	reviewCmd.Flags().IntP("limit", "n", 50, "Number of most recent missed questions to review")
}
