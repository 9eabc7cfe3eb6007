package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.ResultRepo()
		stats, err := repo.Stats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if stats.TotalQuizzes == 0 {
			fmt.Println("No quizzes taken yet.")
			return nil
		}

		fmt.Printf("Quizzes taken:  %d\n", stats.TotalQuizzes)
		fmt.Printf("Average score:  %d%%\n", stats.AverageScore)
		fmt.Printf("Best score:     %d%%\n", stats.BestScore)

		recent, err := repo.ListResults(ctx, store.QueryOpts{Limit: 5})
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}
		fmt.Println()
		fmt.Println("Recent")
		rule(60)
		for _, r := range recent {
			fmt.Printf("%-17s  %-28s  %2d/%-2d  %3d%%\n",
				r.Timestamp.Local().Format("2006-01-02 15:04"), truncate(r.Source, 28), r.Score, r.Total, r.Percentage())
		}
		return nil
	},
}
