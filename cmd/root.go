package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/config"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/store"
)

// appCfg is loaded before any subcommand runs.
var appCfg *config.App

var rootCmd = &cobra.Command{
	Use:          "studyquiz",
	Short:        "Turn study material into quizzes",
	Long:         "StudyQuiz extracts text from notes, PDFs and images, splits it into topics and generates quizzes you can take in the terminal or over HTTP.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appCfg = cfg

		logger := logging.New(cfg.Name, cfg.Env)
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose && cfg.Env != "development" {
			logger = logger.Level(zerolog.WarnLevel)
		}
		cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYQUIZ_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDYQUIZ_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if appCfg != nil && appCfg.DBPath != "" {
		return appCfg.DBPath, store.EnsureDir(appCfg.DBPath)
	}
	return store.DefaultDBPath()
}
