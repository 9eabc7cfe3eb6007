package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/app"
	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/grading"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/screens/quiz"
	"github.com/abhisek/studyquiz/internal/topics"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <file>",
	Short: "Generate a quiz from a file and take it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.FromContext(ctx)

		qcfg := quizgen.DefaultConfig()
		qcfg.NumQuestions, _ = cmd.Flags().GetInt("count")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		types, _ := cmd.Flags().GetString("types")
		selected, _ := cmd.Flags().GetStringSlice("topic")
		qcfg.Difficulty = quizgen.Difficulty(difficulty)
		qcfg.QuestionTypes = quizgen.TypeMix(types)
		if err := qcfg.Validate(); err != nil {
			return err
		}

		in, err := readInput(args[0])
		if err != nil {
			return err
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := newPipeline(ctx, st, true)
		if err != nil {
			return err
		}

		fmt.Printf("Reading %s...\n", filepath.Base(args[0]))
		c, err := p.extractor.Extract(ctx, in)
		if err != nil {
			return err
		}

		if len(selected) > 0 && p.segmenter != nil {
			selected, err = resolveTopics(ctx, p.segmenter, c, selected)
			if err != nil {
				return err
			}
		}

		fmt.Printf("Generating %d questions...\n", qcfg.NumQuestions)
		gen := quizgen.New(p.provider, quizgen.DefaultGeneratorConfig())
		qs, report, err := gen.GenerateWithReport(ctx, quizgen.GenerateInput{
			Corpus:         c,
			SelectedTopics: selected,
			Config:         qcfg,
		})
		if err != nil {
			return err
		}
		if report != nil && len(report.Discarded) > 0 {
			log.Info().Int("kept", len(qs)).Int("discarded", len(report.Discarded)).Msg("some generated questions were discarded")
		}

		grader := grading.NewGrader(grading.NewVerifier(p.provider, grading.DefaultVerifierConfig()), c)
		tuiCtx := quietContext(ctx)
		quizScreen, err := quiz.New(tuiCtx, qs, grader, st.ResultRepo(), quiz.Options{
			Source:        filepath.Base(args[0]),
			Topics:        selected,
			Difficulty:    qcfg.Difficulty,
			QuestionTypes: qcfg.QuestionTypes,
		})
		if err != nil {
			return err
		}
		return app.Run(quizScreen)
	},
}

// resolveTopics checks --topic values against the titles segmented from c.
// When segmentation yields nothing the values are passed through unchecked.
func resolveTopics(ctx context.Context, seg *topics.Segmenter, c corpus.Corpus, wanted []string) ([]string, error) {
	ts := seg.SegmentOrEmpty(ctx, c)
	if len(ts) == 0 {
		return wanted, nil
	}
	matched, unknown := topics.Match(ts, wanted)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown topics: %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(topics.Titles(ts), ", "))
	}
	return matched, nil
}

func init() {
	def := quizgen.DefaultConfig()
	quizCmd.Flags().IntP("count", "n", def.NumQuestions, fmt.Sprintf("Number of questions (%d-%d)", quizgen.MinQuestions, quizgen.MaxQuestions))
	quizCmd.Flags().StringP("difficulty", "d", string(def.Difficulty), "easy, medium, hard or mixed")
	quizCmd.Flags().StringP("types", "t", string(def.QuestionTypes), "mcq, true_false, short_answer or mixed")
	quizCmd.Flags().StringSlice("topic", nil, "Restrict the quiz to these topic titles (repeatable)")
}
