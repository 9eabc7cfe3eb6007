package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/extract"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/store"
	"github.com/abhisek/studyquiz/internal/topics"
)

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// pipeline is the set of stages the file-based commands share.
type pipeline struct {
	provider  llm.Provider
	llmCfg    llm.Config
	extractor *extract.Extractor
	segmenter *topics.Segmenter
}

// newPipeline builds the stages. When required is false a missing
// provider is tolerated and only text and PDF extraction work.
func newPipeline(ctx context.Context, st *store.Store, required bool) (*pipeline, error) {
	var events store.EventRepo
	if st != nil {
		events = st.EventRepo()
	}
	provider, llmCfg, err := llm.NewProviderFromEnv(ctx, events)
	if err != nil {
		if required {
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		log := logging.FromContext(ctx)
		log.Debug().Err(err).Msg("no LLM provider, continuing with local extraction only")
		provider = nil
	}
	p := &pipeline{
		provider:  provider,
		llmCfg:    llmCfg,
		extractor: extract.New(provider, extract.DefaultConfig()),
	}
	if provider != nil {
		p.segmenter = topics.New(provider, nil, topics.DefaultConfig())
	}
	return p, nil
}

// readInput loads a file and sniffs its kind.
func readInput(path string) (extract.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	in, err := extract.Detect(data)
	if err != nil {
		return extract.Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// quietContext silences logging while a full-screen program owns the
// terminal.
func quietContext(ctx context.Context) context.Context {
	return logging.IntoContext(ctx, zerolog.Nop())
}
