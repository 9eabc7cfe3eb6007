package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyquiz/internal/cache"
	"github.com/abhisek/studyquiz/internal/extract"
	"github.com/abhisek/studyquiz/internal/grading"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/server"
	"github.com/abhisek/studyquiz/internal/topics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := *appCfg
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}
		log := logging.FromContext(ctx)

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := newPipeline(ctx, st, true)
		if err != nil {
			return err
		}

		var topicCache topics.Cache
		if cfg.Redis.Enabled() {
			rc, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
			if err != nil {
				log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("topic cache unavailable, continuing without it")
			} else {
				defer rc.Close()
				topicCache = rc
				log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("topic cache enabled")
			}
		}

		srv := server.New(&cfg, log, server.Deps{
			Extractor: extract.New(p.provider, extract.UploadConfig()),
			Segmenter: topics.New(p.provider, topicCache, topics.DefaultConfig()),
			Generator: quizgen.New(p.provider, quizgen.DefaultGeneratorConfig()),
			Verifier:  grading.NewVerifier(p.provider, grading.DefaultVerifierConfig()),
			Results:   st.ResultRepo(),
		},
			server.WithTimeout(p.llmCfg.Timeout),
			server.WithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
		)

		log.Info().Str("provider", p.llmCfg.Provider).Str("env", cfg.Env).Msg("starting studyquiz server")
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides STUDYQUIZ_HTTP_ADDR)")
}
