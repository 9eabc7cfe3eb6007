// Package topics partitions a corpus into named topics used to scope a quiz.
package topics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/logging"
)

// Topic is one section of the study material.
type Topic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subtopics   []string `json:"subtopics"`
}

// Cache stores segmentation results keyed by corpus hash.
type Cache interface {
	Get(ctx context.Context, key string) ([]Topic, bool, error)
	Set(ctx context.Context, key string, topics []Topic) error
}

// Config controls the segmentation request.
type Config struct {
	// MinLength is the shortest corpus Segment accepts.
	MinLength int

	// CharBudget truncates the corpus before it is sent.
	CharBudget int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard segmentation settings.
func DefaultConfig() Config {
	return Config{
		MinLength:   corpus.MinSegmentLength,
		CharBudget:  30000,
		MaxTokens:   4096,
		Temperature: 0.3,
	}
}

// Segmenter asks the provider for a topic outline of a corpus.
type Segmenter struct {
	provider llm.Provider
	cache    Cache
	cfg      Config
}

// New creates a Segmenter. cache may be nil.
func New(provider llm.Provider, cache Cache, cfg Config) *Segmenter {
	return &Segmenter{provider: provider, cache: cache, cfg: cfg}
}

type segmentOutput struct {
	Topics []Topic `json:"topics"`
}

// Segment returns the topics of c. Every failure is a *SegmentationError.
func (s *Segmenter) Segment(ctx context.Context, c corpus.Corpus) ([]Topic, error) {
	if err := corpus.Check("topics", c, s.cfg.MinLength); err != nil {
		return nil, &SegmentationError{Message: MsgTooShort, Err: err}
	}

	log := logging.FromContext(ctx)
	key := CacheKey(c)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("topic cache read failed")
		case ok:
			log.Debug().Str("key", key).Int("topics", len(cached)).Msg("topic cache hit")
			return cached, nil
		}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeTopics)
	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(c, s.cfg.CharBudget)},
		},
		Schema:      TopicsSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		if isInvalid(err) {
			return nil, &SegmentationError{Message: MsgUnparsable, Err: err}
		}
		return nil, &SegmentationError{Err: fmt.Errorf("LLM topic extraction failed: %w", err)}
	}

	var out segmentOutput
	if err := llm.DecodeJSON(resp.Content, &out); err != nil {
		return nil, &SegmentationError{Message: MsgUnparsable, Err: err}
	}

	ts := normalize(out.Topics)
	log.Debug().Int("topics", len(ts)).Int("chars", c.Len()).Msg("topics extracted")

	if s.cache != nil && len(ts) > 0 {
		if err := s.cache.Set(ctx, key, ts); err != nil {
			log.Warn().Err(err).Msg("topic cache write failed")
		}
	}
	return ts, nil
}

// SegmentOrEmpty is Segment with every failure degraded to no topics.
func (s *Segmenter) SegmentOrEmpty(ctx context.Context, c corpus.Corpus) []Topic {
	ts, err := s.Segment(ctx, c)
	if err != nil {
		log := logging.FromContext(ctx)
		log.Warn().Err(err).Msg("topic segmentation failed, continuing without topics")
		return []Topic{}
	}
	return ts
}

// CacheKey identifies a corpus in the topic cache.
func CacheKey(c corpus.Corpus) string {
	sum := sha256.Sum256([]byte(c))
	return "topics:" + hex.EncodeToString(sum[:])
}

// Titles returns the titles of ts in order.
func Titles(ts []Topic) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Title)
	}
	return out
}

// Match resolves wanted titles against ts, ignoring case and surrounding
// space. Matched titles are returned as ts spells them.
func Match(ts []Topic, wanted []string) (matched, unknown []string) {
	byKey := make(map[string]string, len(ts))
	for _, title := range Titles(ts) {
		byKey[strings.ToLower(strings.TrimSpace(title))] = title
	}
	for _, w := range wanted {
		if title, ok := byKey[strings.ToLower(strings.TrimSpace(w))]; ok {
			matched = append(matched, title)
		} else {
			unknown = append(unknown, w)
		}
	}
	return matched, unknown
}

// normalize drops untitled topics and makes IDs unique. Title and
// description lengths are left as returned.
func normalize(in []Topic) []Topic {
	out := make([]Topic, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" || seen[t.ID] {
			t.ID = nextID(seen, len(out)+1)
		}
		seen[t.ID] = true
		if t.Subtopics == nil {
			t.Subtopics = []string{}
		}
		out = append(out, t)
	}
	return out
}

func nextID(seen map[string]bool, n int) string {
	for {
		id := fmt.Sprintf("topic-%d", n)
		if !seen[id] {
			return id
		}
		n++
	}
}
