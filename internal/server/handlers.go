package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/extract"
	"github.com/abhisek/studyquiz/internal/grading"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/topics"
)

var (
	errNoFileData     = errors.New("No file data provided")
	errInvalidBody    = errors.New("Invalid request body")
	errNotConfigured  = errors.New("Service not configured")
	errMissingContent = errors.New("No content provided")
	errBodyTooLarge   = errors.New("File is too large. The limit is 10 MB.")
)

// bindError maps a JSON binding failure to the error reported to the client.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return errInvalidBody
}

type extractRequest struct {
	FileData      string `json:"fileData"`
	MIMEType      string `json:"mimeType"`
	ExtractTopics bool   `json:"extractTopics"`
}

type extractResponse struct {
	Content string         `json:"content"`
	Topics  []topics.Topic `json:"topics"`
}

type topicsRequest struct {
	Content string `json:"content"`
}

type topicsResponse struct {
	Topics []topics.Topic `json:"topics"`
}

type quizRequest struct {
	Content        string          `json:"content"`
	SelectedTopics []string        `json:"selectedTopics"`
	Config         *quizgen.Config `json:"config"`
}

type quizResponse struct {
	Questions []quizgen.Question `json:"questions"`
}

// reportingGenerator is implemented by generators that can explain what
// they discarded.
type reportingGenerator interface {
	GenerateWithReport(ctx context.Context, input quizgen.GenerateInput) ([]quizgen.Question, *quizgen.Report, error)
}

func (s *Server) extractContent(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	if req.FileData == "" {
		s.fail(c, errNoFileData)
		return
	}
	if s.deps.Extractor == nil {
		s.fail(c, errNotConfigured)
		return
	}

	data, err := extract.DecodePayload(req.FileData)
	if err != nil {
		s.fail(c, err)
		return
	}
	in, err := inputFor(data, req.MIMEType)
	if err != nil {
		s.fail(c, err)
		return
	}

	var seg extract.Segmenter
	if req.ExtractTopics && s.deps.Segmenter != nil {
		seg = s.deps.Segmenter
	}
	res, err := s.deps.Extractor.ExtractWithTopics(c.Request.Context(), in, seg)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, extractResponse{Content: res.Corpus.String(), Topics: res.Topics})
}

// inputFor trusts the declared MIME type and sniffs only when it is absent.
func inputFor(data []byte, mime string) (extract.Input, error) {
	if mime == "" {
		return extract.Detect(data)
	}
	kind, err := extract.KindFromMIME(mime)
	if err != nil {
		return extract.Input{}, err
	}
	return extract.Input{Kind: kind, Payload: data, MIMEType: mime}, nil
}

func (s *Server) extractTopics(c *gin.Context) {
	var req topicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	if s.deps.Segmenter == nil {
		s.fail(c, errNotConfigured)
		return
	}

	ctx, cancel := s.bounded(c.Request.Context())
	defer cancel()

	ts, err := s.deps.Segmenter.Segment(ctx, corpus.Normalize(req.Content))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsResponse{Topics: ts})
}

func (s *Server) generateQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	if req.Content == "" {
		s.fail(c, errMissingContent)
		return
	}
	if s.deps.Generator == nil {
		s.fail(c, errNotConfigured)
		return
	}

	cfg := quizgen.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	input := quizgen.GenerateInput{
		Corpus:         corpus.Normalize(req.Content),
		SelectedTopics: req.SelectedTopics,
		Config:         cfg,
	}

	ctx, cancel := s.bounded(c.Request.Context())
	defer cancel()

	var (
		qs  []quizgen.Question
		err error
	)
	if rg, ok := s.deps.Generator.(reportingGenerator); ok {
		var report *quizgen.Report
		qs, report, err = rg.GenerateWithReport(ctx, input)
		if report != nil {
			s.metrics.observeQuestions(report.Kept, len(report.Discarded))
		}
	} else {
		qs, err = s.deps.Generator.Generate(ctx, input)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quizResponse{Questions: qs})
}

func (s *Server) verifyAnswer(c *gin.Context) {
	var req grading.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.failVerdict(c, bindError(err))
		return
	}
	if s.deps.Verifier == nil {
		s.failVerdict(c, errNotConfigured)
		return
	}

	ctx, cancel := s.bounded(c.Request.Context())
	defer cancel()

	verdict, err := s.deps.Verifier.Verify(ctx, req)
	if err != nil {
		s.metrics.observeVerdict("error")
		s.failVerdict(c, err)
		return
	}
	if verdict.IsCorrect {
		s.metrics.observeVerdict("correct")
	} else {
		s.metrics.observeVerdict("incorrect")
	}
	c.JSON(http.StatusOK, verdict)
}

// bounded applies the text request timeout, if any.
func (s *Server) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// fail writes the 500 {error} body every function returns on failure.
func (s *Server) fail(c *gin.Context, err error) {
	log := logging.FromContext(c.Request.Context())
	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": llm.UserMessage(err)})
}

func (s *Server) failVerdict(c *gin.Context, err error) {
	log := logging.FromContext(c.Request.Context())
	log.Error().Err(err).Msg("answer verification failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": llm.UserMessage(err), "isCorrect": false})
}
