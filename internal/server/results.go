package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyquiz/internal/review"
	"github.com/abhisek/studyquiz/internal/store"
)

const defaultReviewLimit = 200

func (s *Server) saveResult(c *gin.Context) {
	var data store.ResultData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindError(err).Error()})
		return
	}
	if err := data.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.deps.Results.SaveResult(c.Request.Context(), data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) listResults(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	results, err := s.deps.Results.ListResults(c.Request.Context(), store.QueryOpts{Limit: limit})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) getResult(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return
	}
	res, err := s.deps.Results.GetResult(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) resultStats(c *gin.Context) {
	stats, err := s.deps.Results.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) reviewDeck(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultReviewLimit)
	if !ok {
		return
	}
	missed, err := s.deps.Results.MissedAnswers(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	cards := review.Deck(missed)
	if c.Query("shuffle") == "true" {
		cards = review.Shuffle(cards, nil)
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// queryInt reads a non-negative integer query parameter. It writes a 400
// and returns false when the value is malformed.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
