// Package corpus holds the normalized source text a quiz is built from.
package corpus

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Corpus is plain study material, trimmed of surrounding whitespace.
type Corpus string

// Minimum lengths, in characters, required by each pipeline stage.
const (
	MinQuizLength         = 50
	MinSegmentLength      = 100
	MinIngestTopicsLength = 500
	MinUploadTopicsLength = 1000
)

// Normalize trims s into a Corpus.
func Normalize(s string) Corpus {
	return Corpus(strings.TrimSpace(s))
}

// Len returns the length of c in characters.
func (c Corpus) Len() int {
	return utf8.RuneCountInString(string(c))
}

// String returns c as a string.
func (c Corpus) String() string {
	return string(c)
}

// ErrInputTooShort reports a corpus below a stage's minimum length.
type ErrInputTooShort struct {
	Stage string
	Min   int
	Got   int
}

func (e *ErrInputTooShort) Error() string {
	return fmt.Sprintf("%s: content too short (%d characters, need at least %d)", e.Stage, e.Got, e.Min)
}

// Check returns *ErrInputTooShort when c is shorter than min characters.
func Check(stage string, c Corpus, min int) error {
	if n := c.Len(); n < min {
		return &ErrInputTooShort{Stage: stage, Min: min, Got: n}
	}
	return nil
}

// Prefix returns at most the first n characters of c.
func Prefix(c Corpus, n int) string {
	if n <= 0 {
		return ""
	}
	s := string(c)
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Truncate limits c to budget characters, appending marker when text was cut.
func Truncate(c Corpus, budget int, marker string) string {
	if c.Len() <= budget {
		return string(c)
	}
	return Prefix(c, budget) + marker
}
