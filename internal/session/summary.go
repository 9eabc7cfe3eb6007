package session

import "math"

// Summary is the result of a completed attempt.
type Summary struct {
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Answers []AnswerRecord `json:"answers"`
}

// Summarize derives a Summary from the answer records. Score is always
// the number of correct records and Total the number of records.
func Summarize(answers []AnswerRecord) Summary {
	out := make([]AnswerRecord, len(answers))
	copy(out, answers)
	return Summary{
		Score:   countCorrect(out),
		Total:   len(out),
		Answers: out,
	}
}

// Percentage is the score out of 100, rounded.
func (s Summary) Percentage() int {
	return Percentage(s.Score, s.Total)
}

// Feedback returns the performance band for the score.
func (s Summary) Feedback() Band {
	return BandFor(s.Percentage())
}

// Missed returns the incorrect records in order.
func (s Summary) Missed() []AnswerRecord {
	var out []AnswerRecord
	for _, a := range s.Answers {
		if !a.IsCorrect {
			out = append(out, a)
		}
	}
	return out
}

// Percentage returns score out of 100, rounded. A zero total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// Band is a performance tier shown with a result.
type Band struct {
	Label   string
	Message string
}

var bands = []struct {
	min  int
	band Band
}{
	{90, Band{"Outstanding!", "Outstanding! You've mastered this material!"}},
	{75, Band{"Great Job!", "Great job! You have a solid understanding!"}},
	{60, Band{"Good Effort", "Good effort! Keep studying to improve!"}},
	{0, Band{"Keep Practicing", "Keep practicing! Review the material and try again!"}},
}

// BandFor maps a percentage to its performance band.
func BandFor(pct int) Band {
	for _, b := range bands {
		if pct >= b.min {
			return b.band
		}
	}
	return bands[len(bands)-1].band
}

func countCorrect(answers []AnswerRecord) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}
