package quiz

import "github.com/abhisek/studyquiz/internal/session"

// gradedMsg is sent when the grader has decided the submitted answer.
type gradedMsg struct {
	State session.State
	Err   error
}
