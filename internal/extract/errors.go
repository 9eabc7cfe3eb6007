package extract

import "fmt"

// MsgLowText is shown when a file yields too little text to quiz on.
const MsgLowText = "Could not extract enough text from the file. Please try a clearer file."

// ExtractionError wraps any failure to produce a corpus.
type ExtractionError struct {
	Kind Kind

	// Message, when set, is the user-facing text.
	Message string

	Err error
}

func (e *ExtractionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrTooLarge rejects payloads over the size cap.
type ErrTooLarge struct {
	Size  int
	Limit int
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("file is %d bytes, limit is %d MB", e.Size, e.Limit>>20)
}
