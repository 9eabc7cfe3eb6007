package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/studyquiz/internal/llm"
)

const ocrPrompt = `Extract ALL text content from this document using OCR if needed.

CRITICAL INSTRUCTIONS:
- Extract EVERY word, heading, paragraph, bullet point, and section
- Preserve the document structure (headings, lists, paragraphs)
- Include all chapter names, section titles, and subsections
- Do NOT summarize or skip content
- Return ONLY the extracted text without any commentary`

// ocr delegates an image to the provider. The raw reply is the corpus.
func (e *Extractor) ocr(ctx context.Context, in Input) (string, error) {
	if e.provider == nil {
		return "", fmt.Errorf("image extraction requires an LLM provider")
	}
	if in.MIMEType == "" {
		return "", fmt.Errorf("image input is missing a MIME type")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeOCR)
	if e.cfg.ImageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ImageTimeout)
		defer cancel()
	}

	resp, err := e.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: ocrPrompt}},
		Attachments: []llm.Attachment{{MIMEType: in.MIMEType, Data: in.Payload}},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !IsTimeout(err) {
			err = &llm.ErrTimeout{After: e.cfg.ImageTimeout, Err: err}
		}
		return "", fmt.Errorf("ocr: %w", err)
	}
	return resp.Text(), nil
}
