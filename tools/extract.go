package tools

import (
	"context"
	"fmt"
	"io"
	"strings"

	"casebrief-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
)

// Extractor turns stored evidence files into plain text. One instance
// serves all four evidence kinds: the workflow engine picks the method
// by content type.
type Extractor struct {
	client  *Client
	storage storage.Storage
	logger  zerolog.Logger
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// ExtractorWithClient sets the Gemini client
func ExtractorWithClient(client *Client) ExtractorOption {
	return func(e *Extractor) {
		e.client = client
	}
}

// ExtractorWithStorage sets the file storage backend
func ExtractorWithStorage(st storage.Storage) ExtractorOption {
	return func(e *Extractor) {
		e.storage = st
	}
}

// ExtractorWithLogger sets the logger
func ExtractorWithLogger(logger zerolog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a new extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transcribe converts an audio file to text
func (e *Extractor) Transcribe(ctx context.Context, path string) (string, error) {
	return e.describeFile(ctx, path, "audio/mpeg",
		"Transcribe this audio recording verbatim. Return only the spoken words.")
}

// ReadDocument extracts the text of a PDF document
func (e *Extractor) ReadDocument(ctx context.Context, path string) (string, error) {
	return e.describeFile(ctx, path, "application/pdf",
		"Extract the complete text content of this document. Return only the text, preserving its structure.")
}

// DescribeVideo summarizes the relevant content of a video
func (e *Extractor) DescribeVideo(ctx context.Context, path string, caseID string) (string, error) {
	prompt := fmt.Sprintf(
		"Describe everything relevant in this video for case %s: events, people, statements, and timestamps.",
		caseID)
	return e.describeFile(ctx, path, "video/mp4", prompt)
}

// DescribeImage describes an evidence photograph
func (e *Extractor) DescribeImage(ctx context.Context, path string) (string, error) {
	return e.describeFile(ctx, path, "image/jpeg",
		"Describe this image in detail: visible people, objects, text, damage, and context.")
}

// describeFile downloads a stored file and sends it to the multimodal model
func (e *Extractor) describeFile(ctx context.Context, path, mimeType, prompt string) (string, error) {
	if e.client == nil {
		return "", fmt.Errorf("gemini client not configured")
	}
	if e.storage == nil {
		return "", fmt.Errorf("storage not configured")
	}

	rc, err := e.storage.Download(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to download file %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	e.logger.Debug().
		Str("path", path).
		Str("mime_type", mimeType).
		Int("bytes", len(data)).
		Msg("sending file to multimodal model")

	model := e.client.genai.GenerativeModel(multimodalName)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("multimodal extraction failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("multimodal model returned empty content")
	}
	return text, nil
}

// responseText concatenates the text parts of a model response
func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
