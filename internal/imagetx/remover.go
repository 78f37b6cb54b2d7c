// Package imagetx runs server-side image transformations on candidate
// photos. The only transform today is background removal ahead of placing a
// photo on a template.
package imagetx

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Remover replaces a photo's background with a plain one and returns the
// edited image bytes plus their MIME type.
type Remover interface {
	RemoveBackground(ctx context.Context, image []byte, mimeType string) ([]byte, string, error)
}

// ErrTransient marks a failure worth retrying: the upstream model was
// overloaded or rate limited rather than rejecting the input.
type ErrTransient struct {
	Err error
}

func (e *ErrTransient) Error() string { return fmt.Sprintf("transient image edit failure: %v", e.Err) }
func (e *ErrTransient) Unwrap() error { return e.Err }

const removerModel = "gemini-2.5-flash-image"

const removerPrompt = `Remove the background of this photo and replace it with a
plain uniform white background. Keep the person completely unchanged. Return
only the edited image.`

// GeminiRemover implements Remover on the Gemini image generation API.
type GeminiRemover struct {
	client *genai.Client
	model  string
}

// NewGeminiRemover creates a remover. The API key must be supplied by the
// caller; the package reads no environment.
func NewGeminiRemover(ctx context.Context, apiKey string) (*GeminiRemover, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiRemover{client: client, model: removerModel}, nil
}

// Close releases the underlying client.
func (r *GeminiRemover) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// RemoveBackground sends the photo to the image model and returns the first
// image part of the reply.
func (r *GeminiRemover) RemoveBackground(ctx context.Context, image []byte, mimeType string) ([]byte, string, error) {
	model := r.client.GenerativeModel(r.model)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: image},
		genai.Text(removerPrompt),
	)
	if err != nil {
		return nil, "", &ErrTransient{Err: err}
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return blob.Data, blob.MIMEType, nil
			}
		}
	}
	return nil, "", fmt.Errorf("model returned no image")
}
