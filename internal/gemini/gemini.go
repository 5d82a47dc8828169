// Package gemini is a minimal client for the Gemini generateContent REST API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"patient-portal-server/internal/config"
)

var (
	// ErrMissingAPIKey means the provider credential was never configured.
	ErrMissingAPIKey = errors.New("gemini api key not configured")

	// ErrModelUnavailable maps the provider's 404 for an unknown model.
	ErrModelUnavailable = errors.New("gemini model unavailable")
)

const maxOutputTokens = 2000

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client calls the generateContent endpoint with a bounded timeout.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// GenerateResponse sends the message, prefixed with the document text when
// present, and returns the first candidate's text.
func (c *Client) GenerateResponse(ctx context.Context, message, documentText string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	prompt := message
	if documentText != "" {
		prompt = fmt.Sprintf("Document Context:\n%s\n\nQuestion: %s\nAnswer:", documentText, message)
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(generateRequest{
			Contents: []content{{Parts: []part{{Text: prompt}}}},
			SafetySettings: []safetySetting{{
				Category:  "HARM_CATEGORY_DANGEROUS_CONTENT",
				Threshold: "BLOCK_ONLY_HIGH",
			}},
			GenerationConfig: generationConfig{MaxOutputTokens: maxOutputTokens},
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", ErrModelUnavailable
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "I couldn't generate a response. Please try again.", nil
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
