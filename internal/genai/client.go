package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/YasiruRavidith/Chat-Room/internal/config"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one piece of a turn: text, or inline image bytes.
type Part struct {
	Text      string
	ImageData []byte
	ImageMIME string
}

// Turn is a single message in the conversation history handed to the model.
type Turn struct {
	Role  Role
	Parts []Part
}

// Params tune a single generation call.
type Params struct {
	MaxOutputTokens int
	Temperature     float64
}

// Generator produces a reply for a conversation. Implemented by Client;
// tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, system string, turns []Turn, params Params) Result
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.GenAIConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inline_data,omitempty"`
}

type wireInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wireGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type wireRequest struct {
	SystemInstruction *wireContent          `json:"system_instruction,omitempty"`
	Contents          []wireContent         `json:"contents"`
	GenerationConfig  *wireGenerationConfig `json:"generationConfig,omitempty"`
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, system string, turns []Turn, params Params) Result {
	req := wireRequest{
		Contents: make([]wireContent, 0, len(turns)),
		GenerationConfig: &wireGenerationConfig{
			MaxOutputTokens: params.MaxOutputTokens,
			Temperature:     params.Temperature,
		},
	}
	if system != "" {
		req.SystemInstruction = &wireContent{Parts: []wirePart{{Text: system}}}
	}
	for _, turn := range turns {
		content := wireContent{Role: string(turn.Role)}
		for _, part := range turn.Parts {
			if len(part.ImageData) > 0 {
				content.Parts = append(content.Parts, wirePart{
					InlineData: &wireInlineData{
						MIMEType: part.ImageMIME,
						Data:     base64.StdEncoding.EncodeToString(part.ImageData),
					},
				})
				continue
			}
			content.Parts = append(content.Parts, wirePart{Text: part.Text})
		}
		if len(content.Parts) == 0 {
			continue
		}
		req.Contents = append(req.Contents, content)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Fail(FailureBadResponse, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Fail(FailureUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Fail(FailureUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Fail(FailureUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Fail(FailureAuth, fmt.Errorf("generation rejected: status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return Fail(FailureQuota, fmt.Errorf("generation rate limited: status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return Fail(FailureUnavailable, fmt.Errorf("generation failed: status %d", resp.StatusCode))
	}

	var parsed wireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Fail(FailureBadResponse, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Fail(FailureBadResponse, fmt.Errorf("generation returned no candidates"))
	}

	var text string
	for _, part := range parsed.Candidates[0].Content.Parts {
		text += part.Text
	}
	return OK(text)
}
