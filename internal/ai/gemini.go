package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiConfig holds API settings for the Google Generative Language API.
type GeminiConfig struct {
	BaseURL string
	APIKey  string
}

type GeminiClient struct {
	httpClient *http.Client
	cfg        GeminiConfig
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		cfg:        cfg,
	}
}

// GenerateInput describes one generateContent call. When FileSearchStoreNames
// is non-empty the call is grounded on those stores (RAG).
type GenerateInput struct {
	Model                string
	SystemInstruction    string
	Contents             string
	Temperature          float64
	MaxOutputTokens      int
	FileSearchStoreNames []string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

// GenerateContent calls models/{model}:generateContent and returns the
// concatenated text of the first candidate. An empty string with nil error
// means the model returned no text.
func (c *GeminiClient) GenerateContent(ctx context.Context, in GenerateInput) (string, error) {
	if strings.TrimSpace(in.Contents) == "" {
		return "", fmt.Errorf("generate input is empty")
	}

	reqBody := map[string]interface{}{
		"contents": []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: in.Contents}}},
		},
	}
	if in.SystemInstruction != "" {
		reqBody["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: in.SystemInstruction}}}
	}
	genCfg := map[string]interface{}{}
	if in.Temperature > 0 {
		genCfg["temperature"] = in.Temperature
	}
	if in.MaxOutputTokens > 0 {
		genCfg["maxOutputTokens"] = in.MaxOutputTokens
	}
	if len(genCfg) > 0 {
		reqBody["generationConfig"] = genCfg
	}
	if len(in.FileSearchStoreNames) > 0 {
		reqBody["tools"] = []map[string]interface{}{
			{
				"fileSearch": map[string]interface{}{
					"fileSearchStoreNames": in.FileSearchStoreNames,
				},
			},
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request failed: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), in.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build gemini request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse gemini json failed: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
