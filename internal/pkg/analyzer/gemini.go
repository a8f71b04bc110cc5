package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claridapp/clarid/app/models"
	"github.com/claridapp/clarid/internal/pkg/env"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

const systemInstruction = `You are 'Clarid', a world-class Business Idea Validator. ` +
	`Validate the user's business idea by simulating a massive research process ` +
	`across Reddit, Twitter, LinkedIn and Brazilian forums. Respond with a single ` +
	`JSON object matching the requested report schema: executiveSummary, score ` +
	`(total 0-100, volume 0-30, intensity 0-25, gap 0-25, momentum 0-20, ` +
	`interpretation), evidence, potential (monetization, execution, defensibility), ` +
	`competitors (list, marketStatus, isSaturated), sources and alternatives.`

// GeminiClient calls the Generative Language API's generateContent endpoint
// and decodes the model's JSON answer into a Report.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a client for the given API key and base URL. An
// empty baseURL selects the public endpoint.
func NewGeminiClient(apiKey, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewGeminiClientFromEnv creates a client configured from the environment.
func NewGeminiClientFromEnv() *GeminiClient {
	return NewGeminiClient(env.GetEnv("GEMINI_API_KEY", ""), env.GetEnv("GEMINI_BASE_URL", ""))
}

// ModelForTier maps a subscription tier to the model it is entitled to.
func ModelForTier(tier string) string {
	switch tier {
	case models.TierPro, models.TierOpus:
		return "gemini-3-pro-preview"
	default:
		return "gemini-3-flash-preview"
	}
}

type generateRequest struct {
	SystemInstruction content          `json:"system_instruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze generates a viability report for the given query.
func (g *GeminiClient) Analyze(ctx context.Context, query, tier string) (*Report, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}

	model := ModelForTier(tier)
	reqBody := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Parts: []part{{Text: query}}}},
		GenerationConfig:  generationConfig{ResponseMimeType: "application/json"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini API: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Gemini API response: %v", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to decode Gemini API response: %v", err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini API returned no candidates")
	}

	var report Report
	if err := json.Unmarshal([]byte(genResp.Candidates[0].Content.Parts[0].Text), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report payload: %v", err)
	}

	report.Query = query
	report.ModelUsed = model
	return &report, nil
}
