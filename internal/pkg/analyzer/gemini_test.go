package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claridapp/clarid/app/models"
)

func TestModelForTier(t *testing.T) {
	tests := []struct {
		tier string
		want string
	}{
		{models.TierFree, "gemini-3-flash-preview"},
		{models.TierPro, "gemini-3-pro-preview"},
		{models.TierOpus, "gemini-3-pro-preview"},
		{"", "gemini-3-flash-preview"},
		{"something-else", "gemini-3-flash-preview"},
	}

	for _, tt := range tests {
		t.Run("tier "+tt.tier, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelForTier(tt.tier))
		})
	}
}

func geminiReply(t *testing.T, report Report) []byte {
	t.Helper()

	text, err := json.Marshal(report)
	require.NoError(t, err)

	reply, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": string(text)}},
			}},
		},
	})
	require.NoError(t, err)
	return reply
}

func TestAnalyze(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "app de delivery para petshops", req.Contents[0].Parts[0].Text)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		w.Header().Set("Content-Type", "application/json")
		w.Write(geminiReply(t, Report{
			ExecutiveSummary: "Mercado aquecido com concorrência fraca.",
			Score:            Score{Total: 72, Volume: 22, Intensity: 18, Gap: 20, Momentum: 12, Interpretation: "Promissor"},
		}))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	report, err := client.Analyze(context.Background(), "app de delivery para petshops", models.TierPro)
	require.NoError(t, err)

	assert.True(t, strings.Contains(gotPath, "gemini-3-pro-preview"))
	assert.Equal(t, "Mercado aquecido com concorrência fraca.", report.ExecutiveSummary)
	assert.Equal(t, 72, report.Score.Total)
	assert.Equal(t, "app de delivery para petshops", report.Query)
	assert.Equal(t, "gemini-3-pro-preview", report.ModelUsed)
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	client := NewGeminiClient("", "")
	_, err := client.Analyze(context.Background(), "qualquer ideia", models.TierFree)
	assert.Error(t, err)
}

func TestAnalyzeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	_, err := client.Analyze(context.Background(), "qualquer ideia", models.TierFree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAnalyzeNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	_, err := client.Analyze(context.Background(), "qualquer ideia", models.TierFree)
	assert.Error(t, err)
}
