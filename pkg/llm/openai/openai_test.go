package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelegendaryrichman/nova/pkg/llm"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

type chatRequest struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Effort   string `json:"reasoning_effort"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func sseServer(t *testing.T, captured *chatRequest, deltas ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		for _, d := range deltas {
			b, _ := json.Marshal(d)
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%s}}]}\n\n", b)
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_AccumulatesVisibleText(t *testing.T) {
	var captured chatRequest
	srv := sseServer(t, &captured, "<think>weighing ", "sources</think>", "Tides are ", "driven by the moon.")

	p, err := NewProvider("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &llm.Request{
		SystemInstruction: "Be concise.",
		Prompt:            "Search for: tides",
		Tools:             llm.ToolSet{Search: true},
		Location:          &types.Coordinates{Latitude: 1, Longitude: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tides are driven by the moon.", resp.Text)
	assert.Empty(t, resp.GroundingChunks)

	assert.Equal(t, DefaultModel, captured.Model)
	assert.True(t, captured.Stream)
	assert.Empty(t, captured.Effort)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "Be concise.", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Search for: tides", captured.Messages[1].Content)
}

func TestGenerate_DeepRequestsHighReasoning(t *testing.T) {
	var captured chatRequest
	srv := sseServer(t, &captured, "ok")

	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &llm.Request{
		Model:          "o3",
		Prompt:         "explain",
		ThinkingBudget: 32768,
	})
	require.NoError(t, err)

	assert.Equal(t, "o3", captured.Model)
	assert.Equal(t, "high", captured.Effort)
	require.Len(t, captured.Messages, 1)
}

func TestStreamCompletion_SeparatesThinking(t *testing.T) {
	var captured chatRequest
	srv := sseServer(t, &captured, "<thinking>plan</thinking>answer")

	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	stream, err := p.StreamCompletion(context.Background(), &llm.Request{Prompt: "q"})
	require.NoError(t, err)

	var thinking, message string
	finished := false
	for chunk := range stream {
		require.False(t, chunk.IsError())
		switch chunk.Type {
		case llm.ContentTypeThinking:
			thinking += chunk.Content
		case llm.ContentTypeMessage:
			message += chunk.Content
		}
		if chunk.Finished {
			finished = true
		}
	}

	assert.Equal(t, "plan", thinking)
	assert.Equal(t, "answer", message)
	assert.True(t, finished)
}

func TestGenerate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &llm.Request{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNewProvider(t *testing.T) {
	t.Run("requires key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := NewProvider("")
		require.Error(t, err)
	})

	t.Run("env base url", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
		p, err := NewProvider("k")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/v1", p.GetBaseURL())
		assert.Equal(t, "http://localhost:8080/v1", p.GetModelInfo().Metadata["base_url"])
	})

	t.Run("option wins over env", func(t *testing.T) {
		t.Setenv("OPENAI_BASE_URL", "http://env")
		p, err := NewProvider("k", WithBaseURL("http://opt"))
		require.NoError(t, err)
		assert.Equal(t, "http://opt", p.GetBaseURL())
	})
}
