package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(body))
	}))
}

func collect(t *testing.T, s llm.Stream) (string, error) {
	t.Helper()
	defer s.Close()
	var out string
	for {
		delta, err := s.Recv()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out += delta
	}
}

func TestStream_TypedEvents(t *testing.T) {
	body := "event: message_start\n" +
		"data: {\"type\":\"message_start\",\"message\":{\"usage\":{\"input_tokens\":12}}}\n\n" +
		"event: content_block_start\n" +
		"data: {\"type\":\"content_block_start\"}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"안\"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"녕하세요\"}}\n\n" +
		"event: message_delta\n" +
		"data: {\"type\":\"message_delta\",\"usage\":{\"output_tokens\":5}}\n\n" +
		"event: message_stop\n" +
		"data: {\"type\":\"message_stop\"}\n\n"

	srv := sseServer(t, body)
	defer srv.Close()

	p := NewProvider("test-key")
	p.baseURL = srv.URL

	stream, err := p.Stream(context.Background(), llm.Request{
		SystemPrompt: "You are helpful.",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "안녕"},
		},
		Model: "claude-3-haiku-20240307",
	})
	require.NoError(t, err)

	text, err := collect(t, stream)
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", text)

	counter, ok := stream.(llm.TokenCounter)
	require.True(t, ok)
	assert.Equal(t, 17, counter.TokensUsed())
}

func TestStream_SkipsLeadingAssistantMessages(t *testing.T) {
	var captured messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"))
	}))
	defer srv.Close()

	p := NewProvider("test-key")
	p.baseURL = srv.URL

	stream, err := p.Stream(context.Background(), llm.Request{
		SystemPrompt: "You are helpful.",
		Messages: []domain.Message{
			{Role: domain.RoleAssistant, Content: "무엇을 도와드릴까요?"},
			{Role: domain.RoleUser, Content: "안녕"},
			{Role: domain.RoleAssistant, Content: "안녕하세요"},
			{Role: domain.RoleUser, Content: "숙제 도와줘"},
		},
		Model: "claude-3-haiku-20240307",
	})
	require.NoError(t, err)
	stream.Close()

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "안녕", captured.Messages[0].Content)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	assert.Equal(t, "user", captured.Messages[2].Role)
}

func TestStream_TruncatedWithoutStop(t *testing.T) {
	body := "event: content_block_delta\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n"

	srv := sseServer(t, body)
	defer srv.Close()

	p := NewProvider("test-key")
	p.baseURL = srv.URL

	stream, err := p.Stream(context.Background(), llm.Request{Model: "claude-3-haiku-20240307"})
	require.NoError(t, err)

	_, err = collect(t, stream)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderStream)
}

func TestStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewProvider("test-key")
	p.baseURL = srv.URL

	_, err := p.Stream(context.Background(), llm.Request{Model: "claude-3-haiku-20240307"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderStream)
}
