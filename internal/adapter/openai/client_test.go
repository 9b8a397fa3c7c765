package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legislation-chat-bot/internal/adapter/dataset"
	"legislation-chat-bot/internal/config"
	"legislation-chat-bot/internal/domain"
	"legislation-chat-bot/internal/usecase/catalog"
	"legislation-chat-bot/internal/usecase/chat"
	"legislation-chat-bot/internal/usecase/query"
)

func newTestServer(t *testing.T, respond func(body map[string]any) string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var seen []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(data, &body))
		seen = append(seen, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, respond(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.Config{OpenAIKey: "sk-test", OpenAIBaseURL: srv.URL})
}

func definitions() []catalog.Definition {
	return catalog.New(query.NewService(dataset.NewStore())).Definitions()
}

func TestComplete_FunctionCall(t *testing.T) {
	srv, seen := newTestServer(t, func(map[string]any) string {
		return `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "function_call",
				"message": {
					"role": "assistant",
					"content": null,
					"function_call": {"name": "get_bill_details", "arguments": "{\"bill_number\":\"HB 1221\"}"}
				}
			}]
		}`
	})

	reply, err := newTestClient(srv).Complete(context.Background(), chat.CompletionRequest{
		Model: "gpt-4.1",
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "sys"},
			{Role: domain.RoleUser, Content: "What is HB 1221 about?"},
		},
		Functions:           definitions(),
		MaxCompletionTokens: 128,
	})
	require.NoError(t, err)

	require.NotNil(t, reply.FunctionCall)
	assert.Equal(t, "get_bill_details", reply.FunctionCall.Name)
	assert.Equal(t, `{"bill_number":"HB 1221"}`, reply.FunctionCall.Arguments)
	assert.Empty(t, reply.Content)

	require.Len(t, *seen, 1)
	body := (*seen)[0]
	assert.Equal(t, "gpt-4.1", body["model"])
	assert.Equal(t, "auto", body["function_call"])
	assert.EqualValues(t, 128, body["max_completion_tokens"])

	functions := body["functions"].([]any)
	require.Len(t, functions, 2)
	first := functions[0].(map[string]any)
	assert.Equal(t, "get_bill_details", first["name"])
	params := first["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []any{"bill_number"}, params["required"])
}

func TestComplete_FollowUpHasNoFunctions(t *testing.T) {
	srv, seen := newTestServer(t, func(map[string]any) string {
		return `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "It funds roads."}}]}`
	})

	reply, err := newTestClient(srv).Complete(context.Background(), chat.CompletionRequest{
		Model: "gpt-4.1",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "What is HB 1221 about?"},
			{Role: domain.RoleAssistant, FunctionCall: &domain.FunctionCall{Name: "get_bill_details", Arguments: `{"bill_number":"HB 1221"}`}},
			{Role: domain.RoleFunction, Name: "get_bill_details", Content: `{"title":"Transportation Infrastructure Program"}`},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "It funds roads.", reply.Content)
	assert.Nil(t, reply.FunctionCall)

	body := (*seen)[0]
	assert.NotContains(t, body, "functions")
	assert.NotContains(t, body, "function_call")

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 3)
	request := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", request["role"])
	assert.Equal(t, map[string]any{
		"name":      "get_bill_details",
		"arguments": `{"bill_number":"HB 1221"}`,
	}, request["function_call"])
	result := msgs[2].(map[string]any)
	assert.Equal(t, "function", result["role"])
	assert.Equal(t, "get_bill_details", result["name"])
}

func TestComplete_Errors(t *testing.T) {
	t.Run("empty choices", func(t *testing.T) {
		srv, _ := newTestServer(t, func(map[string]any) string { return `{"choices": []}` })
		_, err := newTestClient(srv).Complete(context.Background(), chat.CompletionRequest{
			Model:    "gpt-4.1",
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		})
		assert.EqualError(t, err, "openai returned empty response")
	})

	t.Run("empty message", func(t *testing.T) {
		srv, _ := newTestServer(t, func(map[string]any) string {
			return `{"choices": [{"index": 0, "finish_reason": "length", "message": {"role": "assistant", "content": ""}}]}`
		})
		_, err := newTestClient(srv).Complete(context.Background(), chat.CompletionRequest{
			Model:    "gpt-4.1",
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		})
		assert.ErrorIs(t, err, chat.ErrEmptyReply)
	})

	t.Run("refusal", func(t *testing.T) {
		srv, _ := newTestServer(t, func(map[string]any) string {
			return `{"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "", "refusal": "I can't help with that."}}]}`
		})
		_, err := newTestClient(srv).Complete(context.Background(), chat.CompletionRequest{
			Model:    "gpt-4.1",
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		})
		assert.EqualError(t, err, "openai refused: I can't help with that.")
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
		}))
		defer srv.Close()

		_, err := newTestClient(srv).Complete(context.Background(), chat.CompletionRequest{
			Model:    "gpt-4.1",
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)

		var apiErr *openaiapi.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
	})
}

func TestComplete_RateLimiterHonorsContext(t *testing.T) {
	c := NewClient(config.Config{OpenAIKey: "sk-test", RequestsPerMinute: 1})
	require.NotNil(t, c.limiter)
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Complete(ctx, chat.CompletionRequest{Model: "gpt-4.1"})
	assert.Error(t, err)
}

func TestToAPIMessages(t *testing.T) {
	got := toAPIMessages([]domain.Message{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleAssistant, FunctionCall: &domain.FunctionCall{Name: "search_bills", Arguments: `{"query":"tax"}`}},
		{Role: domain.RoleFunction, Name: "search_bills", Content: `{"matches":[]}`},
	})

	require.Len(t, got, 3)
	assert.Equal(t, openaiapi.ChatMessageRoleSystem, got[0].Role)
	assert.Nil(t, got[0].FunctionCall)
	assert.Equal(t, "search_bills", got[1].FunctionCall.Name)
	assert.Equal(t, openaiapi.ChatMessageRoleFunction, got[2].Role)
	assert.Equal(t, "search_bills", got[2].Name)
}
