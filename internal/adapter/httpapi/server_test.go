package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legislation-chat-bot/internal/adapter/dataset"
	"legislation-chat-bot/internal/adapter/memory"
	"legislation-chat-bot/internal/config"
	"legislation-chat-bot/internal/domain"
	"legislation-chat-bot/internal/metrics"
	"legislation-chat-bot/internal/usecase/catalog"
	"legislation-chat-bot/internal/usecase/chat"
	"legislation-chat-bot/internal/usecase/query"
)

type scriptedClient struct {
	replies []chat.Reply
	err     error
}

func (c *scriptedClient) Complete(context.Context, chat.CompletionRequest) (chat.Reply, error) {
	if c.err != nil {
		return chat.Reply{}, c.err
	}
	if len(c.replies) == 0 {
		return chat.Reply{}, errors.New("no scripted reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

func newTestServer(client chat.Client) http.Handler {
	reg := prometheus.NewRegistry()
	svc := chat.NewService(
		memory.NewStore(),
		client,
		catalog.New(query.NewService(dataset.NewStore())),
		config.Config{Model: "test-model", AssistantPrompt: "sys"},
		metrics.New(reg),
	)
	return NewServer(svc, reg).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(&scriptedClient{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestPostMessage_DetailLookup(t *testing.T) {
	h := newTestServer(&scriptedClient{replies: []chat.Reply{
		{FunctionCall: &domain.FunctionCall{Name: "get_bill_details", Arguments: `{"bill_number":"HB 1221"}`}},
		{Content: "It improves highways and local roads."},
	}})
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":"What is HB 1221 about?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "It improves highways and local roads.", resp.Answer)
	assert.Equal(t, "get_bill_details", resp.Function)
	assert.Equal(t, "https://iga.in.gov/legislation/2025/hb1221", resp.Source)
	assert.Contains(t, resp.Markdown, "https://iga.in.gov/legislation/2025/hb1221")

	rec = do(t, h, http.MethodGet, "/api/sessions/"+id+"/transcript", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var turns []domain.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	require.Len(t, turns, 5)
	assert.Equal(t, domain.RoleFunction, turns[3].Role)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `billbot_chat_turns_total{path="function"} 1`)
}

func TestPostMessage_Errors(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		h := newTestServer(&scriptedClient{})
		rec := do(t, h, http.MethodPost, "/api/sessions/missing/messages", `{"message":"hi"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank message", func(t *testing.T) {
		h := newTestServer(&scriptedClient{})
		id := createSession(t, h)
		rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newTestServer(&scriptedClient{})
		id := createSession(t, h)
		rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("model failure", func(t *testing.T) {
		h := newTestServer(&scriptedClient{err: errors.New("upstream down")})
		id := createSession(t, h)
		rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":"hi"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "failed to reach the model", body["error"])
	})
}

func TestTranscript_UnknownSession(t *testing.T) {
	rec := do(t, newTestServer(&scriptedClient{}), http.MethodGet, "/api/sessions/missing/transcript", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
