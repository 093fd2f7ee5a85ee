package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChatter struct {
	reply    string
	err      error
	received []Message
}

func (s *scriptedChatter) Chat(_ context.Context, messages []Message) (string, error) {
	s.received = messages
	return s.reply, s.err
}

func TestParseScores(t *testing.T) {
	t.Run("labels and scores", func(t *testing.T) {
		scores, err := ParseScores([]byte(`{"sequence":"x","labels":["price","quantity"],"scores":[0.91,0.12]}`))
		require.NoError(t, err)
		assert.InDelta(t, 0.91, scores["price"], 1e-9)
		assert.InDelta(t, 0.12, scores["quantity"], 1e-9)
	})

	t.Run("label list", func(t *testing.T) {
		scores, err := ParseScores([]byte(`[{"label":"positive","score":0.8},{"label":"negative","score":0.1}]`))
		require.NoError(t, err)
		assert.Len(t, scores, 2)
		assert.InDelta(t, 0.8, scores["positive"], 1e-9)
	})

	t.Run("endpoint error", func(t *testing.T) {
		_, err := ParseScores([]byte(`{"error":"Model is loading"}`))
		assert.ErrorContains(t, err, "Model is loading")
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := ParseScores([]byte(`{"labels":["a","b"],"scores":[0.1]}`))
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseScores([]byte(`{}`))
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseScores([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestZeroShotClient(t *testing.T) {
	var got zeroShotRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"labels":["brand","cost price"],"scores":[0.7,0.2]}`))
	}))
	defer server.Close()

	client := NewZeroShotClient(server.URL, "key", time.Second)
	scores, err := client.Classify(context.Background(), "which brands do we carry", []string{"brand", "cost price"})
	require.NoError(t, err)

	assert.Equal(t, "which brands do we carry", got.Inputs)
	assert.True(t, got.Parameters.MultiLabel)
	assert.Equal(t, []string{"brand", "cost price"}, got.Parameters.CandidateLabels)
	assert.True(t, got.Options["wait_for_model"])
	assert.InDelta(t, 0.7, scores["brand"], 1e-9)
}

func TestZeroShotClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewZeroShotClient(server.URL, "", time.Second).Classify(context.Background(), "x", []string{"a"})
	assert.ErrorContains(t, err, "503")
}

func TestChatClassifier(t *testing.T) {
	chatter := &scriptedChatter{reply: "Sure:\n```json\n{\"price\": 0.9, \"brand\": 1.4}\n```"}
	classifier := NewChatClassifier(chatter)

	scores, err := classifier.Classify(context.Background(), "raise the price", []string{"price", "brand", "note"})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, scores["price"], 1e-9)
	assert.InDelta(t, 1.0, scores["brand"], 1e-9)
	assert.InDelta(t, 0.0, scores["note"], 1e-9)

	require.Len(t, chatter.received, 2)
	assert.Equal(t, RoleSystem, chatter.received[0].Role)
	assert.Contains(t, chatter.received[0].Content, "price, brand, note")

	chatter.reply = "no idea"
	_, err = classifier.Classify(context.Background(), "x", []string{"a"})
	assert.Error(t, err)

	chatter.err = errors.New("down")
	_, err = classifier.Classify(context.Background(), "x", []string{"a"})
	assert.ErrorContains(t, err, "down")
}

func TestChatClient(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"test-model",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  SELECT 1  "}}]}`))
	}))
	defer server.Close()

	client, err := NewChatClient(ChatConfig{BaseURL: server.URL + "/v1", APIKey: "key", Model: "test-model", Timeout: time.Second})
	require.NoError(t, err)

	reply, err := client.Chat(context.Background(), []Message{System("be brief"), User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", reply)

	assert.Equal(t, "test-model", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestChatClientDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := NewChatClient(ChatConfig{BaseURL: server.URL + "/v1", APIKey: "key", Model: "test-model", Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{User("hi")})
	assert.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestNewChatClientRequiresModel(t *testing.T) {
	_, err := NewChatClient(ChatConfig{})
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	chatter := &scriptedChatter{reply: "hello"}
	classifier := NewChatClassifier(&scriptedChatter{reply: `{"a":0.5}`})
	model := Combine(chatter, classifier)

	reply, err := model.Chat(context.Background(), []Message{User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	scores, err := model.Classify(context.Background(), "x", []string{"a"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scores["a"], 1e-9)
}
