package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"sumbot/internal/apperr"
	"sumbot/internal/config"
)

func newChatServer(t *testing.T, reply string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization = %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func clientFor(server *httptest.Server) *Client {
	cfg := &config.AIConfig{
		Default: "test",
		Services: map[string]config.AIServiceConfig{
			"test": {
				Name:    "Test",
				APIBase: server.URL,
				Model:   "test-model",
				APIKey:  "service-key",
			},
		},
	}
	return NewClient(cfg, slog.New(slog.NewTextHandler(testWriter{}, nil)))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestSummarize(t *testing.T) {
	var captured chatRequest
	server := newChatServer(t, "  这是总结。  ", &captured)
	defer server.Close()

	summary, err := clientFor(server).Summarize(context.Background(), "文章正文", "", 0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "这是总结。" {
		t.Fatalf("summary = %q", summary)
	}
	if captured.Model != "test-model" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.Temperature)
	}
	if captured.MaxTokens != 500 {
		t.Errorf("max_tokens = %d, want 500", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Content != "文章正文" {
		t.Errorf("unexpected messages %+v", captured.Messages)
	}
}

func TestSummarize_MaxTokensOverride(t *testing.T) {
	var captured chatRequest
	server := newChatServer(t, "summary", &captured)
	defer server.Close()

	if _, err := clientFor(server).Summarize(context.Background(), "text", "", 120); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if captured.MaxTokens != 120 {
		t.Fatalf("max_tokens = %d, want 120", captured.MaxTokens)
	}
}

func TestSummarize_EmptyModelResponse(t *testing.T) {
	server := newChatServer(t, "   ", nil)
	defer server.Close()

	_, err := clientFor(server).Summarize(context.Background(), "text", "", 0)
	if kind := apperr.KindOf(err); kind != apperr.KindSummaryFailed {
		t.Fatalf("error kind = %s (err %v), want %s", kind, err, apperr.KindSummaryFailed)
	}
}

func TestSummarize_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := clientFor(server).Summarize(context.Background(), "text", "", 0)
	if kind := apperr.KindOf(err); kind != apperr.KindSummaryFailed {
		t.Fatalf("error kind = %s (err %v), want %s", kind, err, apperr.KindSummaryFailed)
	}
}

func TestFollowUpQuestions(t *testing.T) {
	var captured chatRequest
	server := newChatServer(t, "1. 第一个问题？\n2. 第二个问题？\n\n3. 第三个问题？", &captured)
	defer server.Close()

	questions, err := clientFor(server).FollowUpQuestions(context.Background(), "正文", "总结", "")
	if err != nil {
		t.Fatalf("FollowUpQuestions failed: %v", err)
	}
	want := []string{"第一个问题？", "第二个问题？", "第三个问题？"}
	if !reflect.DeepEqual(questions, want) {
		t.Fatalf("questions = %#v, want %#v", questions, want)
	}
	if captured.Temperature != 0.8 {
		t.Errorf("temperature = %v, want 0.8", captured.Temperature)
	}
	if captured.MaxTokens != 200 {
		t.Errorf("max_tokens = %d, want 200", captured.MaxTokens)
	}
	if captured.Messages[1].Content != "文章内容：正文\n\n总结：总结" {
		t.Errorf("user message = %q", captured.Messages[1].Content)
	}
}

func TestSplitQuestions(t *testing.T) {
	got := splitQuestions("1. one\n2) two\n  \n three ")
	want := []string{"one", ") two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitQuestions = %#v, want %#v", got, want)
	}
}
