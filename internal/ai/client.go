// Package ai talks to an OpenAI-compatible Chat Completions backend to
// generate summaries and follow-up questions. Service configuration and
// credentials are resolved per call; only the HTTP transport is shared.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sumbot/internal/apperr"
	"sumbot/internal/config"
)

const (
	summarySystemPrompt  = "你是一个专业的文章总结助手。请简洁明了地总结以下内容的要点："
	followUpSystemPrompt = "基于文章内容和总结，生成3个有见地的追问问题："

	defaultSummaryMaxTokens = 500
	followUpMaxTokens       = 200
)

// Client generates summaries and follow-up questions.
type Client struct {
	ai     *config.AIConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg *config.AIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		ai:     cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// chatRequest is a minimal representation of the Chat Completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize produces a summary of content. keyOverride, when non-empty,
// takes precedence over configured credentials for this call only.
// maxTokens bounds the response length; 0 uses the default of 500.
func (c *Client) Summarize(ctx context.Context, content, keyOverride string, maxTokens int) (string, error) {
	resolved, err := ResolveConfig(c.ai, keyOverride)
	if err != nil {
		return "", err
	}

	if maxTokens <= 0 {
		maxTokens = defaultSummaryMaxTokens
	}

	c.logger.Info("发送总结请求",
		"model", resolved.Model,
		"content_length", len(content),
		"api_base", resolved.APIBase,
	)

	out, err := c.complete(ctx, resolved, []chatMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: content},
	}, 0.7, maxTokens)
	if err != nil {
		return "", apperr.Wrap(apperr.KindSummaryFailed, err, "生成总结失败")
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", apperr.New(apperr.KindSummaryFailed, "生成总结失败: 模型返回空内容")
	}

	c.logger.Info("收到总结响应", "summary_length", len(out))
	return out, nil
}

// FollowUpQuestions asks for three insightful follow-up questions given
// the original content and its summary. The model may deviate from
// three; callers must not assume a fixed count.
func (c *Client) FollowUpQuestions(ctx context.Context, content, summary, keyOverride string) ([]string, error) {
	resolved, err := ResolveConfig(c.ai, keyOverride)
	if err != nil {
		return nil, err
	}

	out, err := c.complete(ctx, resolved, []chatMessage{
		{Role: "system", Content: followUpSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("文章内容：%s\n\n总结：%s", content, summary)},
	}, 0.8, followUpMaxTokens)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFollowUpFailed, err, "生成追问问题失败")
	}

	return splitQuestions(out), nil
}

// splitQuestions breaks a model response into one question per line,
// stripping leading list numbering and punctuation.
func splitQuestions(out string) []string {
	var questions []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(strings.Trim(line, "0123456789. \t"))
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}

func (c *Client) complete(ctx context.Context, resolved ResolvedConfig, messages []chatMessage, temperature float64, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       resolved.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(resolved.APIBase, "/") + "/chat/completions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+resolved.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion failed with status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
