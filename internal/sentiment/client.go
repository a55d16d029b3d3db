// Package sentiment labels reviews with one of three emotion values by
// asking a chat-completions endpoint and mapping its free-text answer onto
// the closed label set.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const completionsPath = "/v1/chat/completions"

// ErrEmptyResponse is returned when the API answers with no choices.
var ErrEmptyResponse = errors.New("completion response carried no choices")

const systemPrompt = "당신은 감정 분석 전문가입니다."

const promptTemplate = `아래 리뷰의 감정을 분석해주세요.
결과는 '긍정', '중립', '부정' 중 하나로만 답변해주세요.

리뷰 내용: %s`

// Client talks to an OpenAI-style chat-completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a Client.  baseURL is the API root without a trailing
// slash (override it to point at a proxy or a test server).
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Classify sends the review text to the completions endpoint and maps the
// answer onto the label set.  It returns "" (and no error) when the
// response names none of the labels; the caller leaves the review unset
// so a later run can retry.
func (c *Client) Classify(ctx context.Context, reviewText string) (string, error) {
	raw, err := c.complete(ctx, reviewText)
	if err != nil {
		return "", err
	}
	return MapLabel(raw), nil
}

// complete performs one chat-completion round trip and returns the
// assistant's raw text.
func (c *Client) complete(ctx context.Context, reviewText string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(promptTemplate, reviewText)},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parsing completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("completion API: %s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", fmt.Errorf("completion API: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
