package subject

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LLMNormalizer канонизация через chat-completions API (Groq и совместимые).
// Любая ошибка сети или невразумительный ответ - молчаливый откат на
// словарную стратегию, заявка не должна падать из-за внешнего сервиса.
type LLMNormalizer struct {
	client   *http.Client
	apiKey   string
	model    string
	baseURL  string
	fallback Normalizer
	logger   *zap.Logger
}

func NewLLMNormalizer(apiKey, model, baseURL string, fallback Normalizer, logger *zap.Logger) *LLMNormalizer {
	return &LLMNormalizer{
		client:   &http.Client{Timeout: 10 * time.Second},
		apiKey:   apiKey,
		model:    model,
		baseURL:  strings.TrimRight(baseURL, "/"),
		fallback: fallback,
		logger:   logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
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

func (n *LLMNormalizer) Normalize(ctx context.Context, raw string) (string, error) {
	canonical, err := n.ask(ctx, raw)
	if err != nil {
		n.logger.Warn("LLM normalization failed, falling back to rules",
			zap.String("raw", raw),
			zap.Error(err),
		)
		return n.fallback.Normalize(ctx, raw)
	}
	return canonical, nil
}

func (n *LLMNormalizer) ask(ctx context.Context, raw string) (string, error) {
	prompt := fmt.Sprintf(
		"Map the topic %q to exactly one broad subject from this list: %s. "+
			"Answer with the single subject word only.",
		raw, strings.Join(Canonical, ", "),
	)

	body, err := json.Marshal(chatRequest{
		Model: n.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call llm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm response")
	}

	answer := strings.ToLower(strings.TrimSpace(parsed.Choices[0].Message.Content))
	if !IsKnown(answer) {
		return "", fmt.Errorf("llm returned unknown subject %q", answer)
	}
	return answer, nil
}
