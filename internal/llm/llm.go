// Package llm abstracts the hosted and local language models behind a single
// chat capability so the rest of the engine never cares which vendor backs a
// call.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"sales-engine/pkg"
)

// Chat is the one text-in/text-out capability consumed by the classifier and
// the response engine. Implementations must honor ctx cancellation.
type Chat interface {
	Generate(ctx context.Context, system string, history []*schema.Message, userMessage string) (string, error)
}

// HostedConfig configures the hosted chat model.
type HostedConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// LocalConfig configures the local chat model. The timeout doubles as the
// availability bound: a local model that cannot answer quickly is treated as
// unavailable.
type LocalConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type chatModel struct {
	m model.BaseChatModel
}

// NewHosted builds the hosted chat capability on the eino openai backend.
func NewHosted(ctx context.Context, cfg HostedConfig) (Chat, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("creating hosted chat model: %w", err)
	}
	return &chatModel{m: m}, nil
}

// NewLocal builds the local chat capability on the eino ollama backend.
func NewLocal(ctx context.Context, cfg LocalConfig) (Chat, error) {
	m, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating local chat model: %w", err)
	}
	return &chatModel{m: m}, nil
}

func (c *chatModel) Generate(ctx context.Context, system string, history []*schema.Message, userMessage string) (string, error) {
	msgs := make([]*schema.Message, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, schema.UserMessage(userMessage))

	out, err := c.m.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Content), nil
}

// FromHistory converts stored conversation turns into eino schema messages,
// keeping only the most recent maxTurns.
func FromHistory(history []pkg.ConversationMessage, maxTurns int) []*schema.Message {
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	msgs := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case pkg.RoleAgent, "assistant":
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		}
	}
	return msgs
}
