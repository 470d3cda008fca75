package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/friendbot-go/internal/config"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/session"
)

// ErrEmptyCompletion is returned when the model answers without content.
var ErrEmptyCompletion = errors.New("llm returned no content")

// Turn is one earlier message given to the model as context.
type Turn struct {
	FromUser bool
	Text     string
}

// Generator produces the friend's reply to input.
type Generator interface {
	Generate(ctx context.Context, p session.Preference, history []Turn, input string) (string, error)
}

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return openai.NewClientWithConfig(config)
}

// NewGenerator returns a model-backed generator, or the keyword persona when no API key
// is configured.
func NewGenerator(cfg config.LLMConfig, responder *persona.Responder) Generator {
	if cfg.APIKey == "" {
		logger.L.Warn("no LLM API key configured; replies come from the offline persona")
		return Offline{Responder: responder}
	}
	return &Chat{client: NewClient(cfg), model: cfg.Model, temperature: cfg.Temperature}
}

const promptTemplate = `You are a supportive %sfriend named %s who is having a conversation with a human.
You are empathetic, understanding, and offer genuine advice when asked.
Your tone is friendly, casual, and sometimes humorous, like a real %sfriend would be.
You should respond in a way that feels natural and authentic, not robotic or overly formal.`

// SystemPrompt describes the persona selected by p.
func SystemPrompt(p session.Preference) string {
	var adj string
	switch p {
	case session.PreferenceMale:
		adj = "male "
	case session.PreferenceFemale:
		adj = "female "
	}
	return fmt.Sprintf(promptTemplate, adj, persona.Name(p), adj)
}

// Chat generates replies with a chat completion model.
type Chat struct {
	client      Client
	model       string
	temperature float32
}

// NewChat wraps an existing client.
func NewChat(client Client, model string, temperature float32) *Chat {
	return &Chat{client: client, model: model, temperature: temperature}
}

func (c *Chat) Generate(ctx context.Context, p session.Preference, history []Turn, input string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(p)})
	for _, t := range history {
		role := openai.ChatMessageRoleAssistant
		if t.FromUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		logger.L.Error("LLM call failed", "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

// Offline answers with the keyword persona and ignores history.
type Offline struct {
	Responder *persona.Responder
}

func (o Offline) Generate(_ context.Context, p session.Preference, _ []Turn, input string) (string, error) {
	r := o.Responder
	if r == nil {
		r = persona.New(nil)
	}
	return r.Respond(p, input), nil
}
