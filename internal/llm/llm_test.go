package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/comigor/friendbot-go/internal/config"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/session"
)

type mockLLM struct {
	got  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (m *mockLLM) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.got = r
	return m.resp, m.err
}

func answer(s string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s}},
	}}
}

func TestChat_BuildsConversation(t *testing.T) {
	m := &mockLLM{resp: answer("  Doing great!  ")}
	c := NewChat(m, "test-model", 0.7)

	out, err := c.Generate(context.Background(), session.PreferenceFemale, []Turn{
		{FromUser: true, Text: "hi"},
		{FromUser: false, Text: "hello!"},
	}, "how are you?")
	require.NoError(t, err)
	require.Equal(t, "Doing great!", out)

	require.Equal(t, "test-model", m.got.Model)
	require.InDelta(t, 0.7, m.got.Temperature, 0.0001)
	require.Len(t, m.got.Messages, 4)
	require.Equal(t, openai.ChatMessageRoleSystem, m.got.Messages[0].Role)
	require.Contains(t, m.got.Messages[0].Content, "named Emma")
	require.Equal(t, openai.ChatMessageRoleUser, m.got.Messages[1].Role)
	require.Equal(t, openai.ChatMessageRoleAssistant, m.got.Messages[2].Role)
	require.Equal(t, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "how are you?"}, m.got.Messages[3])
}

func TestChat_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewChat(&mockLLM{err: boom}, "m", 0).Generate(context.Background(), session.PreferenceNeutral, nil, "x")
	require.ErrorIs(t, err, boom)

	_, err = NewChat(&mockLLM{}, "m", 0).Generate(context.Background(), session.PreferenceNeutral, nil, "x")
	require.ErrorIs(t, err, ErrEmptyCompletion)

	_, err = NewChat(&mockLLM{resp: answer("   ")}, "m", 0).Generate(context.Background(), session.PreferenceNeutral, nil, "x")
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestSystemPrompt(t *testing.T) {
	require.Contains(t, SystemPrompt(session.PreferenceMale), "supportive male friend named Alex")
	require.Contains(t, SystemPrompt(session.PreferenceFemale), "supportive female friend named Emma")
	require.Contains(t, SystemPrompt(session.PreferenceNeutral), "supportive friend named Jordan")
}

func TestNewGenerator_NoKeyUsesPersona(t *testing.T) {
	logger.Discard()
	g := NewGenerator(config.LLMConfig{}, persona.New(func(int) int { return 0 }))
	_, ok := g.(Offline)
	require.True(t, ok)

	out, err := g.Generate(context.Background(), session.PreferenceMale, nil, "I feel sad today")
	require.NoError(t, err)
	require.Contains(t, out, "Alex")

	_, ok = NewGenerator(config.LLMConfig{APIKey: "k", BaseURL: "http://localhost"}, nil).(*Chat)
	require.True(t, ok)
}
