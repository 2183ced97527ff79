package smartbot

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/smartbot/ai/mock"
	"github.com/poiesic/smartbot/core"
	"github.com/poiesic/smartbot/corpus"
	"github.com/poiesic/smartbot/retrieval"
	"github.com/poiesic/smartbot/validation"
)

func trainArtifact(t *testing.T) string {
	t.Helper()
	trainer, err := corpus.NewTrainer(nil)
	require.NoError(t, err)

	model, err := trainer.Train(context.Background(), []core.QAEntry{
		{Question: "price of course x", Answer: "$500"},
		{Question: "what is the return policy", Answer: "30 days."},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, corpus.SaveModel(path, model))
	return path
}

func stubMX(validOptions ...validation.Option) []validation.Option {
	resolver := func(ctx context.Context, domain string) ([]*net.MX, error) {
		return []*net.MX{{Host: "mx." + domain, Pref: 10}}, nil
	}
	return append([]validation.Option{validation.WithMXResolver(resolver)}, validOptions...)
}

func newTestAssistant(t *testing.T, opts ...AssistantOption) *Assistant {
	t.Helper()
	defaults := []AssistantOption{
		WithInMemoryStorage(),
		WithProvider(mock.NewMockProvider()),
		WithValidatorOptions(stubMX()...),
	}
	assistant, err := NewAssistant("", append(defaults, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assistant.Close()
	})
	return assistant
}

func TestAssistantEndToEnd(t *testing.T) {
	assistant := newTestAssistant(t, WithModelPath(trainArtifact(t)))
	require.True(t, assistant.HasModel())
	ctx := context.Background()

	steps := []struct {
		input string
		reply string
	}{
		{"hi there", "Hello! What is your name?"},
		{"Asha", "Nice to meet you, Asha! Please enter your email."},
		{"asha@example.com", "Thanks! Now, enter your phone number."},
		{"9876543210", "Now, you can ask your queries..."},
		{"what is the price of course x", "$500"},
	}
	for _, step := range steps {
		turn, err := assistant.HandleTurn(ctx, "sess-1", step.input)
		require.NoError(t, err)
		assert.Equal(t, step.reply, turn.Reply)
	}

	list, err := assistant.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name)
	assert.Equal(t, "what is the price of course x", list[0].Query)

	turn, err := assistant.HandleTurn(ctx, "sess-1", "bye")
	require.NoError(t, err)
	assert.Equal(t, "Goodbye!", turn.Reply)
	assert.True(t, turn.Terminated)
}

func TestAssistantWithoutModel(t *testing.T) {
	assistant := newTestAssistant(t)
	require.False(t, assistant.HasModel())
	ctx := context.Background()

	for _, input := range []string{"go", "Asha", "asha@example.com", "9876543210"} {
		_, err := assistant.HandleTurn(ctx, "sess-1", input)
		require.NoError(t, err)
	}

	turn, err := assistant.HandleTurn(ctx, "sess-1", "what is the price of course x")
	require.NoError(t, err)
	assert.Equal(t, retrieval.ModelUnavailableReply, turn.Reply)
}

func TestAssistantMissingArtifactDegrades(t *testing.T) {
	assistant := newTestAssistant(t,
		WithModelPath(filepath.Join(t.TempDir(), "missing.bin")))
	assert.False(t, assistant.HasModel())
}

func TestAssistantInvalidContactRetries(t *testing.T) {
	assistant := newTestAssistant(t, WithModelPath(trainArtifact(t)))
	ctx := context.Background()

	_, err := assistant.HandleTurn(ctx, "sess-1", "start")
	require.NoError(t, err)
	_, err = assistant.HandleTurn(ctx, "sess-1", "Ravi")
	require.NoError(t, err)

	turn, err := assistant.HandleTurn(ctx, "sess-1", "not an email")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid email address.", turn.Reply)

	turn, err = assistant.HandleTurn(ctx, "sess-1", "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Thanks! Now, enter your phone number.", turn.Reply)

	turn, err = assistant.HandleTurn(ctx, "sess-1", "12345")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid phone number.", turn.Reply)
}
