package retrieval

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/smartbot/ai/mock"
	"github.com/poiesic/smartbot/core"
	"github.com/poiesic/smartbot/corpus"
)

func trainModel(t *testing.T, entries []core.QAEntry, embedder *mock.MockEmbedder) *corpus.Model {
	t.Helper()
	var trainer *corpus.Trainer
	var err error
	if embedder != nil {
		trainer, err = corpus.NewTrainer(embedder)
	} else {
		trainer, err = corpus.NewTrainer(nil)
	}
	require.NoError(t, err)
	model, err := trainer.Train(context.Background(), entries)
	require.NoError(t, err)
	return model
}

func lexicalEntries() []core.QAEntry {
	return []core.QAEntry{
		{Question: "price of course x", Answer: "$500"},
		{Question: "how do i track my order", Answer: "Use the tracking link."},
		{Question: "what is the return policy", Answer: "30 days."},
	}
}

func TestAnswerGreeting(t *testing.T) {
	engine, err := NewEngine(nil, nil)
	require.NoError(t, err)

	result := engine.Answer(context.Background(), "Hello!", nil)
	assert.Equal(t, "Hello! How can I assist you?", result.Answer)
	assert.Equal(t, core.TierGreeting, result.Tier)

	result = engine.Answer(context.Background(), "GOOD MORNING", nil)
	assert.Equal(t, "Good morning! How's your day going?", result.Answer)
}

func TestAnswerWithoutModel(t *testing.T) {
	engine, err := NewEngine(nil, nil)
	require.NoError(t, err)

	result := engine.Answer(context.Background(), "what is the return policy", nil)
	assert.Equal(t, ModelUnavailableReply, result.Answer)
	assert.Equal(t, core.TierNoMatch, result.Tier)
}

func TestAnswerExactMatch(t *testing.T) {
	model := trainModel(t, lexicalEntries(), nil)
	engine, err := NewEngine(model, nil)
	require.NoError(t, err)

	// Exact match beats keyword scoring even when other questions share
	// tokens. Input normalization applies first.
	result := engine.Answer(context.Background(), "Return Policy?", nil)
	if result.Tier == core.TierExact {
		t.Fatal("two-token input cannot exactly match a four-token question")
	}

	model = trainModel(t, []core.QAEntry{
		{Question: "return policy", Answer: "30 days."},
		{Question: "policy details", Answer: "See the policy page."},
	}, nil)
	engine, err = NewEngine(model, nil)
	require.NoError(t, err)

	result = engine.Answer(context.Background(), "Return Policy?", nil)
	assert.Equal(t, "30 days.", result.Answer)
	assert.Equal(t, core.TierExact, result.Tier)
	assert.Equal(t, 1.0, result.Score)
}

func TestAnswerKeywordOverlap(t *testing.T) {
	model := trainModel(t, lexicalEntries(), nil)
	engine, err := NewEngine(model, nil, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	// "track order" overlaps only the tracking question, with two tokens.
	result := engine.Answer(context.Background(), "track order", nil)
	assert.Equal(t, "Use the tracking link.", result.Answer)
	assert.Equal(t, core.TierKeyword, result.Tier)
	assert.Equal(t, 2.0, result.Score)
}

func TestAnswerKeywordTieBreaking(t *testing.T) {
	entries := []core.QAEntry{
		{Question: "course refund policy", Answer: "refund answer"},
		{Question: "course upgrade policy", Answer: "upgrade answer"},
	}
	model := trainModel(t, entries, nil)
	engine, err := NewEngine(model, nil, WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)

	// Both questions overlap {course, policy} equally; the pick must always
	// come from the tie set and both members must show up over enough draws.
	seen := map[string]int{}
	for i := 0; i < 100; i++ {
		result := engine.Answer(context.Background(), "course policy", nil)
		require.Equal(t, core.TierKeyword, result.Tier)
		require.Contains(t, []string{"refund answer", "upgrade answer"}, result.Answer)
		seen[result.Answer]++
	}
	assert.Len(t, seen, 2)
}

func TestAnswerConcurrentTieBreaking(t *testing.T) {
	entries := []core.QAEntry{
		{Question: "course refund policy", Answer: "refund answer"},
		{Question: "course upgrade policy", Answer: "upgrade answer"},
	}
	model := trainModel(t, entries, nil)
	engine, err := NewEngine(model, nil, WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)

	// One engine serves every session, so simultaneous turns may draw from
	// the tie-break RNG at the same time.
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				result := engine.Answer(context.Background(), "course policy", nil)
				if result.Tier != core.TierKeyword {
					t.Errorf("unexpected tier %v", result.Tier)
					return
				}
				if result.Answer != "refund answer" && result.Answer != "upgrade answer" {
					t.Errorf("pick outside the tie set: %q", result.Answer)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestAnswerShortNoOverlap(t *testing.T) {
	model := trainModel(t, lexicalEntries(), nil)
	engine, err := NewEngine(model, nil)
	require.NoError(t, err)

	result := engine.Answer(context.Background(), "zebra", nil)
	assert.Equal(t, NoMatchReply, result.Answer)
	assert.Equal(t, core.TierNoMatch, result.Tier)
}

func TestAnswerLexical(t *testing.T) {
	model := trainModel(t, lexicalEntries(), nil)
	engine, err := NewEngine(model, nil)
	require.NoError(t, err)

	result := engine.Answer(context.Background(), "what is the price of course x", nil)
	assert.Equal(t, "$500", result.Answer)
	assert.Equal(t, core.TierLexical, result.Tier)
	assert.Greater(t, result.Score, DefaultLexicalThreshold)
}

func TestAnswerLexicalThresholdInclusive(t *testing.T) {
	model := trainModel(t, lexicalEntries(), nil)

	// Measure the actual best cosine for the query, then pin the threshold
	// exactly on it: the bound is inclusive, so the match must stand.
	query := "what is the price of course x"
	sims := model.LexicalSimilarities(core.Normalize(query))
	best := 0.0
	for _, s := range sims {
		if s > best {
			best = s
		}
	}
	require.Greater(t, best, 0.0)

	engine, err := NewEngine(model, nil, WithLexicalThreshold(best))
	require.NoError(t, err)
	result := engine.Answer(context.Background(), query, nil)
	assert.Equal(t, core.TierLexical, result.Tier)
	assert.Equal(t, "$500", result.Answer)

	// A threshold one ulp above the best score must reject the match.
	engine, err = NewEngine(model, nil, WithLexicalThreshold(math.Nextafter(best, 1)))
	require.NoError(t, err)
	result = engine.Answer(context.Background(), query, nil)
	assert.Equal(t, core.TierNoMatch, result.Tier)
	assert.Equal(t, NoMatchReply, result.Answer)
}

// basisEmbedder trains question embeddings onto unit basis vectors so tests
// can dial in exact gate and fallback similarities.
func basisEmbedder(dim int) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	next := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vec := make([]float32, dim)
			vec[next%dim] = 1
			next++
			vectors[i] = vec
		}
		return vectors, nil
	}
	return embedder
}

func basisVector(dim, idx int) []float32 {
	vec := make([]float32, dim)
	vec[idx] = 1
	return vec
}

func TestAnswerLexicalGate(t *testing.T) {
	// Two lexically identical questions tie at the best cosine; the gate
	// decides which survives via embedding similarity.
	entries := []core.QAEntry{
		{Question: "course price details information please", Answer: "first answer"},
		{Question: "course price details information please", Answer: "second answer"},
	}
	model := trainModel(t, entries, basisEmbedder(3))

	t.Run("gate keeps the semantically close candidate", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return basisVector(3, 0), nil
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "course price details information please", nil)
		assert.Equal(t, core.TierLexical, result.Tier)
		assert.Equal(t, "first answer", result.Answer)
	})

	t.Run("gate rejecting every tie falls through to generation", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return basisVector(3, 2), nil
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "course price details information please", nil)
		assert.Equal(t, core.TierGenerative, result.Tier)
	})

	t.Run("raised gate narrows the tie set", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			// Cosine 3/5 against the first question, 4/5 against the
			// second: both pass the default gate, only one passes 0.8.
			return []float32{3, 4, 0}, nil
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider, WithSemanticGate(0.8))
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "course price details information please", nil)
		assert.Equal(t, core.TierLexical, result.Tier)
		assert.Equal(t, "second answer", result.Answer)
	})

	t.Run("embedder failure degrades gate to keyword overlap", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider, WithRand(rand.New(rand.NewSource(7))))
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "course price details information please", nil)
		assert.Equal(t, core.TierLexical, result.Tier)
		assert.Contains(t, []string{"first answer", "second answer"}, result.Answer)
	})
}

func TestAnswerSemanticFallback(t *testing.T) {
	entries := []core.QAEntry{
		{Question: "price of premium plan", Answer: "$99 per month"},
		{Question: "how do i delete my account", Answer: "Use account settings."},
	}
	model := trainModel(t, entries, basisEmbedder(3))

	t.Run("similarity above threshold answers from the corpus", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return basisVector(3, 0), nil
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		// All tokens out of vocabulary, so the lexical tier scores zero.
		result := engine.Answer(context.Background(), "tell me what your subscription charges are", nil)
		assert.Equal(t, core.TierSemantic, result.Tier)
		assert.Equal(t, "$99 per month", result.Answer)
		assert.Equal(t, 1.0, result.Score)
	})

	t.Run("threshold is strict", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			// Cosine against question 0 is exactly 3/5 = 0.6, the threshold.
			return []float32{3, 0, 4}, nil
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "tell me what your subscription charges are", nil)
		assert.Equal(t, core.TierGenerative, result.Tier)
	})

	t.Run("cost alias rewrites before embedding", func(t *testing.T) {
		var embedded string
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			embedded = text
			return basisVector(3, 0), nil
		}
		provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "tell me your subscription cost please also", nil)
		assert.Equal(t, core.TierSemantic, result.Tier)
		assert.Equal(t, "tell me your subscription price please also", embedded)
	})
}

func TestAnswerGenerative(t *testing.T) {
	// No embeddings in the model, so misses go straight to generation.
	model := trainModel(t, lexicalEntries(), nil)

	t.Run("prompt carries last five history lines", func(t *testing.T) {
		var prompt string
		generator := mock.NewMockGenerator()
		generator.CompleteFunc = func(ctx context.Context, system, p string) (string, error) {
			prompt = p
			return "Generated answer.", nil
		}
		provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), generator)

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		history := []core.Message{
			{Sender: core.SenderUser, Text: "one"},
			{Sender: core.SenderBot, Text: "two"},
			{Sender: core.SenderUser, Text: "three"},
			{Sender: core.SenderBot, Text: "four"},
			{Sender: core.SenderUser, Text: "five"},
			{Sender: core.SenderBot, Text: "six"},
		}
		result := engine.Answer(context.Background(), "something entirely off topic here", history)
		assert.Equal(t, core.TierGenerative, result.Tier)
		assert.Equal(t, "Generated answer.", result.Answer)

		assert.NotContains(t, prompt, "one")
		for _, line := range []string{"two", "three", "four", "five", "six"} {
			assert.Contains(t, prompt, line)
		}
		assert.Contains(t, prompt, "something entirely off topic here")
	})

	t.Run("response is deduplicated", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
			return "We ship worldwide. We ship worldwide. Delivery takes a week.", nil
		}
		provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), generator)

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "random words nobody trained on today", nil)
		assert.Equal(t, "We ship worldwide. Delivery takes a week.", result.Answer)
	})

	t.Run("known keyword appends a reference link", func(t *testing.T) {
		provider := mock.NewMockProvider()
		engine, err := NewEngine(model, provider,
			WithLinks(map[string]string{"refund": "https://example.com/refunds"}))
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "could somebody explain refund process please", nil)
		assert.Equal(t, core.TierGenerative, result.Tier)
		assert.True(t, strings.HasSuffix(result.Answer, "For more details, see https://example.com/refunds"))
	})

	t.Run("generator failure yields an error reply", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
			return "", errors.New("backend unavailable")
		}
		provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), generator)

		engine, err := NewEngine(model, provider)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "random words nobody trained on today", nil)
		assert.Equal(t, core.TierNoMatch, result.Tier)
		assert.Equal(t, "Error: backend unavailable", result.Answer)
	})

	t.Run("no generator yields the canonical reply", func(t *testing.T) {
		engine, err := NewEngine(model, nil)
		require.NoError(t, err)

		result := engine.Answer(context.Background(), "random words nobody trained on today", nil)
		assert.Equal(t, core.TierNoMatch, result.Tier)
		assert.Equal(t, NoMatchReply, result.Answer)
	})
}

func TestEngineOptionValidation(t *testing.T) {
	_, err := NewEngine(nil, nil, WithLogger(nil))
	assert.Error(t, err)

	_, err = NewEngine(nil, nil, WithRand(nil))
	assert.Error(t, err)

	_, err = NewEngine(nil, nil, WithLexicalThreshold(1.5))
	assert.Error(t, err)

	_, err = NewEngine(nil, nil, WithSemanticThreshold(-0.1))
	assert.Error(t, err)

	_, err = NewEngine(nil, nil, WithSemanticGate(1.5))
	assert.Error(t, err)
}
