// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/smartbot/ai"
	"github.com/poiesic/smartbot/core"
)

const (
	// NoMatchReply is returned when no retrieval tier can answer and no
	// generator is available.
	NoMatchReply = "Sorry, I can't understand your query!! Can you rephrase it?"

	// ModelUnavailableReply is returned when no trained model is loaded.
	ModelUnavailableReply = "Error: Model not found. Train the model first."

	// DefaultLexicalThreshold is the minimum best TF-IDF cosine for the
	// lexical tier to claim a match. The bound is inclusive: a best score
	// of exactly the threshold matches.
	DefaultLexicalThreshold = 0.3

	// DefaultSemanticGate is the minimum embedding cosine a lexically tied
	// candidate must reach to survive the gate.
	DefaultSemanticGate = 0.3

	// DefaultSemanticThreshold is the bound for the semantic fallback tier.
	// Strict: the best similarity must exceed it.
	DefaultSemanticThreshold = 0.6

	// shortInputTokenLimit separates the keyword path from the TF-IDF path.
	shortInputTokenLimit = 3

	// historyWindow is how many recent history lines the generative prompt
	// carries.
	historyWindow = 5

	generatorInstruction = "You are a conversational chatbot. Answer the current question using the conversation history."
)

// Model is the read surface the engine needs from a trained corpus model.
// *corpus.Model satisfies it.
type Model interface {
	Len() int
	Question(i int) string
	Answer(i int) string
	HasEmbeddings() bool
	LexicalSimilarities(normalized string) []float64
	SemanticSimilarities(embedding []float32) ([]float64, bool)
}

// Engine answers a single query by running it through the retrieval tiers.
// The model is read-only and the tie-break RNG is guarded by a mutex, so one
// Engine is safe for concurrent use across sessions.
type Engine struct {
	model             Model
	embedder          ai.Embedder
	generator         ai.Generator
	rngMu             sync.Mutex
	rng               *rand.Rand
	lexicalThreshold  float64
	semanticGate      float64
	semanticThreshold float64
	links             map[string]string
	linkKeywords      []string // sorted for deterministic lookup
	logger            *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the logger used by the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// WithRand sets the RNG used for tie-breaking. Inject a seeded source for
// reproducible tie picks.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) error {
		if rng == nil {
			return fmt.Errorf("rng cannot be nil")
		}
		e.rng = rng
		return nil
	}
}

// WithLexicalThreshold overrides the lexical tier threshold.
func WithLexicalThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("lexical threshold must be in [0, 1], got %v", threshold)
		}
		e.lexicalThreshold = threshold
		return nil
	}
}

// WithSemanticGate overrides the embedding-similarity bound a lexically
// tied candidate must reach to survive the gate.
func WithSemanticGate(gate float64) Option {
	return func(e *Engine) error {
		if gate < 0 || gate > 1 {
			return fmt.Errorf("semantic gate must be in [0, 1], got %v", gate)
		}
		e.semanticGate = gate
		return nil
	}
}

// WithSemanticThreshold overrides the semantic fallback threshold.
func WithSemanticThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("semantic threshold must be in [0, 1], got %v", threshold)
		}
		e.semanticThreshold = threshold
		return nil
	}
}

// WithLinks sets the keyword-to-URL table consulted by the generative tier.
func WithLinks(links map[string]string) Option {
	return func(e *Engine) error {
		e.links = links
		return nil
	}
}

// NewEngine creates an Engine over a trained model. A nil model is allowed
// and degrades every answer to ModelUnavailableReply. A nil provider
// disables the semantic and generative tiers.
func NewEngine(model Model, provider ai.Provider, opts ...Option) (*Engine, error) {
	e := &Engine{
		model:             model,
		rng:               rand.New(rand.NewSource(rand.Int63())),
		lexicalThreshold:  DefaultLexicalThreshold,
		semanticGate:      DefaultSemanticGate,
		semanticThreshold: DefaultSemanticThreshold,
		logger:            slog.Default(),
	}

	if provider != nil {
		e.embedder = provider.Embedder()
		e.generator = provider.Generator()
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.linkKeywords = make([]string, 0, len(e.links))
	for keyword := range e.links {
		e.linkKeywords = append(e.linkKeywords, keyword)
	}
	sort.Strings(e.linkKeywords)

	e.logger = e.logger.With("component", "retrieval")
	return e, nil
}

// Answer resolves a single query. It never fails: every degradation path
// ends in some textual reply, tagged with the tier that produced it.
func (e *Engine) Answer(ctx context.Context, input string, history []core.Message) core.MatchResult {
	normalized := core.Normalize(input)

	if reply, ok := GreetingReply(normalized); ok {
		return core.MatchResult{Answer: reply, Tier: core.TierGreeting}
	}

	if e.model == nil {
		return core.MatchResult{Answer: ModelUnavailableReply, Tier: core.TierNoMatch}
	}

	tokens := core.Tokens(normalized)
	if len(tokens) == 0 {
		return e.fallback(ctx, input, normalized, history)
	}

	if len(tokens) <= shortInputTokenLimit {
		return e.answerShort(normalized, tokens)
	}
	return e.answerLong(ctx, input, normalized, tokens, history)
}

// answerShort handles inputs of up to three tokens: exact question match
// first, then keyword-overlap scoring with a uniform random pick among ties.
func (e *Engine) answerShort(normalized string, tokens []string) core.MatchResult {
	for i := 0; i < e.model.Len(); i++ {
		if e.model.Question(i) == normalized {
			return core.MatchResult{Answer: e.model.Answer(i), Tier: core.TierExact, Score: 1.0}
		}
	}

	inputSet := tokenSet(tokens)
	bestScore := 0
	var ties []int
	for i := 0; i < e.model.Len(); i++ {
		score := overlap(inputSet, tokenSet(core.Tokens(e.model.Question(i))))
		if score == 0 {
			continue
		}
		switch {
		case score > bestScore:
			bestScore = score
			ties = append(ties[:0], i)
		case score == bestScore:
			ties = append(ties, i)
		}
	}

	if len(ties) == 0 {
		return core.MatchResult{Answer: NoMatchReply, Tier: core.TierNoMatch}
	}

	pick := e.pickIndex(ties)
	e.logger.Debug("keyword match", "overlap", bestScore, "ties", len(ties))
	return core.MatchResult{Answer: e.model.Answer(pick), Tier: core.TierKeyword, Score: float64(bestScore)}
}

// answerLong handles inputs longer than three tokens with TF-IDF cosine
// similarity. All candidates tied at the best score pass through a gate
// requiring keyword overlap and embedding similarity; if nothing survives or
// the best score misses the threshold, the query falls through to the
// semantic and generative tiers.
func (e *Engine) answerLong(ctx context.Context, input, normalized string, tokens []string, history []core.Message) core.MatchResult {
	sims := e.model.LexicalSimilarities(normalized)

	best := 0.0
	for _, s := range sims {
		if s > best {
			best = s
		}
	}
	if best < e.lexicalThreshold {
		e.logger.Debug("lexical miss", "best", best)
		return e.fallback(ctx, input, normalized, history)
	}

	var ties []int
	for i, s := range sims {
		if s == best {
			ties = append(ties, i)
		}
	}

	inputSet := tokenSet(tokens)
	gateSims := e.gateSimilarities(ctx, normalized)

	var valid []int
	for _, idx := range ties {
		if overlap(inputSet, tokenSet(core.Tokens(e.model.Question(idx)))) == 0 {
			continue
		}
		if gateSims != nil && gateSims[idx] < e.semanticGate {
			continue
		}
		valid = append(valid, idx)
	}

	if len(valid) == 0 {
		e.logger.Debug("lexical ties rejected by gate", "ties", len(ties), "best", best)
		return e.fallback(ctx, input, normalized, history)
	}

	pick := e.pickIndex(valid)
	return core.MatchResult{Answer: e.model.Answer(pick), Tier: core.TierLexical, Score: best}
}

// pickIndex chooses uniformly among tied candidates. rand.Rand is not
// thread-safe and the engine is shared across sessions, so draws are
// serialized.
func (e *Engine) pickIndex(candidates []int) int {
	if len(candidates) == 1 {
		return candidates[0]
	}
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return candidates[e.rng.Intn(len(candidates))]
}

// gateSimilarities returns the embedding similarity of the input against
// every corpus question, or nil when the gate must degrade to keyword-only
// (no embedder, no corpus embeddings, or an embedding failure).
func (e *Engine) gateSimilarities(ctx context.Context, normalized string) []float64 {
	if e.embedder == nil || !e.model.HasEmbeddings() {
		return nil
	}
	embedding, err := e.embedder.EmbedText(ctx, normalized)
	if err != nil {
		e.logger.Warn("embedding input failed, gate degrades to keyword overlap", "err", err)
		return nil
	}
	sims, ok := e.model.SemanticSimilarities(embedding)
	if !ok {
		return nil
	}
	return sims
}

// fallback runs the semantic tier and, failing that, the generative tier.
func (e *Engine) fallback(ctx context.Context, input, normalized string, history []core.Message) core.MatchResult {
	if result, ok := e.answerSemantic(ctx, normalized); ok {
		return result
	}
	return e.answerGenerative(ctx, input, normalized, history)
}

// answerSemantic matches the input against corpus question embeddings. The
// first index reaching the maximum similarity wins, and only a similarity
// strictly above the threshold counts.
func (e *Engine) answerSemantic(ctx context.Context, normalized string) (core.MatchResult, bool) {
	if e.embedder == nil || !e.model.HasEmbeddings() {
		return core.MatchResult{}, false
	}

	aliased := applyAliases(normalized)
	embedding, err := e.embedder.EmbedText(ctx, aliased)
	if err != nil {
		e.logger.Warn("embedding input failed, skipping semantic tier", "err", err)
		return core.MatchResult{}, false
	}

	sims, ok := e.model.SemanticSimilarities(embedding)
	if !ok || len(sims) == 0 {
		return core.MatchResult{}, false
	}

	bestIdx := 0
	for i, s := range sims {
		if s > sims[bestIdx] {
			bestIdx = i
		}
	}
	if sims[bestIdx] <= e.semanticThreshold {
		e.logger.Debug("semantic miss", "best", sims[bestIdx])
		return core.MatchResult{}, false
	}

	return core.MatchResult{
		Answer: e.model.Answer(bestIdx),
		Tier:   core.TierSemantic,
		Score:  sims[bestIdx],
	}, true
}

// answerGenerative asks the generator for a free-form reply built from the
// recent history and the current question, then strips near-duplicate
// sentences and appends a reference link when a known keyword appears.
func (e *Engine) answerGenerative(ctx context.Context, input, normalized string, history []core.Message) core.MatchResult {
	if e.generator == nil {
		return core.MatchResult{Answer: NoMatchReply, Tier: core.TierNoMatch}
	}

	response, err := e.generator.Complete(ctx, generatorInstruction, buildPrompt(input, history))
	if err != nil {
		e.logger.Error("generation failed", "err", err)
		return core.MatchResult{Answer: "Error: " + err.Error(), Tier: core.TierNoMatch}
	}

	response = removeRepetitions(response, defaultRepetitionThreshold)
	if response == "" {
		return core.MatchResult{Answer: NoMatchReply, Tier: core.TierNoMatch}
	}

	if link, ok := e.lookupLink(normalized); ok {
		response += "\nFor more details, see " + link
	}
	return core.MatchResult{Answer: response, Tier: core.TierGenerative}
}

// buildPrompt assembles the generative prompt from the last few history
// lines and the current question.
func buildPrompt(input string, history []core.Message) string {
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}

	var sb strings.Builder
	sb.WriteString("Conversation history:\n")
	if start == len(history) {
		sb.WriteString("No prior context.\n")
	}
	for _, msg := range history[start:] {
		sb.WriteString(msg.Text)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nCurrent question: ")
	sb.WriteString(input)
	return sb.String()
}

// lookupLink returns the reference URL of the first configured keyword
// contained in the normalized input.
func (e *Engine) lookupLink(normalized string) (string, bool) {
	padded := " " + normalized + " "
	for _, keyword := range e.linkKeywords {
		if strings.Contains(padded, " "+keyword+" ") {
			return e.links[keyword], true
		}
	}
	return "", false
}

// applyAliases rewrites known keyword variants to their canonical corpus
// form before semantic lookup.
func applyAliases(normalized string) string {
	tokens := core.Tokens(normalized)
	changed := false
	for i, tok := range tokens {
		if tok == "cost" {
			tokens[i] = "price"
			changed = true
		}
	}
	if !changed {
		return normalized
	}
	return strings.Join(tokens, " ")
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			count++
		}
	}
	return count
}
