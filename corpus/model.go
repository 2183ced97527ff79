package corpus

import (
	"math"

	"github.com/poiesic/smartbot/core"
)

// Model is the trained retrieval artifact: normalized questions, their
// answers, the shared TF-IDF vector per question, and (optionally) a
// sentence embedding per question. A Model is immutable after construction
// and safe for concurrent reads.
type Model struct {
	questions          []string
	answers            []string
	vectorizer         *Vectorizer
	questionVectors    [][]float64
	questionEmbeddings [][]float32 // nil when trained without an embedder
}

// Len returns the number of corpus entries.
func (m *Model) Len() int { return len(m.questions) }

// Question returns the normalized question at index i.
func (m *Model) Question(i int) string { return m.questions[i] }

// Answer returns the stored answer at index i.
func (m *Model) Answer(i int) string { return m.answers[i] }

// Entry returns the QA pair at index i.
func (m *Model) Entry(i int) core.QAEntry {
	return core.QAEntry{Question: m.questions[i], Answer: m.answers[i]}
}

// HasEmbeddings reports whether question embeddings were trained.
func (m *Model) HasEmbeddings() bool { return len(m.questionEmbeddings) > 0 }

// QuestionEmbedding returns the sentence embedding for question i.
// Returns nil when the model was trained without an embedder.
func (m *Model) QuestionEmbedding(i int) []float32 {
	if !m.HasEmbeddings() {
		return nil
	}
	return m.questionEmbeddings[i]
}

// LexicalSimilarities projects normalized text into the TF-IDF space and
// returns its cosine similarity against every corpus question vector.
func (m *Model) LexicalSimilarities(normalized string) []float64 {
	vec := m.vectorizer.Transform(normalized)
	sims := make([]float64, len(m.questionVectors))
	for i, qv := range m.questionVectors {
		sims[i] = cosine64(vec, qv)
	}
	return sims
}

// SemanticSimilarities returns the cosine similarity of an input sentence
// embedding against every corpus question embedding. The second return is
// false when the model carries no embeddings.
func (m *Model) SemanticSimilarities(embedding []float32) ([]float64, bool) {
	if !m.HasEmbeddings() || len(embedding) == 0 {
		return nil, false
	}
	sims := make([]float64, len(m.questionEmbeddings))
	for i, qe := range m.questionEmbeddings {
		sims[i] = cosine32(embedding, qe)
	}
	return sims, true
}

func cosine64(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cosine32(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
