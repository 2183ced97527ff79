package corpus

import (
	"math"
	"sort"
	"strings"
)

// Vectorizer projects normalized text into a TF-IDF vector space with a
// vocabulary fixed at fit time. Terms absent from the vocabulary contribute
// zero weight, so out-of-vocabulary queries degrade gracefully instead of
// erroring.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string // vocabulary in index order
	idf        []float64
}

// FitVectorizer builds the vocabulary and smoothed IDF values from the
// provided documents. Documents are expected to be normalized already.
func FitVectorizer(docs []string) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	// Document frequencies
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range strings.Fields(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable ordering for vocabulary indices
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		vocabulary[term] = i
		// Smoothed IDF
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	return &Vectorizer{
		vocabulary: vocabulary,
		terms:      terms,
		idf:        idf,
	}, nil
}

// newVectorizer rebuilds a Vectorizer from artifact data.
func newVectorizer(terms []string, idf []float64) *Vectorizer {
	vocabulary := make(map[string]int, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
	}
	return &Vectorizer{
		vocabulary: vocabulary,
		terms:      terms,
		idf:        idf,
	}
}

// Dimension returns the dimensionality of produced vectors.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Transform computes the L2-normalized TF-IDF vector for normalized text.
// Out-of-vocabulary tokens contribute nothing; text with no in-vocabulary
// tokens yields the zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))

	tf := make(map[int]int)
	for _, tok := range strings.Fields(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return vec
	}

	for idx, count := range tf {
		vec[idx] = float64(count) * v.idf[idx]
	}

	// L2 normalize
	norm := 0.0
	for _, val := range vec {
		norm += val * val
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
