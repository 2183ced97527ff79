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

package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/smartbot/ai"
	"github.com/poiesic/smartbot/core"
)

// Trainer builds a Model from QA entries: it fits the TF-IDF vocabulary,
// vectorizes every question, and (when an embedder is available) computes
// question embeddings in batches on a worker pool.
type Trainer struct {
	embedder  ai.Embedder
	poolSize  int
	batchSize int
	logger    *slog.Logger
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer) error

// WithPoolSize sets the number of concurrent embedding workers.
func WithPoolSize(size int) TrainerOption {
	return func(t *Trainer) error {
		if size < 1 {
			return fmt.Errorf("pool size must be at least 1, got %d", size)
		}
		t.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many questions are embedded per request.
func WithBatchSize(size int) TrainerOption {
	return func(t *Trainer) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		t.batchSize = size
		return nil
	}
}

// WithTrainerLogger sets the logger used during training.
func WithTrainerLogger(logger *slog.Logger) TrainerOption {
	return func(t *Trainer) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		t.logger = logger
		return nil
	}
}

// NewTrainer creates a Trainer. A nil embedder is allowed; the resulting
// models then carry TF-IDF vectors only and semantic lookup is disabled.
func NewTrainer(embedder ai.Embedder, opts ...TrainerOption) (*Trainer, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	t := &Trainer{
		embedder:  embedder,
		poolSize:  poolSize,
		batchSize: 32,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	t.logger = t.logger.With("component", "trainer")
	return t, nil
}

// Train fits a Model over the given entries. Questions are expected to be
// normalized already (LoadDataset does this).
func (t *Trainer) Train(ctx context.Context, entries []core.QAEntry) (*Model, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCorpus
	}

	questions := make([]string, len(entries))
	answers := make([]string, len(entries))
	for i, entry := range entries {
		questions[i] = entry.Question
		answers[i] = entry.Answer
	}

	vectorizer, err := FitVectorizer(questions)
	if err != nil {
		return nil, err
	}

	questionVectors := make([][]float64, len(questions))
	for i, question := range questions {
		questionVectors[i] = vectorizer.Transform(question)
	}

	model := &Model{
		questions:       questions,
		answers:         answers,
		vectorizer:      vectorizer,
		questionVectors: questionVectors,
	}

	t.logger.Info("vectorized corpus", "entries", len(questions), "vocabulary", vectorizer.Dimension())

	if t.embedder == nil {
		t.logger.Warn("no embedder configured, skipping question embeddings")
		return model, nil
	}

	embeddings, err := t.embedQuestions(ctx, questions)
	if err != nil {
		return nil, err
	}
	model.questionEmbeddings = embeddings

	return model, nil
}

// embedQuestions computes embeddings for all questions, batching requests
// across a worker pool. Any batch failure fails the whole training run.
func (t *Trainer) embedQuestions(ctx context.Context, questions []string) ([][]float32, error) {
	pool, err := ants.NewPool(t.poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating embedding pool: %w", err)
	}
	defer pool.Release()

	embeddings := make([][]float32, len(questions))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(questions); start += t.batchSize {
		end := start + t.batchSize
		if end > len(questions) {
			end = len(questions)
		}

		offset := start
		batch := questions[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			vectors, embedErr := t.embedder.EmbedTexts(ctx, batch)
			if embedErr != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embedding batch at offset %d: %w", offset, embedErr)
				}
				mu.Unlock()
				return
			}
			if len(vectors) != len(batch) {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("embedding batch at offset %d: got %d vectors for %d texts",
						offset, len(vectors), len(batch))
				}
				mu.Unlock()
				return
			}

			for i, vector := range vectors {
				embeddings[offset+i] = vector
			}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submitting embedding batch: %w", submitErr)
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	t.logger.Info("embedded corpus questions", "entries", len(questions), "batch_size", t.batchSize)
	return embeddings, nil
}
