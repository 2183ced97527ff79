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

// Package smartbot wires the trained corpus model, the AI provider, the
// retrieval engine and the conversation state machine behind a single
// Assistant facade.
package smartbot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/smartbot/ai"
	"github.com/poiesic/smartbot/ai/openai"
	"github.com/poiesic/smartbot/conversation"
	"github.com/poiesic/smartbot/core"
	"github.com/poiesic/smartbot/corpus"
	"github.com/poiesic/smartbot/retrieval"
	"github.com/poiesic/smartbot/storage"
	"github.com/poiesic/smartbot/storage/badger"
	"github.com/poiesic/smartbot/validation"
)

// Assistant is the top-level entry point: one instance owns the storage
// backend, the AI provider and the conversation machinery.
type Assistant struct {
	backend     *badger.Backend
	sessions    storage.SessionRepository
	submissions storage.SubmissionRepository
	provider    ai.Provider
	model       *corpus.Model
	machine     *conversation.Machine
	logger      *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	modelPath     string
	links         map[string]string
	inMemory      bool
	engineOpts    []retrieval.Option
	validatorOpts []validation.Option
}

// WithAIConfig sets the AI backend configuration used to build the default
// provider.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a ready-made AI provider instead of building one
// from the config. Tests use this with the mock provider.
func WithProvider(provider ai.Provider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithModelPath sets where the trained model artifact is loaded from. A
// missing artifact degrades the assistant instead of failing construction.
func WithModelPath(path string) AssistantOption {
	return func(o *assistantOptions) {
		o.modelPath = path
	}
}

// WithLinks sets the keyword-to-URL reference table.
func WithLinks(links map[string]string) AssistantOption {
	return func(o *assistantOptions) {
		o.links = links
	}
}

// WithInMemoryStorage keeps all state in memory; nothing survives Close.
func WithInMemoryStorage() AssistantOption {
	return func(o *assistantOptions) {
		o.inMemory = true
	}
}

// WithEngineOptions forwards options to the retrieval engine.
func WithEngineOptions(opts ...retrieval.Option) AssistantOption {
	return func(o *assistantOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithValidatorOptions forwards options to the contact validator.
func WithValidatorOptions(opts ...validation.Option) AssistantOption {
	return func(o *assistantOptions) {
		o.validatorOpts = append(o.validatorOpts, opts...)
	}
}

// NewAssistant opens storage at filePath and assembles the full pipeline.
// When no model artifact is found the assistant still starts and answers
// every query with a model-unavailable reply.
func NewAssistant(filePath string, opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "assistant")

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	sessions, err := badger.NewSessionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	submissions, err := badger.NewSubmissionRepository(backend)
	if err != nil {
		sessions.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			submissions.Close()
			sessions.Close()
			backend.Close()
			return nil, err
		}
	}

	var model *corpus.Model
	if options.modelPath != "" {
		model, err = corpus.LoadModel(options.modelPath)
		if err != nil {
			if !errors.Is(err, corpus.ErrModelNotFound) {
				provider.Close()
				submissions.Close()
				sessions.Close()
				backend.Close()
				return nil, err
			}
			logger.Warn("model artifact not found, starting degraded", "path", options.modelPath)
			model = nil
		}
	} else {
		logger.Warn("no model path configured, starting degraded")
	}

	engineOpts := options.engineOpts
	if len(options.links) > 0 {
		engineOpts = append([]retrieval.Option{retrieval.WithLinks(options.links)}, engineOpts...)
	}

	var engineModel retrieval.Model
	if model != nil {
		engineModel = model
	}
	engine, err := retrieval.NewEngine(engineModel, provider, engineOpts...)
	if err != nil {
		provider.Close()
		submissions.Close()
		sessions.Close()
		backend.Close()
		return nil, err
	}

	validator, err := validation.NewValidator(options.validatorOpts...)
	if err != nil {
		provider.Close()
		submissions.Close()
		sessions.Close()
		backend.Close()
		return nil, err
	}

	machine, err := conversation.NewMachine(sessions, submissions, engine, validator)
	if err != nil {
		provider.Close()
		submissions.Close()
		sessions.Close()
		backend.Close()
		return nil, err
	}

	return &Assistant{
		backend:     backend,
		sessions:    sessions,
		submissions: submissions,
		provider:    provider,
		model:       model,
		machine:     machine,
		logger:      logger,
	}, nil
}

// HandleTurn processes one user input for a session.
func (a *Assistant) HandleTurn(ctx context.Context, sessionID, input string) (*conversation.Turn, error) {
	return a.machine.HandleTurn(ctx, sessionID, input)
}

// ListSubmissions returns every stored contact submission.
func (a *Assistant) ListSubmissions(ctx context.Context) ([]*core.Submission, error) {
	return a.submissions.ListSubmissions(ctx)
}

// HasModel reports whether a trained model is loaded.
func (a *Assistant) HasModel() bool {
	return a.model != nil
}

// SessionRepository exposes the underlying session store.
func (a *Assistant) SessionRepository() storage.SessionRepository {
	return a.sessions
}

// SubmissionRepository exposes the underlying submission store.
func (a *Assistant) SubmissionRepository() storage.SubmissionRepository {
	return a.submissions
}

// Close releases the provider, repositories and storage backend.
func (a *Assistant) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.submissions.Close(); err != nil {
		a.logger.Error("error closing submission repository", "err", err)
		return err
	}
	if err := a.sessions.Close(); err != nil {
		a.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
