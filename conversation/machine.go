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

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/smartbot/core"
	"github.com/poiesic/smartbot/retrieval"
	"github.com/poiesic/smartbot/storage"
)

// Answerer resolves a query against the retrieval tiers.
// *retrieval.Engine satisfies it.
type Answerer interface {
	Answer(ctx context.Context, input string, history []core.Message) core.MatchResult
}

// Validator checks the contact details collected before queries are taken.
// *validation.Validator satisfies it.
type Validator interface {
	ValidateEmail(ctx context.Context, email string) bool
	ValidatePhoneNumber(phone string) bool
}

// Machine advances sessions through the conversation steps. Callers must
// serialize turns per session id; different sessions may run concurrently.
type Machine struct {
	sessions    storage.SessionRepository
	submissions storage.SubmissionRepository
	answerer    Answerer
	validator   Validator
	logger      *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine) error

// WithLogger sets the logger used by the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		m.logger = logger
		return nil
	}
}

// NewMachine creates a Machine over the given repositories and services.
func NewMachine(sessions storage.SessionRepository, submissions storage.SubmissionRepository,
	answerer Answerer, validator Validator, opts ...Option) (*Machine, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session repository cannot be nil")
	}
	if submissions == nil {
		return nil, fmt.Errorf("submission repository cannot be nil")
	}
	if answerer == nil {
		return nil, fmt.Errorf("answerer cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}

	m := &Machine{
		sessions:    sessions,
		submissions: submissions,
		answerer:    answerer,
		validator:   validator,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	m.logger = m.logger.With("component", "conversation")
	return m, nil
}

// Turn is the outcome of one exchange.
type Turn struct {
	// Reply is the bot's response to this input.
	Reply string

	// History is the full conversation history including this turn.
	History []core.Message

	// Terminated reports that the session ended and was discarded.
	Terminated bool
}

// HandleTurn processes one user input for the identified session, creating
// the session on first contact. Storage failures after the reply is decided
// are logged rather than surfaced: the user still gets an answer.
func (m *Machine) HandleTurn(ctx context.Context, sessionID, input string) (*Turn, error) {
	if sessionID == "" {
		return nil, core.ErrEmptySessionId
	}

	session, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
		}
		session = &core.Session{Id: sessionID, Step: core.StepGreet}
		m.logger.Debug("session created", "session", sessionID)
	}

	trimmed := strings.TrimSpace(input)

	if _, exit := exitPhrases[strings.ToLower(trimmed)]; exit {
		return m.terminate(ctx, session, input)
	}

	reply := m.advance(ctx, session, trimmed)

	session.History = append(session.History,
		core.Message{Sender: core.SenderUser, Text: input},
		core.Message{Sender: core.SenderBot, Text: reply},
	)

	if err := m.sessions.PutSession(ctx, session); err != nil {
		m.logger.Error("persisting session failed", "session", session.Id, "err", err)
	}

	m.logger.Debug("turn handled", "session", session.Id, "step", session.Step.String())
	return &Turn{Reply: reply, History: session.History}, nil
}

// advance applies one input to the session and returns the bot reply,
// mutating the step and collected fields in place.
func (m *Machine) advance(ctx context.Context, session *core.Session, input string) string {
	switch session.Step {
	case core.StepGreet:
		session.Step = core.StepAskName
		return promptAskName

	case core.StepAskName:
		// A blank name would fail submission validation later, so it is
		// rejected here like an invalid email or phone number.
		if input == "" {
			return promptEmptyName
		}
		session.Name = input
		session.Step = core.StepAskEmail
		return fmt.Sprintf(promptAskEmail, input)

	case core.StepAskEmail:
		if !m.validator.ValidateEmail(ctx, input) {
			return replyInvalidEmail
		}
		session.Email = input
		session.Step = core.StepAskPhoneNumber
		return promptAskPhone

	case core.StepAskPhoneNumber:
		if !m.validator.ValidatePhoneNumber(input) {
			return replyInvalidPhone
		}
		session.Phone = input
		session.Step = core.StepAskQuery
		return promptAskQuery

	case core.StepAskQuery, core.StepAskQueryAgain:
		return m.answerQuery(ctx, session, input)

	default:
		m.logger.Error("session in unexpected step", "session", session.Id, "step", int(session.Step))
		return retrieval.NoMatchReply
	}
}

// answerQuery handles the two query states: greetings pass through without
// becoming queries, the first real query triggers the one-time submission,
// and every query is answered by the retrieval tiers.
func (m *Machine) answerQuery(ctx context.Context, session *core.Session, input string) string {
	if reply, ok := retrieval.GreetingReply(core.Normalize(input)); ok {
		return reply
	}

	if input == "" {
		return promptEmptyQuery
	}

	if session.Step == core.StepAskQuery && !session.Submitted {
		m.persistSubmission(ctx, session, input)
		session.Submitted = true
	}

	result := m.answerer.Answer(ctx, input, session.History)
	m.logger.Debug("query answered", "session", session.Id, "tier", result.Tier.String(), "score", result.Score)

	session.Step = core.StepAskQueryAgain
	return result.Answer
}

// persistSubmission stores the contact details with the first query. A
// failure here never blocks the answer; it is logged and the turn goes on.
func (m *Machine) persistSubmission(ctx context.Context, session *core.Session, query string) {
	submission := &core.Submission{
		Name:  session.Name,
		Email: session.Email,
		Phone: session.Phone,
		Query: query,
	}

	added, err := m.submissions.AddSubmission(ctx, submission)
	if err != nil {
		m.logger.Error("persisting submission failed", "session", session.Id, "err", err)
		return
	}
	m.logger.Info("submission stored", "session", session.Id, "id", uint64(added.Id))
}

// terminate ends the session: the goodbye exchange is reported in the turn
// history, but the stored session is removed.
func (m *Machine) terminate(ctx context.Context, session *core.Session, input string) (*Turn, error) {
	history := append(session.History,
		core.Message{Sender: core.SenderUser, Text: input},
		core.Message{Sender: core.SenderBot, Text: replyGoodbye},
	)

	if err := m.sessions.DeleteSession(ctx, session.Id); err != nil {
		m.logger.Error("deleting session failed", "session", session.Id, "err", err)
	}

	m.logger.Debug("session terminated", "session", session.Id)
	return &Turn{Reply: replyGoodbye, History: history, Terminated: true}, nil
}
