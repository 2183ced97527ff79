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


package core

import "fmt"

// ValidateSession validates a Session according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Step must be one of the enumerated states
//   - every history message must have a valid sender
//
// NOT validated (populated progressively by the state machine):
//   - Name, Email, Phone (empty until the corresponding step completes)
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}

	if session.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptySessionId)
	}

	if err := ValidateStep(session.Step); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	for _, msg := range session.History {
		if err := ValidateSender(msg.Sender); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSession, err)
		}
	}

	return nil
}

// ValidateStep validates that a Step has one of the enumerated values.
func ValidateStep(step Step) error {
	if step < StepGreet || step > StepTerminated {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	return nil
}

// ValidateSender validates that a Sender has a valid value.
func ValidateSender(sender Sender) error {
	if sender != SenderUser && sender != SenderBot {
		return fmt.Errorf("%w: %d", ErrInvalidSender, sender)
	}
	return nil
}

// ValidateSubmission validates a Submission according to domain rules.
//
// Validation rules:
//   - Name, Email, Phone and Query must all be non-empty
//
// NOT validated:
//   - Id (0 is valid; content IDs are assigned on store)
func ValidateSubmission(submission *Submission) error {
	if submission == nil {
		return fmt.Errorf("%w: submission is nil", ErrInvalidSubmission)
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", submission.Name},
		{"email", submission.Email},
		{"phone", submission.Phone},
		{"query", submission.Query},
	} {
		if field.value == "" {
			return fmt.Errorf("%w: %w: %s", ErrInvalidSubmission, ErrEmptySubmissionField, field.name)
		}
	}

	return nil
}
