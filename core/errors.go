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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrInvalidSubmission indicates a Submission failed validation.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrEmptySessionId indicates the session Id field is empty.
	ErrEmptySessionId = errors.New("session id cannot be empty")

	// ErrInvalidStep indicates a Step value outside the enumerated states.
	ErrInvalidStep = errors.New("invalid conversation step")

	// ErrInvalidSender indicates an invalid Sender value.
	ErrInvalidSender = errors.New("invalid sender")

	// ErrEmptySubmissionField indicates a required submission field is empty.
	ErrEmptySubmissionField = errors.New("submission field cannot be empty")
)
