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

import "errors"

var (
	// ErrModelNotFound is returned when the trained artifact does not exist.
	// Callers degrade to a "model not found" response instead of failing.
	ErrModelNotFound = errors.New("trained model not found")

	// ErrEmptyCorpus is returned when training is attempted on zero entries.
	ErrEmptyCorpus = errors.New("corpus is empty")

	// ErrEmptyVocabulary is returned when no usable tokens exist in the corpus.
	ErrEmptyVocabulary = errors.New("corpus produced an empty vocabulary")

	// ErrBadArtifact is returned when a model artifact cannot be decoded.
	ErrBadArtifact = errors.New("corrupt model artifact")
)
