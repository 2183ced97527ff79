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


// Package corpus holds the question/answer corpus and its trained model.
//
// The corpus is loaded once from a JSON dataset, vectorized with a TF-IDF
// vocabulary shared across all questions, optionally enriched with sentence
// embeddings, and serialized to a compact artifact that the service loads at
// startup. The resulting Model is immutable and safe for concurrent reads.
package corpus
