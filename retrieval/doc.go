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

// Package retrieval implements the tiered answer engine.
//
// An input runs through cheaper tiers first: greeting lookup, exact match,
// keyword overlap for short inputs, TF-IDF cosine for longer inputs, then a
// semantic embedding fallback, and finally free-form generation. Each tier
// either produces an answer or hands off to the next; generation never
// declines, so every query gets some reply.
package retrieval
