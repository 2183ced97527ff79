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

// Package conversation drives the per-session dialogue state machine.
//
// A session walks Greet -> AskName -> AskEmail -> AskPhoneNumber -> AskQuery
// -> AskQueryAgain, where AskQueryAgain self-loops. Validation failures
// re-prompt without advancing, an exit phrase terminates from any state, and
// the contact details plus the first query are persisted exactly once per
// session. Every turn appends one user message and one bot message to the
// session history.
package conversation
