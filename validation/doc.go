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

// Package validation checks user-supplied contact details.
//
// Emails pass a syntax check, a disposable-domain denylist, and a DNS MX
// lookup. Phone numbers pass a national-format pattern and a region-aware
// parse. Both checks answer yes or no; the reasons are only logged, since
// the conversation layer re-prompts rather than explains.
package validation
