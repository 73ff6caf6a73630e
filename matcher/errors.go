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


package matcher

import "errors"

var (
	ErrCorpusRequired   = errors.New("corpus is required")
	ErrIndexRequired    = errors.New("embedding index is required")
	ErrProviderRequired = errors.New("embedding provider is required")
	ErrIndexMismatch    = errors.New("embedding index does not match corpus")
	ErrInvalidThreshold = errors.New("threshold must be in [-1, 1]")
)
