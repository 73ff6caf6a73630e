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

import (
	"fmt"
	"time"
)

// ValidateEntry validates a FAQ entry according to domain rules.
//
// Validation rules:
//   - Category must not be empty
//   - Question must not be empty
//   - Answer must not be empty
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Category == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyCategory)
	}

	if entry.Question == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyQuestion)
	}

	if entry.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyAnswer)
	}

	return nil
}

// ValidateExchange validates an Exchange according to domain rules.
//
// Validation rules:
//   - Query must not be empty
//   - Answer must not be empty
//   - Source must be valid
//   - CreatedAt must not be in the future (zero is valid, set by the repository)
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - Question (empty unless the answer came from similarity search)
//   - Confidence (0.0 is the sentinel for routed and failure answers)
func ValidateExchange(exchange *Exchange) error {
	if exchange == nil {
		return fmt.Errorf("%w: exchange is nil", ErrInvalidExchange)
	}

	if exchange.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExchange, ErrEmptyQuery)
	}

	if exchange.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExchange, ErrEmptyAnswer)
	}

	if err := ValidateMatchSource(exchange.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExchange, err)
	}

	if !exchange.CreatedAt.IsZero() && !IsValidTimestamp(exchange.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidExchange, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateMatchSource validates that a MatchSource has a valid value.
func ValidateMatchSource(source MatchSource) error {
	switch source {
	case SourceRoute, SourceSimilarity, SourceFallback, SourceFailure:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidMatchSource, source)
	}
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
