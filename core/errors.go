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
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid FAQ entry")

	// ErrInvalidExchange indicates an Exchange failed validation.
	ErrInvalidExchange = errors.New("invalid exchange")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyQuestion indicates the Question field is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the Answer field is empty.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrEmptyCategory indicates the Category field is empty.
	ErrEmptyCategory = errors.New("category cannot be empty")

	// ErrEmptyQuery indicates the Query field is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidMatchSource indicates an invalid MatchSource value.
	ErrInvalidMatchSource = errors.New("invalid match source")
)
