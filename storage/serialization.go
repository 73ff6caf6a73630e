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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/faqbot/core"
)

// Exchanges are serialized in MUS format, field by field in declaration
// order. Timestamps are stored as microseconds since the Unix epoch.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	num, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	return core.ID(num), nil
}

// MarshalExchange serializes an Exchange to bytes.
func MarshalExchange(exchange *core.Exchange) []byte {
	size := varint.Uint64.Size(uint64(exchange.Id)) +
		ord.String.Size(exchange.Query) +
		ord.String.Size(exchange.Answer) +
		raw.Float32.Size(exchange.Confidence) +
		varint.Int.Size(int(exchange.Source)) +
		ord.String.Size(exchange.Question) +
		varint.Int64.Size(exchange.CreatedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(exchange.Id), buf)
	n += ord.String.Marshal(exchange.Query, buf[n:])
	n += ord.String.Marshal(exchange.Answer, buf[n:])
	n += raw.Float32.Marshal(exchange.Confidence, buf[n:])
	n += varint.Int.Marshal(int(exchange.Source), buf[n:])
	n += ord.String.Marshal(exchange.Question, buf[n:])
	varint.Int64.Marshal(exchange.CreatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalExchange deserializes an Exchange from bytes.
func UnmarshalExchange(data []byte) (*core.Exchange, error) {
	var (
		exchange core.Exchange
		n        int
	)

	id, fn, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	exchange.Id = core.ID(id)
	n += fn

	exchange.Query, fn, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	n += fn

	exchange.Answer, fn, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	n += fn

	exchange.Confidence, fn, err = raw.Float32.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	n += fn

	source, fn, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	exchange.Source = core.MatchSource(source)
	n += fn

	exchange.Question, fn, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	n += fn

	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w. %w", ErrSerializationFailed, err)
	}
	exchange.CreatedAt = time.UnixMicro(micros).UTC()

	return &exchange, nil
}
