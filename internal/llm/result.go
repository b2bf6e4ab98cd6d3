// Copyright (c) 2026 John Earle
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

package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when content holds no {...} span.
var ErrNoJSONObject = errors.New("no JSON object in content")

// Result carries either a value or the error that prevented producing it.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

// Fail wraps an error.
func Fail[T any](err error) Result[T] { return Result[T]{err: err} }

// Err returns the error, if any.
func (r Result[T]) Err() error { return r.err }

// UnwrapOr returns the value, or fallback when the result is an error.
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Decode decodes content into dst, which must hold a pointer.
func Decode[T any](content string, dst T) Result[T] {
	if err := json.Unmarshal([]byte(content), dst); err != nil {
		return Fail[T](fmt.Errorf("decode completion JSON: %w", err))
	}
	return Ok(dst)
}

// ObjectSpan trims content to the span between the first '{' and the last
// '}', dropping any prose a model wraps around its JSON.
func ObjectSpan(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return content[start : end+1], nil
}
