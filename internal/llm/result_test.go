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
	"errors"
	"testing"
)

// TestResultUnwrapOr verifies the fallback is only used for failures.
func TestResultUnwrapOr(t *testing.T) {
	if got := Ok(3).UnwrapOr(7); got != 3 {
		t.Errorf("Ok(3).UnwrapOr(7) = %d", got)
	}
	if got := Fail[int](errors.New("boom")).UnwrapOr(7); got != 7 {
		t.Errorf("Fail.UnwrapOr(7) = %d", got)
	}
}

// TestDecode verifies decoding into the destination and failure.
func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	res := Decode(`{"name":"x"}`, &payload{})
	if err := res.Err(); err != nil || res.UnwrapOr(nil).Name != "x" {
		t.Errorf("Decode = %+v, %v", res.UnwrapOr(nil), err)
	}
	if err := Decode(`not json`, &payload{}).Err(); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

// TestObjectSpan verifies prose around a JSON object is dropped.
func TestObjectSpan(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "Sure! Here you go: {\"a\":{\"b\":2}} Hope that helps.", want: `{"a":{"b":2}}`},
		{in: "no braces here", wantErr: true},
		{in: "} backwards {", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ObjectSpan(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ObjectSpan(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ObjectSpan(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
