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

package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/smartcal/backend/internal/calendar"
	"github.com/smartcal/backend/internal/models"
)

// Record is one prepared event as written by a Sink.
type Record struct {
	Event          calendar.Event              `json:"event"`
	Classification models.ClassificationResult `json:"classification"`
	Preparation    models.Preparation          `json:"preparation"`
}

// Sink receives prepared events.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// WriterSink writes one JSON document per line.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

func (s *WriterSink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(rec)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// DirSink writes each record to <dir>/<date>-<event id>.json.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Write(_ context.Context, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, FileName(rec.Event)), data, 0o644)
}

// FileName is the file a DirSink uses for ev.
func FileName(ev calendar.Event) string {
	id := unsafeName.ReplaceAllString(ev.ID, "_")
	if id == "" {
		id = unsafeName.ReplaceAllString(ev.Title, "_")
	}
	return ev.Start().Format(time.DateOnly) + "-" + id + ".json"
}
