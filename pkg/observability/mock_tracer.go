// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package observability

import (
	"context"
	"sync"
	"time"
)

// MockTracer captures finished spans so tests can assert on the
// telemetry a run produced. Safe for concurrent use.
type MockTracer struct {
	mu    sync.RWMutex
	spans []*Span
}

// NewMockTracer returns an empty capturing tracer.
func NewMockTracer() *MockTracer {
	return &MockTracer{
		spans: make([]*Span, 0),
	}
}

// StartSpan creates a span linked to any parent in ctx. The span is
// captured on EndSpan, not here, so abandoned spans stay invisible.
func (m *MockTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := &Span{
		TraceID:    "trace-" + generateID(),
		SpanID:     "span-" + generateID(),
		Name:       name,
		StartTime:  time.Now(),
		Attributes: make(map[string]interface{}),
		Events:     make([]Event, 0),
	}

	for _, opt := range opts {
		opt(span)
	}

	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}

	return ContextWithSpan(ctx, span), span
}

// EndSpan stamps the duration and records the span.
func (m *MockTracer) EndSpan(span *Span) {
	if span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = append(m.spans, span)
}

// RecordMetric is accepted and dropped; assertions go through spans.
func (m *MockTracer) RecordMetric(name string, value float64, labels map[string]string) {}

// RecordEvent is accepted and dropped.
func (m *MockTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

// Flush is a no-op.
func (m *MockTracer) Flush(ctx context.Context) error {
	return nil
}

// GetSpans returns a copy of every captured span in completion order.
func (m *MockTracer) GetSpans() []*Span {
	m.mu.RLock()
	defer m.mu.RUnlock()

	spans := make([]*Span, len(m.spans))
	copy(spans, m.spans)
	return spans
}

// GetSpanByName returns the first captured span with the given name,
// nil when none matches.
func (m *MockTracer) GetSpanByName(name string) *Span {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, span := range m.spans {
		if span.Name == name {
			return span
		}
	}
	return nil
}

func generateID() string {
	return time.Now().Format("20060102150405.000000")
}

// Ensure MockTracer implements Tracer interface
var _ Tracer = (*MockTracer)(nil)
