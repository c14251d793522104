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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogTracer exports completed spans and metrics to a zap logger.
// Use in binaries when structured traces are wanted without an
// external collector.
//
// Span completions log at Debug, span errors at Warn.
type LogTracer struct {
	logger *zap.Logger
}

// NewLogTracer creates a tracer that writes spans to logger.
// A nil logger falls back to zap.NewNop().
func NewLogTracer(logger *zap.Logger) *LogTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTracer{logger: logger}
}

// StartSpan creates and starts a new span.
func (t *LogTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := &Span{
		TraceID:    uuid.New().String(),
		SpanID:     uuid.New().String(),
		Name:       name,
		StartTime:  time.Now(),
		Attributes: make(map[string]interface{}),
	}

	// Apply options
	for _, opt := range opts {
		opt(span)
	}

	// Link to parent if exists
	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}

	return ContextWithSpan(ctx, span), span
}

// EndSpan completes a span and logs it.
func (t *LogTracer) EndSpan(span *Span) {
	if span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)

	fields := []zap.Field{
		zap.String("trace_id", span.TraceID),
		zap.String("span_id", span.SpanID),
		zap.Duration("duration", span.Duration),
		zap.Int("events", len(span.Events)),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", span.ParentID))
	}
	for k, v := range span.Attributes {
		fields = append(fields, zap.Any(k, v))
	}

	if span.Status.Code == StatusError {
		fields = append(fields, zap.String("status", span.Status.Message))
		t.logger.Warn("span "+span.Name, fields...)
		return
	}
	t.logger.Debug("span "+span.Name, fields...)
}

// RecordMetric logs a point-in-time metric value.
func (t *LogTracer) RecordMetric(name string, value float64, labels map[string]string) {
	fields := []zap.Field{zap.Float64("value", value)}
	for k, v := range labels {
		fields = append(fields, zap.String(k, v))
	}
	t.logger.Debug("metric "+name, fields...)
}

// RecordEvent records a standalone event.
// If a span exists in the context, adds the event to that span.
// Otherwise, logs it directly.
func (t *LogTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	if span := SpanFromContext(ctx); span != nil {
		span.AddEvent(name, attributes)
		return
	}

	fields := make([]zap.Field, 0, len(attributes))
	for k, v := range attributes {
		fields = append(fields, zap.Any(k, v))
	}
	t.logger.Debug("event "+name, fields...)
}

// Flush syncs the underlying logger.
func (t *LogTracer) Flush(ctx context.Context) error {
	// Sync errors on stderr sinks are expected and harmless.
	_ = t.logger.Sync()
	return nil
}

// Ensure LogTracer implements Tracer interface.
var _ Tracer = (*LogTracer)(nil)
