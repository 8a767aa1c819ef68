// Copyright 2026 Blink Labs Software
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

package pipeline

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// DefaultQueueSize is the default number of calls that may wait for the executor
const DefaultQueueSize = 1024

// TracerName is the instrumentation scope of dispatcher spans
const TracerName = "txsequencer/pipeline"

// DispatcherConfig holds configuration for a Dispatcher.
type DispatcherConfig struct {
	// QueueSize is the buffer size of the submission channel. Submit blocks
	// while the queue is full.
	QueueSize int
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// Metrics collects dispatcher statistics. A new collector is created
	// when nil.
	Metrics *DispatcherMetrics
	// TracerProvider defaults to the global otel provider
	TracerProvider trace.TracerProvider
}

// DefaultDispatcherConfig returns a DispatcherConfig with sensible defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize: DefaultQueueSize,
	}
}

// DispatcherOption is a functional option for configuring a Dispatcher.
type DispatcherOption func(*DispatcherConfig)

// WithQueueSize sets the submission queue size.
func WithQueueSize(size int) DispatcherOption {
	return func(c *DispatcherConfig) {
		if size > 0 {
			c.QueueSize = size
		}
	}
}

// WithLogger specifies the logger to use.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(c *DispatcherConfig) {
		c.Logger = logger
	}
}

// WithMetrics shares a metrics collector with the dispatcher.
// A nil collector is ignored.
func WithMetrics(metrics *DispatcherMetrics) DispatcherOption {
	return func(c *DispatcherConfig) {
		if metrics != nil {
			c.Metrics = metrics
		}
	}
}

// WithTracerProvider sets the provider used to create dispatcher spans.
func WithTracerProvider(provider trace.TracerProvider) DispatcherOption {
	return func(c *DispatcherConfig) {
		c.TracerProvider = provider
	}
}
