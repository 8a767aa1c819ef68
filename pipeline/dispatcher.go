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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// ErrDispatcherStopped is returned when trying to submit to a stopped dispatcher.
var ErrDispatcherStopped = errors.New("dispatcher is stopped")

// ErrDispatcherNotStarted is returned when trying to use a dispatcher that hasn't been started.
var ErrDispatcherNotStarted = errors.New("dispatcher not started")

// Dispatcher serializes calls from any number of goroutines onto a single
// executor goroutine, so the ledger never sees two calls at once. Calls run
// in the order they enter the submission queue.
type Dispatcher struct {
	config DispatcherConfig
	ledger *ledger.Ledger
	logger *slog.Logger
	tracer trace.Tracer

	submitChan chan *CallItem
	metrics    *DispatcherMetrics

	// State
	sequenceCounter atomic.Uint64
	ctx             context.Context
	cancel          context.CancelFunc
	started         atomic.Bool
	stopped         atomic.Bool
	wg              sync.WaitGroup
	mu              sync.Mutex   // protects Start/Stop
	submitMu        sync.RWMutex // protects Submit against concurrent Stop
}

// NewDispatcher creates a Dispatcher for l using functional options.
//
// Example:
//
//	d, err := NewDispatcher(
//	    l,
//	    WithQueueSize(128),
//	    WithLogger(logger),
//	)
func NewDispatcher(l *ledger.Ledger, opts ...DispatcherOption) (*Dispatcher, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	config := DefaultDispatcherConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	d := &Dispatcher{
		config:  config,
		ledger:  l,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.metrics == nil {
		d.metrics = NewDispatcherMetrics()
	}
	provider := config.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	d.tracer = provider.Tracer(TracerName)
	return d, nil
}

// Start starts the executor goroutine. The dispatcher stops when ctx is
// cancelled or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped.Load() {
		return ErrDispatcherStopped
	}
	if d.started.Load() {
		return nil // Already started
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.submitChan = make(chan *CallItem, d.config.QueueSize)

	d.wg.Add(1)
	go d.run()

	d.started.Store(true)
	d.logger.Debug(
		"dispatcher started",
		"component", "pipeline",
		"queue_size", d.config.QueueSize,
	)
	return nil
}

// Submit queues call and waits for its result. It is safe to call
// concurrently with other Submit calls and with Stop.
//
// If ctx is cancelled while the call is still queued, the call is abandoned
// and ctx.Err() is returned. Once the executor has picked the call up it runs
// to completion and its result is returned.
func (d *Dispatcher) Submit(
	ctx context.Context,
	origin common.Origin,
	call ledger.Call,
) (Result, error) {
	if call == nil {
		return Result{}, errors.New("call is required")
	}
	// Early checks for common cases (before acquiring lock)
	if !d.started.Load() {
		return Result{}, ErrDispatcherNotStarted
	}

	ctx, span := d.tracer.Start(
		ctx,
		"pipeline.Submit",
		trace.WithAttributes(
			attribute.String("call.name", call.Name()),
			attribute.String("origin.kind", origin.Kind().String()),
		),
	)
	defer span.End()

	item, err := d.enqueue(ctx, origin, call)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("call.id", item.Id().String()),
		attribute.Int64("call.sequence", int64(item.SequenceNumber())),
	)

	select {
	case <-item.Done():
	case <-ctx.Done():
		if item.abandon() {
			d.metrics.RecordAbandon()
			span.SetStatus(codes.Error, "abandoned")
			return Result{}, ctx.Err()
		}
		<-item.Done()
	case <-d.ctx.Done():
		if item.abandon() {
			d.metrics.RecordAbandon()
			span.SetStatus(codes.Error, "abandoned")
			return Result{}, ErrDispatcherStopped
		}
		<-item.Done()
	}

	result := item.Result()
	if err := item.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String("error.code", common.ErrorCodeOf(err).String()),
		)
		return result, err
	}
	if result.Record != nil {
		span.SetAttributes(
			attribute.Int64("tx.id", int64(result.Record.TxId)),
		)
	}
	return result, nil
}

// SubmitCbor decodes a CBOR-encoded call and submits it
func (d *Dispatcher) SubmitCbor(
	ctx context.Context,
	origin common.Origin,
	cborData []byte,
) (Result, error) {
	call, err := ledger.DecodeCall(cborData)
	if err != nil {
		return Result{}, err
	}
	return d.Submit(ctx, origin, call)
}

func (d *Dispatcher) enqueue(
	ctx context.Context,
	origin common.Origin,
	call ledger.Call,
) (*CallItem, error) {
	// RLock allows concurrent submits while preventing races with Stop().
	// Stop() must not close submitChan between the stopped check and the send.
	d.submitMu.RLock()
	defer d.submitMu.RUnlock()

	if d.stopped.Load() {
		return nil, ErrDispatcherStopped
	}

	item := NewCallItem(ctx, origin, call, d.sequenceCounter.Add(1))
	select {
	case d.submitChan <- item:
		d.metrics.RecordSubmit()
		d.metrics.UpdateQueueDepth(len(d.submitChan))
		return item, nil
	case <-ctx.Done():
		// Sequence gaps are acceptable, sequence numbers only order submissions
		return nil, ctx.Err()
	case <-d.ctx.Done():
		return nil, ErrDispatcherStopped
	}
}

// Stop gracefully stops the dispatcher. Calls that are already executing
// complete; calls still queued are abandoned with ErrDispatcherStopped.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started.Load() || d.stopped.Load() {
		return nil
	}

	// Cancel first to unblock Submit() calls waiting on a full queue, which
	// hold submitMu.RLock()
	d.cancel()

	d.submitMu.Lock()
	d.stopped.Store(true)
	close(d.submitChan)
	d.submitMu.Unlock()

	d.wg.Wait()
	d.logger.Debug(
		"dispatcher stopped",
		"component", "pipeline",
	)
	return nil
}

// Stats returns the current dispatcher statistics.
func (d *Dispatcher) Stats() DispatcherStats {
	return d.metrics.Stats()
}

// QueueDepth returns the number of calls waiting for the executor.
func (d *Dispatcher) QueueDepth() int {
	if !d.started.Load() {
		return 0
	}
	return len(d.submitChan)
}

// run executes queued calls one at a time until the dispatcher is stopped
func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case item, ok := <-d.submitChan:
			if !ok {
				return
			}
			d.metrics.UpdateQueueDepth(len(d.submitChan))
			// Cancellation wins over queued work
			if d.ctx.Err() != nil {
				return
			}
			d.execute(item)
		}
	}
}

func (d *Dispatcher) execute(item *CallItem) {
	if !item.begin() {
		return
	}
	_, span := d.tracer.Start(
		item.ctx,
		"pipeline.execute",
		trace.WithAttributes(
			attribute.String("call.name", item.Call().Name()),
		),
	)

	start := time.Now()
	record, err := d.dispatch(item)
	duration := time.Since(start)
	d.metrics.RecordApply(duration, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelDebug
		if common.ErrorCodeOf(err) == common.ErrorCodeNone {
			level = slog.LevelError
		}
		d.logger.Log(
			context.Background(),
			level,
			"call failed",
			"component", "pipeline",
			"call_id", item.Id().String(),
			"call", item.Call().Name(),
			"origin", item.Origin().String(),
			"error", err,
		)
	}
	// The span ends before the submitter is released
	span.End()
	item.SetResult(record, err, duration)
}

// dispatch runs the call on the ledger, reporting a panic as an error
func (d *Dispatcher) dispatch(item *CallItem) (record *common.TransactionRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("call %s panicked: %v", item.Id(), r)
		}
	}()
	return d.ledger.Dispatch(item.Origin(), item.Call())
}
