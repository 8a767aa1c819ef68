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
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

const (
	callStatePending int32 = iota
	callStateRunning
	callStateCancelled
)

// Result is the outcome of a call that was executed by the dispatcher
type Result struct {
	// CallId identifies the submission in logs and traces
	CallId uuid.UUID
	// Sequence is the position of the call in the dispatcher's arrival order
	Sequence uint64
	// Record is set for accepted transact calls
	Record *common.TransactionRecord
	// QueueDuration is the time spent waiting for the executor
	QueueDuration time.Duration
	// ApplyDuration is the time spent executing the call
	ApplyDuration time.Duration
}

// CallItem represents a call as it moves through the dispatcher
type CallItem struct {
	// Immutable fields (set at construction, never modified)
	id             uuid.UUID
	origin         common.Origin
	call           ledger.Call
	sequenceNumber uint64
	receivedAt     time.Time
	ctx            context.Context

	state atomic.Int32
	done  chan struct{}

	// Results protected by mutex
	mu            sync.RWMutex
	record        *common.TransactionRecord
	err           error
	startedAt     time.Time
	applyDuration time.Duration
}

// NewCallItem creates a pending CallItem. ctx carries the submitter's trace
// span into the executor.
func NewCallItem(
	ctx context.Context,
	origin common.Origin,
	call ledger.Call,
	seq uint64,
) *CallItem {
	return &CallItem{
		id:             uuid.New(),
		origin:         origin,
		call:           call,
		sequenceNumber: seq,
		receivedAt:     time.Now(),
		ctx:            ctx,
		done:           make(chan struct{}),
	}
}

func (c *CallItem) Id() uuid.UUID {
	return c.id
}

func (c *CallItem) Origin() common.Origin {
	return c.origin
}

func (c *CallItem) Call() ledger.Call {
	return c.call
}

// SequenceNumber returns the sequence number assigned at submission
func (c *CallItem) SequenceNumber() uint64 {
	return c.sequenceNumber
}

func (c *CallItem) ReceivedAt() time.Time {
	return c.receivedAt
}

// Done is closed once the item is executed or abandoned
func (c *CallItem) Done() <-chan struct{} {
	return c.done
}

// begin moves a pending item to running. It returns false if the submitter
// already gave up on the item.
func (c *CallItem) begin() bool {
	if !c.state.CompareAndSwap(callStatePending, callStateRunning) {
		return false
	}
	c.mu.Lock()
	c.startedAt = time.Now()
	c.mu.Unlock()
	return true
}

// abandon moves a pending item to cancelled. It returns false once the
// executor has picked the item up.
func (c *CallItem) abandon() bool {
	return c.state.CompareAndSwap(callStatePending, callStateCancelled)
}

// SetResult stores the execution outcome and releases the submitter
func (c *CallItem) SetResult(
	record *common.TransactionRecord,
	err error,
	duration time.Duration,
) {
	c.mu.Lock()
	c.record = record
	c.err = err
	c.applyDuration = duration
	c.mu.Unlock()
	close(c.done)
}

func (c *CallItem) Record() *common.TransactionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.record
}

func (c *CallItem) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Result returns the execution outcome. It is only meaningful after Done is closed.
func (c *CallItem) Result() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := Result{
		CallId:        c.id,
		Sequence:      c.sequenceNumber,
		Record:        c.record,
		ApplyDuration: c.applyDuration,
	}
	if !c.startedAt.IsZero() {
		ret.QueueDuration = c.startedAt.Sub(c.receivedAt)
	}
	return ret
}
