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
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// DispatcherMetrics tracks metrics for a dispatcher.
// Uses atomic counters for thread-safe operation.
type DispatcherMetrics struct {
	// Counters (atomic)
	callsSubmitted atomic.Uint64
	callsAccepted  atomic.Uint64
	callsRejected  atomic.Uint64
	callsFailed    atomic.Uint64
	callsAbandoned atomic.Uint64

	// Requires mutex
	mu                sync.RWMutex
	rejectionsByCode  map[common.ErrorCode]uint64
	currentQueueDepth int
	peakQueueDepth    int
	totalApplyTime    time.Duration
	lastCallTime      time.Time
	startTime         time.Time
}

// DispatcherStats is a point-in-time snapshot of DispatcherMetrics
type DispatcherStats struct {
	CallsSubmitted uint64
	// CallsAccepted counts calls that completed without error
	CallsAccepted uint64
	// CallsRejected counts calls refused with a coded validation or
	// authorization error
	CallsRejected uint64
	// CallsFailed counts calls that failed for any other reason, such as a
	// state store error
	CallsFailed uint64
	// CallsAbandoned counts calls whose submitter gave up before execution
	CallsAbandoned    uint64
	RejectionsByCode  map[common.ErrorCode]uint64
	CurrentQueueDepth int
	PeakQueueDepth    int
	TotalApplyTime    time.Duration
	LastCallTime      time.Time
	StartTime         time.Time
}

func NewDispatcherMetrics() *DispatcherMetrics {
	return &DispatcherMetrics{
		rejectionsByCode: make(map[common.ErrorCode]uint64),
		startTime:        time.Now(),
	}
}

// RecordSubmit increments the submitted counter
func (m *DispatcherMetrics) RecordSubmit() {
	m.callsSubmitted.Add(1)
}

// RecordAbandon increments the abandoned counter
func (m *DispatcherMetrics) RecordAbandon() {
	m.callsAbandoned.Add(1)
}

// RecordApply records the outcome of an executed call
func (m *DispatcherMetrics) RecordApply(duration time.Duration, err error) {
	code := common.ErrorCodeOf(err)
	switch {
	case err == nil:
		m.callsAccepted.Add(1)
	case code != common.ErrorCodeNone:
		m.callsRejected.Add(1)
	default:
		m.callsFailed.Add(1)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil && code != common.ErrorCodeNone {
		m.rejectionsByCode[code]++
	}
	m.totalApplyTime += duration
	m.lastCallTime = time.Now()
}

// UpdateQueueDepth updates the queue depth tracking
func (m *DispatcherMetrics) UpdateQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentQueueDepth = depth
	if depth > m.peakQueueDepth {
		m.peakQueueDepth = depth
	}
}

// Stats returns a snapshot of the current metrics
func (m *DispatcherMetrics) Stats() DispatcherStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return DispatcherStats{
		CallsSubmitted:    m.callsSubmitted.Load(),
		CallsAccepted:     m.callsAccepted.Load(),
		CallsRejected:     m.callsRejected.Load(),
		CallsFailed:       m.callsFailed.Load(),
		CallsAbandoned:    m.callsAbandoned.Load(),
		RejectionsByCode:  maps.Clone(m.rejectionsByCode),
		CurrentQueueDepth: m.currentQueueDepth,
		PeakQueueDepth:    m.peakQueueDepth,
		TotalApplyTime:    m.totalApplyTime,
		LastCallTime:      m.lastCallTime,
		StartTime:         m.startTime,
	}
}

// Reset resets all metrics
func (m *DispatcherMetrics) Reset() {
	m.callsSubmitted.Store(0)
	m.callsAccepted.Store(0)
	m.callsRejected.Store(0)
	m.callsFailed.Store(0)
	m.callsAbandoned.Store(0)

	m.mu.Lock()
	m.rejectionsByCode = make(map[common.ErrorCode]uint64)
	m.currentQueueDepth = 0
	m.peakQueueDepth = 0
	m.totalApplyTime = 0
	m.lastCallTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
