package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// SyncMetrics keeps a rolling average of sync pass durations and counters
// of converted prims.
type SyncMetrics struct {
	mu sync.Mutex

	passAVGCounter uint8
	msTimes        [AVG_COUNT]float64
	msAvg          float64

	passes      uint64
	primsSynced uint64
	primErrors  uint64
}

func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{}
}

// Update records one sync pass.
func (m *SyncMetrics) Update(elapsed time.Duration, synced, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms := float64(elapsed) / float64(time.Millisecond)
	m.msTimes[m.passAVGCounter] = ms
	if m.passAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += m.msTimes[i]
		}
		m.msAvg = sum / float64(AVG_COUNT)
	}
	m.passAVGCounter++
	m.passAVGCounter %= AVG_COUNT

	m.passes++
	m.primsSynced += uint64(synced)
	m.primErrors += uint64(failed)
}

// PassTime is the average pass duration in ms over the last AVG_COUNT passes.
func (m *SyncMetrics) PassTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msAvg
}

// Totals returns passes, prims synced and prim errors since creation.
func (m *SyncMetrics) Totals() (passes, synced, failed uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes, m.primsSynced, m.primErrors
}
