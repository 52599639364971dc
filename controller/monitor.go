package controller

import (
	"context"
	"sync"
	"time"

	"motion-logger/models"
	"motion-logger/utils"
)

// Monitor decouples readers (the live view, progress output) from the
// sampler's update rate. It keeps only the newest snapshot pushed by the
// sampler and republishes it on Out at a fixed cadence.
//
//	Sampler ──► subscription ──► latest slot ──► ticker ──► Out
type Monitor struct {
	mu     sync.Mutex
	latest *models.Snapshot

	Out chan models.Snapshot // downstream readers consume this

	interval time.Duration
	dropped  uint64
}

// NewMonitor creates a monitor emitting at most once per interval.
func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = SampleInterval
	}
	return &Monitor{
		Out:      make(chan models.Snapshot, 1),
		interval: interval,
	}
}

// Start subscribes to s and launches the drain and publish goroutines.
// Out is closed once ctx is done.
func (m *Monitor) Start(ctx context.Context, s *Sampler) {
	updates, cancel := s.Subscribe(4)

	// Seed with the current state so the first tick has something to show.
	snap := s.Snapshot()
	m.latest = &snap

	go m.drain(ctx, updates, cancel)
	go m.publish(ctx)
	utils.L().Debug("monitor started (interval=%v)", m.interval)
}

func (m *Monitor) drain(ctx context.Context, updates <-chan models.Snapshot, cancel func()) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			m.mu.Lock()
			m.latest = &snap
			m.mu.Unlock()
		}
	}
}

func (m *Monitor) publish(ctx context.Context) {
	defer close(m.Out)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.L().Debug("monitor stopped (dropped=%d)", m.dropped)
			return
		case <-ticker.C:
			m.mu.Lock()
			snap := m.latest
			// Clear the slot so an unchanged series is not re-sent.
			m.latest = nil
			m.mu.Unlock()
			if snap == nil {
				continue
			}

			select {
			case m.Out <- *snap:
			default:
				m.dropped++
			}
		}
	}
}
