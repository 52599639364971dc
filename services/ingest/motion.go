package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"motion-logger/models"
	"motion-logger/utils"
)

var (
	// ErrSensorUnavailable is returned when the backend has no usable
	// accelerometer.
	ErrSensorUnavailable = errors.New("motion sensor unavailable")
	// ErrAlreadyStarted is returned by StartUpdates on a running service.
	ErrAlreadyStarted = errors.New("motion updates already started")
)

// Handler receives readings. Calls for one subscription are serialised on
// a single dispatch goroutine.
type Handler func(models.Reading)

// MotionService is the platform motion-sensing capability consumed by the
// sampler.
type MotionService interface {
	Available() bool
	StartUpdates(interval time.Duration, h Handler) error
	// StopUpdates ends delivery and waits for the dispatch goroutine to
	// exit. At most one handler call may still be in flight when it is
	// invoked.
	StopUpdates()
}

// NewMotionService builds the backend selected by cfg.Backend.
func NewMotionService(cfg utils.SensorConfig) (MotionService, error) {
	switch cfg.Backend {
	case utils.BackendSimulated, "":
		return NewSimulatedReader(cfg.Simulation, time.Now().UnixNano()), nil
	case utils.BackendIIO:
		return NewIIOReader(cfg.IIO), nil
	case utils.BackendUnavailable:
		return Unavailable{}, nil
	}
	return nil, fmt.Errorf("unknown motion backend %q", cfg.Backend)
}

// readFunc produces one reading. step counts ticks since StartUpdates.
type readFunc func(step int) (models.Reading, error)

// pump runs the ticker/producer and dispatch goroutines shared by the
// polling backends.
//
//	ticker ──► read ──► buffered chan ──► dispatch ──► Handler
type pump struct {
	name  string
	depth int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	produced uint64
	dropped  uint64
	failed   uint64
}

func (p *pump) start(interval time.Duration, read readFunc, h Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyStarted
	}
	if interval <= 0 {
		return fmt.Errorf("%s: invalid update interval %v", p.name, interval)
	}
	depth := p.depth
	if depth <= 0 {
		depth = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	out := make(chan models.Reading, depth)

	p.wg.Add(2)
	go p.produce(ctx, interval, read, out)
	go p.dispatch(out, h)

	utils.L().Info("%s reader started   (interval=%v, buffer=%d)", p.name, interval, depth)
	return nil
}

func (p *pump) produce(ctx context.Context, interval time.Duration, read readFunc, out chan<- models.Reading) {
	defer p.wg.Done()
	defer close(out)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var step int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r, err := read(step)
			step++
			if err != nil {
				if atomic.AddUint64(&p.failed, 1) == 1 {
					utils.L().Warn("%s read failed: %v", p.name, err)
				}
				continue
			}
			select {
			case out <- r:
				atomic.AddUint64(&p.produced, 1)
			default:
				atomic.AddUint64(&p.dropped, 1)
			}
		}
	}
}

func (p *pump) dispatch(in <-chan models.Reading, h Handler) {
	defer p.wg.Done()
	for r := range in {
		h(r)
	}
}

func (p *pump) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.wg.Wait()

	produced, dropped := p.Stats()
	utils.L().Info("%s reader stopped   (produced=%d, dropped=%d, failed=%d)",
		p.name, produced, dropped, atomic.LoadUint64(&p.failed))
}

// Stats returns produce/drop counters.
func (p *pump) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&p.produced), atomic.LoadUint64(&p.dropped)
}

// Unavailable is a backend with no sensor hardware.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) StartUpdates(time.Duration, Handler) error { return ErrSensorUnavailable }

func (Unavailable) StopUpdates() {}
