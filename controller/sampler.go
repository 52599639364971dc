package controller

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"motion-logger/models"
	"motion-logger/services/ingest"
	"motion-logger/utils"
)

const (
	// SampleInterval is the fixed motion update interval (10 Hz).
	SampleInterval = 100 * time.Millisecond
	// RetentionWindow bounds how far back the series reaches.
	RetentionWindow = 20 * time.Second
)

// ErrSensorUnavailable is returned by Start when the motion service has no
// usable accelerometer.
var ErrSensorUnavailable = ingest.ErrSensorUnavailable

// ErrClosed is returned by Start and Toggle once the sampler is closed.
var ErrClosed = errors.New("sampler closed")

// Sampler owns the rolling acceleration series and the measuring session.
//
// Readings arrive on the motion service's dispatch goroutine; every
// mutation of the series and session happens under mu. Control operations
// are serialised by ctl so the service is never subscribed twice, and mu
// is never held while calling into the service.
type Sampler struct {
	svc   ingest.MotionService
	clock utils.Clock

	ctl        sync.Mutex
	subscribed bool

	mu      sync.Mutex
	state   models.SessionState
	series  []models.Sample
	subs    map[int]chan models.Snapshot
	nextSub int
	closed  bool

	accepted   uint64
	discarded  uint64
	notifyDrop uint64
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock replaces the wall clock used to timestamp samples.
func WithClock(c utils.Clock) Option {
	return func(s *Sampler) { s.clock = c }
}

// NewSampler creates an idle sampler over svc.
func NewSampler(svc ingest.MotionService, opts ...Option) *Sampler {
	s := &Sampler{
		svc:   svc,
		clock: utils.SystemClock,
		subs:  make(map[int]chan models.Snapshot),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start begins measuring. It returns ErrSensorUnavailable, leaving all
// state untouched, when the service reports no sensor. The session start
// time is only set if it is not already anchored, so stop/start without a
// reset resumes the same elapsed-time baseline. Starting while already
// measuring is a no-op; starting a closed sampler returns ErrClosed.
func (s *Sampler) Start() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	return s.startLocked()
}

func (s *Sampler) startLocked() error {
	if s.subscribed {
		return nil
	}
	if s.isClosed() {
		return ErrClosed
	}
	if !s.svc.Available() {
		utils.L().Warn("sampler: start refused: %v", ErrSensorUnavailable)
		return ErrSensorUnavailable
	}

	s.mu.Lock()
	prev := s.state
	if s.state.StartTime.IsZero() {
		s.state.StartTime = s.clock()
		s.state.SessionID = uuid.NewString()
	}
	s.state.Measuring = true
	s.mu.Unlock()

	if err := s.svc.StartUpdates(SampleInterval, s.onReading); err != nil {
		s.mu.Lock()
		s.state = prev
		s.mu.Unlock()
		utils.L().Warn("sampler: start updates: %v", err)
		return err
	}
	s.subscribed = true
	s.notify()

	st := s.State()
	utils.L().Info("sampler started   (session=%s, since=%s)",
		st.SessionID, st.StartTime.Format(time.RFC3339Nano))
	return nil
}

// Stop ends measuring and unsubscribes from the service. The series and
// the session start time are kept.
func (s *Sampler) Stop() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stopLocked()
}

func (s *Sampler) stopLocked() {
	s.mu.Lock()
	wasMeasuring := s.state.Measuring
	s.state.Measuring = false
	s.mu.Unlock()

	if s.subscribed {
		s.svc.StopUpdates()
		s.subscribed = false
	}
	if wasMeasuring {
		s.notify()
		utils.L().Info("sampler stopped   (resident=%d, accepted=%d, discarded=%d)",
			s.Len(), atomic.LoadUint64(&s.accepted), atomic.LoadUint64(&s.discarded))
	}
}

// Toggle flips the measuring flag, starting or stopping accordingly. A
// failed start leaves the sampler stopped.
func (s *Sampler) Toggle() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	if s.IsMeasuring() {
		s.stopLocked()
		return nil
	}
	return s.startLocked()
}

// Reset clears the series and the session anchor. The measuring flag is
// unchanged.
func (s *Sampler) Reset() {
	s.mu.Lock()
	s.series = nil
	s.state.StartTime = time.Time{}
	s.state.SessionID = ""
	s.mu.Unlock()

	s.notify()
	utils.L().Info("sampler reset")
}

// Close stops sampling and closes every subscription channel.
func (s *Sampler) Close() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stopLocked()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Sampler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// onReading runs on the service's dispatch goroutine.
func (s *Sampler) onReading(r models.Reading) {
	s.mu.Lock()
	if !s.state.Measuring {
		s.mu.Unlock()
		atomic.AddUint64(&s.discarded, 1)
		return
	}
	s.appendLocked(models.Sample{Timestamp: s.clock(), Value: r.ZInG()})
	s.mu.Unlock()

	atomic.AddUint64(&s.accepted, 1)
	s.notify()
}

// appendLocked adds smp and evicts samples older than the retention
// window measured from smp's timestamp.
func (s *Sampler) appendLocked(smp models.Sample) {
	s.series = append(s.series, smp)

	cutoff := smp.Timestamp.Add(-RetentionWindow)
	i := 0
	for i < len(s.series) && s.series[i].Timestamp.Before(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	// copy down so the backing array does not grow without bound
	n := copy(s.series, s.series[i:])
	clear(s.series[n:])
	s.series = s.series[:n]
}

// Snapshot returns an independent copy of the series and session state.
func (s *Sampler) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sampler) snapshotLocked() models.Snapshot {
	series := make([]models.Sample, len(s.series))
	copy(series, s.series)
	return models.Snapshot{SessionState: s.state, Series: series}
}

// State returns the session flags without copying the series.
func (s *Sampler) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsMeasuring reports whether readings are currently accepted.
func (s *Sampler) IsMeasuring() bool {
	return s.State().Measuring
}

// Len returns the number of resident samples.
func (s *Sampler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.series)
}

// Subscribe returns a channel receiving a snapshot after every change.
// Sends never block: when the buffer is full the update is dropped and the
// subscriber catches up on the next one. cancel releases the channel.
func (s *Sampler) Subscribe(buffer int) (<-chan models.Snapshot, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan models.Snapshot, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Sampler) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			atomic.AddUint64(&s.notifyDrop, 1)
		}
	}
}

// Stats returns accepted/discarded reading counters and dropped
// notifications.
func (s *Sampler) Stats() (accepted, discarded, dropped uint64) {
	return atomic.LoadUint64(&s.accepted),
		atomic.LoadUint64(&s.discarded),
		atomic.LoadUint64(&s.notifyDrop)
}
