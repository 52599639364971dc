package ingest

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"motion-logger/models"
	"motion-logger/utils"
)

// SimulatedReader synthesises user acceleration: a sine on the z axis plus
// uniform noise on every axis. It stands in for a device's motion
// coprocessor on machines without one.
type SimulatedReader struct {
	cfg utils.SimulationConfig

	rngMu sync.Mutex
	rng   *rand.Rand

	interval time.Duration
	pump     *pump
}

func NewSimulatedReader(cfg utils.SimulationConfig, seed int64) *SimulatedReader {
	return &SimulatedReader{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		pump: &pump{name: "simulated", depth: cfg.ChannelDepth},
	}
}

func (r *SimulatedReader) Available() bool { return r.cfg.Available }

func (r *SimulatedReader) StartUpdates(interval time.Duration, h Handler) error {
	if !r.cfg.Available {
		return ErrSensorUnavailable
	}
	r.interval = interval
	return r.pump.start(interval, r.read, h)
}

func (r *SimulatedReader) StopUpdates() { r.pump.stop() }

// Stats returns produce/drop counters.
func (r *SimulatedReader) Stats() (uint64, uint64) { return r.pump.Stats() }

func (r *SimulatedReader) read(step int) (models.Reading, error) {
	return r.at(time.Duration(step) * r.interval), nil
}

// at returns the synthetic reading t after the start of updates.
func (r *SimulatedReader) at(t time.Duration) models.Reading {
	phase := 2 * math.Pi * r.cfg.FrequencyHz * t.Seconds()
	zG := r.cfg.AmplitudeG*math.Sin(phase) + r.noise()
	return models.Reading{
		X: r.noise() * models.StandardGravity,
		Y: r.noise() * models.StandardGravity,
		Z: zG * models.StandardGravity,
	}
}

func (r *SimulatedReader) noise() float64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return (r.rng.Float64()*2 - 1) * r.cfg.NoiseG
}
