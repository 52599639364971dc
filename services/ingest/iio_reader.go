package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"motion-logger/models"
	"motion-logger/utils"
)

// IIOReader polls a Linux Industrial I/O accelerometer through sysfs.
//
// IIO reports proper acceleration (gravity included) in m/s² after
// applying (raw + offset) * scale. Gravity is tracked per axis with a
// first-order low-pass filter and subtracted, so delivered readings are
// user acceleration.
type IIOReader struct {
	cfg utils.IIOConfig

	mu      sync.Mutex
	gravity [3]float64
	primed  bool

	pump *pump
}

var iioAxes = [3]string{"x", "y", "z"}

func NewIIOReader(cfg utils.IIOConfig) *IIOReader {
	if cfg.LowPass <= 0 || cfg.LowPass >= 1 {
		cfg.LowPass = 0.8
	}
	return &IIOReader{
		cfg:  cfg,
		pump: &pump{name: "iio", depth: 16},
	}
}

// Available reports whether the z channel can be read.
func (r *IIOReader) Available() bool {
	_, err := r.readAxis("z")
	return err == nil
}

func (r *IIOReader) StartUpdates(interval time.Duration, h Handler) error {
	if !r.Available() {
		return ErrSensorUnavailable
	}
	r.mu.Lock()
	r.primed = false
	r.mu.Unlock()
	return r.pump.start(interval, func(int) (models.Reading, error) { return r.Read() }, h)
}

func (r *IIOReader) StopUpdates() { r.pump.stop() }

// Stats returns produce/drop counters.
func (r *IIOReader) Stats() (uint64, uint64) { return r.pump.Stats() }

// Read samples every available axis once and returns gravity-free
// acceleration. The z axis is required; x and y default to zero when the
// device does not expose them.
func (r *IIOReader) Read() (models.Reading, error) {
	var proper [3]float64
	for i, axis := range iioAxes {
		v, err := r.readAxis(axis)
		if err != nil {
			if axis == "z" {
				return models.Reading{}, err
			}
			continue
		}
		proper[i] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.primed {
		r.gravity = proper
		r.primed = true
	}
	var user [3]float64
	a := r.cfg.LowPass
	for i := range proper {
		r.gravity[i] = a*r.gravity[i] + (1-a)*proper[i]
		user[i] = proper[i] - r.gravity[i]
	}
	return models.Reading{X: user[0], Y: user[1], Z: user[2]}, nil
}

func (r *IIOReader) readAxis(axis string) (float64, error) {
	raw, err := r.readFloat("in_accel_" + axis + "_raw")
	if err != nil {
		return 0, err
	}
	scale, err := r.readFloat("in_accel_"+axis+"_scale", "in_accel_scale")
	if err != nil {
		scale = 1
	}
	offset, err := r.readFloat("in_accel_"+axis+"_offset", "in_accel_offset")
	if err != nil {
		offset = 0
	}
	return (raw + offset) * scale, nil
}

// readFloat returns the first attribute among names that exists.
func (r *IIOReader) readFloat(names ...string) (float64, error) {
	var lastErr error
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(r.cfg.DevicePath, name))
		if err != nil {
			lastErr = err
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			return 0, fmt.Errorf("iio %s: %w", name, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("iio read: %w", lastErr)
}
