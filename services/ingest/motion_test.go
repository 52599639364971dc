package ingest

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-logger/models"
	"motion-logger/utils"
)

func TestMain(m *testing.M) {
	utils.SetLogger(utils.NewNopLogger())
	os.Exit(m.Run())
}

func simConfig() utils.SimulationConfig {
	return utils.SimulationConfig{Available: true, AmplitudeG: 0.5, FrequencyHz: 1, ChannelDepth: 4}
}

func TestNewMotionService(t *testing.T) {
	svc, err := NewMotionService(utils.SensorConfig{Backend: utils.BackendSimulated, Simulation: simConfig()})
	require.NoError(t, err)
	assert.IsType(t, &SimulatedReader{}, svc)

	svc, err = NewMotionService(utils.SensorConfig{Backend: utils.BackendIIO})
	require.NoError(t, err)
	assert.IsType(t, &IIOReader{}, svc)

	svc, err = NewMotionService(utils.SensorConfig{Backend: utils.BackendUnavailable})
	require.NoError(t, err)
	assert.False(t, svc.Available())
	assert.ErrorIs(t, svc.StartUpdates(100*time.Millisecond, func(models.Reading) {}), ErrSensorUnavailable)

	_, err = NewMotionService(utils.SensorConfig{Backend: "gyro"})
	require.Error(t, err)
}

func TestSimulatedReader_DeliversAndStops(t *testing.T) {
	r := NewSimulatedReader(simConfig(), 1)
	require.True(t, r.Available())

	var n atomic.Int64
	require.NoError(t, r.StartUpdates(5*time.Millisecond, func(models.Reading) { n.Add(1) }))
	assert.ErrorIs(t, r.StartUpdates(5*time.Millisecond, func(models.Reading) {}), ErrAlreadyStarted)

	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	r.StopUpdates()

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "no delivery after StopUpdates returns")

	produced, _ := r.Stats()
	assert.GreaterOrEqual(t, produced, uint64(after))

	// restartable
	require.NoError(t, r.StartUpdates(5*time.Millisecond, func(models.Reading) { n.Add(1) }))
	r.StopUpdates()
	r.StopUpdates()
}

func TestSimulatedReader_HandlerCallsAreSerialised(t *testing.T) {
	r := NewSimulatedReader(simConfig(), 2)

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		calls   atomic.Int64
	)
	require.NoError(t, r.StartUpdates(time.Millisecond, func(models.Reading) {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		calls.Add(1)
	}))
	require.Eventually(t, func() bool { return calls.Load() >= 5 }, 2*time.Second, time.Millisecond)
	r.StopUpdates()

	assert.False(t, overlap)
}

func TestSimulatedReader_Unavailable(t *testing.T) {
	cfg := simConfig()
	cfg.Available = false
	r := NewSimulatedReader(cfg, 1)
	assert.False(t, r.Available())
	assert.ErrorIs(t, r.StartUpdates(time.Millisecond, func(models.Reading) {}), ErrSensorUnavailable)
}

func TestSimulatedReader_SineWithoutNoise(t *testing.T) {
	r := NewSimulatedReader(simConfig(), 1)

	assert.InDelta(t, 0, r.at(0).Z, 1e-9)
	assert.InDelta(t, 0.5*models.StandardGravity, r.at(250*time.Millisecond).Z, 1e-9)
	assert.InDelta(t, -0.5, r.at(750*time.Millisecond).ZInG(), 1e-9)
}

func writeAttr(t *testing.T, dir, name, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644))
}

func TestIIOReader_RemovesGravity(t *testing.T) {
	dir := t.TempDir()
	writeAttr(t, dir, "in_accel_z_raw", "1000")
	writeAttr(t, dir, "in_accel_scale", "0.00981")

	r := NewIIOReader(utils.IIOConfig{DevicePath: dir, LowPass: 0.5})
	require.True(t, r.Available())

	first, err := r.Read()
	require.NoError(t, err)
	assert.InDelta(t, 0, first.Z, 1e-9, "steady gravity reads as zero user acceleration")

	// a 1 g jolt upward: proper = 19.62, gravity estimate moves halfway
	writeAttr(t, dir, "in_accel_z_raw", "2000")
	jolt, err := r.Read()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, jolt.ZInG(), 1e-9)
	assert.Zero(t, jolt.X)
}

func TestIIOReader_PerAxisScaleAndOffset(t *testing.T) {
	dir := t.TempDir()
	writeAttr(t, dir, "in_accel_z_raw", "10")
	writeAttr(t, dir, "in_accel_z_scale", "2")
	writeAttr(t, dir, "in_accel_scale", "100")
	writeAttr(t, dir, "in_accel_z_offset", "-4")

	r := NewIIOReader(utils.IIOConfig{DevicePath: dir})
	v, err := r.readAxis("z")
	require.NoError(t, err)
	assert.InDelta(t, 12, v, 1e-9)
}

func TestIIOReader_Unavailable(t *testing.T) {
	r := NewIIOReader(utils.IIOConfig{DevicePath: filepath.Join(t.TempDir(), "missing")})
	assert.False(t, r.Available())
	assert.ErrorIs(t, r.StartUpdates(time.Millisecond, func(models.Reading) {}), ErrSensorUnavailable)

	dir := t.TempDir()
	writeAttr(t, dir, "in_accel_z_raw", "not-a-number")
	_, err := NewIIOReader(utils.IIOConfig{DevicePath: dir}).Read()
	require.Error(t, err)
}
