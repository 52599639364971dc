package views

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-logger/models"
)

func series(values ...float64) []models.Sample {
	out := make([]models.Sample, len(values))
	for i, v := range values {
		out[i] = models.Sample{Timestamp: t0.Add(time.Duration(i) * 100 * time.Millisecond), Value: v}
	}
	return out
}

func TestPolyline(t *testing.T) {
	pts := Polyline(series(-1, 0, 1), 100, 50)
	require.Len(t, pts, 3)
	assert.Equal(t, Point{X: 0, Y: 50}, pts[0])
	assert.Equal(t, Point{X: 50, Y: 25}, pts[1])
	assert.Equal(t, Point{X: 100, Y: 0}, pts[2])
}

func TestPolyline_Degenerate(t *testing.T) {
	assert.Nil(t, Polyline(nil, 100, 50))
	assert.Nil(t, Polyline(series(0.3), 100, 50))

	flat := Polyline(series(0.2, 0.2), 10, 40)
	require.Len(t, flat, 2)
	assert.Equal(t, 20.0, flat[0].Y)
	assert.Equal(t, 20.0, flat[1].Y)
}

func TestYAxisLabels(t *testing.T) {
	labels := YAxisLabels(series(0, 1), 100)
	require.Len(t, labels, 6)
	assert.Equal(t, Label{Pos: 100, Text: "0.00"}, labels[0])
	assert.Equal(t, "0.60", labels[3].Text)
	assert.Equal(t, Label{Pos: 0, Text: "1.00"}, labels[5])

	assert.Nil(t, YAxisLabels(nil, 100))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▅█", Sparkline(series(0, 0.5, 1), 10))
	assert.Equal(t, "▁█", Sparkline(series(5, 0, 1), 2), "keeps the newest samples")
	assert.Equal(t, "▅▅", Sparkline(series(3, 3), 4))
	assert.Empty(t, Sparkline(nil, 4))
	assert.Equal(t, 40, utf8.RuneCountInString(Sparkline(series(make([]float64, 80)...), 40)))
}

func TestBounds(t *testing.T) {
	lo, hi, ok := Bounds(series(0.5, -2, 3))
	require.True(t, ok)
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 3.0, hi)

	_, _, ok = Bounds(nil)
	assert.False(t, ok)
}

func TestXAxisLabels(t *testing.T) {
	labels := XAxisLabels(series(make([]float64, 120)...), 5*time.Second)
	require.Len(t, labels, 3)
	assert.Equal(t, Label{Pos: 0, Text: ":00"}, labels[0])
	assert.Equal(t, Label{Pos: 50, Text: ":05"}, labels[1])
	assert.Equal(t, Label{Pos: 100, Text: ":10"}, labels[2])

	assert.Nil(t, XAxisLabels(nil, 5*time.Second))
	assert.Nil(t, XAxisLabels(series(1), 0))
}

func TestXAxisLabels_SkipsGaps(t *testing.T) {
	s := []models.Sample{
		{Timestamp: t0, Value: 0},
		{Timestamp: t0.Add(12 * time.Second), Value: 0},
		{Timestamp: t0.Add(13 * time.Second), Value: 0},
		{Timestamp: t0.Add(15 * time.Second), Value: 0},
	}
	labels := XAxisLabels(s, 5*time.Second)
	require.Len(t, labels, 3)
	assert.Equal(t, ":12", labels[1].Text)
	assert.Equal(t, 3.0, labels[2].Pos)
}

func TestTail_BoundsMatchDrawnSamples(t *testing.T) {
	values := []float64{5}
	for i := 0; i < 199; i++ {
		values = append(values, float64(i%2)*0.1)
	}
	tail := Tail(series(values...), 64)
	require.Len(t, tail, 64)

	lo, hi, ok := Bounds(tail)
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.1, hi)

	labels := YAxisLabels(tail, 7)
	assert.Equal(t, "0.10", labels[5].Text)
	assert.Len(t, Tail(series(1, 2), 10), 2)
	assert.Nil(t, Tail(series(1, 2), 0))
}
