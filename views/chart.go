package views

import (
	"fmt"
	"strings"
	"time"

	"motion-logger/models"
)

// Point is a position on a drawing surface; y grows downward.
type Point struct {
	X, Y float64
}

// Label is an axis tick at Pos with display Text.
type Label struct {
	Pos  float64
	Text string
}

const sparkBlocks = "▁▂▃▄▅▆▇█"

// Bounds returns the min and max sample values. ok is false for an empty
// series.
func Bounds(series []models.Sample) (lo, hi float64, ok bool) {
	if len(series) == 0 {
		return 0, 0, false
	}
	lo, hi = series[0].Value, series[0].Value
	for _, s := range series[1:] {
		lo = min(lo, s.Value)
		hi = max(hi, s.Value)
	}
	return lo, hi, true
}

// normalize maps v into [0,1] over [lo,hi]; a flat range maps to the
// middle.
func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// Polyline maps series onto a width×height surface: samples are spread
// evenly along x by index, and y is min/max normalised with the maximum
// at the top. Fewer than two samples produce no line.
func Polyline(series []models.Sample, width, height float64) []Point {
	if len(series) < 2 {
		return nil
	}
	lo, hi, _ := Bounds(series)
	stepX := width / float64(len(series)-1)

	pts := make([]Point, len(series))
	for i, s := range series {
		pts[i] = Point{
			X: float64(i) * stepX,
			Y: height - normalize(s.Value, lo, hi)*height,
		}
	}
	return pts
}

// YAxisLabels returns six evenly spaced value ticks from min to max,
// positioned like Polyline's y.
func YAxisLabels(series []models.Sample, height float64) []Label {
	lo, hi, ok := Bounds(series)
	if !ok {
		return nil
	}
	step := (hi - lo) / 5
	labels := make([]Label, 0, 6)
	for i := 0; i <= 5; i++ {
		v := lo + step*float64(i)
		labels = append(labels, Label{
			Pos:  height - normalize(v, lo, hi)*height,
			Text: fmt.Sprintf("%.2f", v),
		})
	}
	return labels
}

// XAxisLabels returns a time tick for each interval elapsed since the
// first sample, placed at the index of the first sample reaching it. Pos matches
// Polyline's x when width is len(series)-1. Text is the wall-clock second.
func XAxisLabels(series []models.Sample, every time.Duration) []Label {
	if len(series) == 0 || every <= 0 {
		return nil
	}
	first := series[0].Timestamp
	var (
		labels []Label
		next   time.Duration
	)
	for i, s := range series {
		off := s.Timestamp.Sub(first)
		if off < next {
			continue
		}
		labels = append(labels, Label{Pos: float64(i), Text: s.Timestamp.Format(":05")})
		next = (off/every + 1) * every
	}
	return labels
}

// Tail returns the newest n samples of series.
func Tail(series []models.Sample, n int) []models.Sample {
	if n <= 0 {
		return nil
	}
	if len(series) > n {
		return series[len(series)-n:]
	}
	return series
}

// Sparkline renders the newest width samples as block characters.
func Sparkline(series []models.Sample, width int) string {
	series = Tail(series, width)
	if len(series) == 0 {
		return ""
	}
	lo, hi, _ := Bounds(series)
	blocks := []rune(sparkBlocks)
	top := len(blocks) - 1

	var sb strings.Builder
	for _, s := range series {
		idx := int(normalize(s.Value, lo, hi)*float64(top) + 0.5)
		sb.WriteRune(blocks[min(max(idx, 0), top)])
	}
	return sb.String()
}
