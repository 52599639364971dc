package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ─── shared formatting helpers ──────────────────────────────────────────

// FormatElapsed renders d as HH:MM:SS.mmm. Hours are total hours and may
// exceed 23. Negative durations render as zero.
func FormatElapsed(d time.Duration) string {
	return elapsed(d)
}

// FormatG renders an acceleration value as the shortest decimal that
// round-trips, always with a fractional part ("0.0", "-0.0204").
// Negative zero is written as "0.0".
func FormatG(v float64) string {
	return gtoa(v)
}

func elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		ms/3_600_000,
		(ms/60_000)%60,
		(ms/1000)%60,
		ms%1000,
	)
}

func gtoa(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		return "0.0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// CSVRowWriter is satisfied by models that serialise relative to a session
// start time.
type CSVRowWriter interface {
	CSVHeader() []string
	CSVRow(start time.Time) []string
}
