package controller

import (
	"strings"
	"sync/atomic"

	"motion-logger/utils"
	"motion-logger/views"
)

// Exporter is the save path of the pipeline. It serialises the sampler's
// resident series and hands the text to the file-save step.
//
// A failed save leaves the sampler untouched, so Save can simply be
// called again.
type Exporter struct {
	sampler   *Sampler
	dir       string
	overwrite bool
	clock     utils.Clock

	saved  uint64
	failed uint64
}

// NewExporter creates an exporter writing into cfg.Dir.
func NewExporter(s *Sampler, cfg utils.ExportConfig) *Exporter {
	return &Exporter{
		sampler:   s,
		dir:       cfg.Dir,
		overwrite: cfg.Overwrite,
		clock:     s.clock,
	}
}

// CSV renders the current series without stopping the sampler.
func (e *Exporter) CSV() string {
	snap := e.sampler.Snapshot()
	return views.GenerateCSV(snap.Series, snap.StartTime)
}

// Save stops sampling, renders the resident series and writes it to disk.
// It returns the written path.
func (e *Exporter) Save() (string, error) {
	e.sampler.Stop()

	snap := e.sampler.Snapshot()
	var sb strings.Builder
	rows, err := views.WriteSeries(&sb, snap.Series, snap.StartTime)
	if err != nil {
		atomic.AddUint64(&e.failed, 1)
		utils.L().Error("failed to render csv: %v", err)
		return "", err
	}

	path, err := views.SaveCSV(e.dir, sb.String(), e.overwrite, e.clock())
	if err != nil {
		atomic.AddUint64(&e.failed, 1)
		utils.L().Error("failed to save: %v", err)
		return "", err
	}

	atomic.AddUint64(&e.saved, 1)
	utils.L().Info("saved to %s  (rows=%d, type=%s, session=%s)",
		path, rows, views.ExportContentType, snap.SessionID)
	return path, nil
}

// Stats returns the number of successful and failed saves.
func (e *Exporter) Stats() (saved, failed uint64) {
	return atomic.LoadUint64(&e.saved), atomic.LoadUint64(&e.failed)
}
