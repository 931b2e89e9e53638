package renderer

import (
	"sync"
	"time"
)

// Progress tracks a render in flight so it can be watched from another
// goroutine.  All methods are safe on a nil *Progress.
type Progress struct {
	mu sync.Mutex

	rows     int
	rowsDone int
	pixels   int
	traced   int
	samples  int64
	started  time.Time
	finished time.Time
	err      error
}

// ProgressSnapshot is a consistent copy of a Progress.
type ProgressSnapshot struct {
	Rows         int
	RowsDone     int
	Pixels       int
	PixelsTraced int
	Samples      int64

	Started time.Time
	Elapsed time.Duration

	Running bool
	Done    bool
	Err     error
}

// MeanSamples is the average samples per traced pixel.
func (p ProgressSnapshot) MeanSamples() float64 {
	if p.PixelsTraced == 0 {
		return 0
	}
	return float64(p.Samples) / float64(p.PixelsTraced)
}

// Fraction is the completed share of rows, in [0, 1].
func (p ProgressSnapshot) Fraction() float64 {
	if p.Rows == 0 {
		return 0
	}
	return float64(p.RowsDone) / float64(p.Rows)
}

func (p *Progress) begin(rows, pixels int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = rows
	p.rowsDone = 0
	p.pixels = pixels
	p.traced = 0
	p.samples = 0
	p.started = time.Now()
	p.finished = time.Time{}
	p.err = nil
}

func (p *Progress) rowDone(pixels int, samples int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rowsDone++
	p.traced += pixels
	p.samples += samples
}

func (p *Progress) finish(err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = time.Now()
	p.err = err
}

func (p *Progress) Snapshot() ProgressSnapshot {
	if p == nil {
		return ProgressSnapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s := ProgressSnapshot{
		Rows:         p.rows,
		RowsDone:     p.rowsDone,
		Pixels:       p.pixels,
		PixelsTraced: p.traced,
		Samples:      p.samples,
		Started:      p.started,
		Err:          p.err,
	}
	switch {
	case p.started.IsZero():
	case p.finished.IsZero():
		s.Running = true
		s.Elapsed = time.Since(p.started)
	default:
		s.Done = true
		s.Elapsed = p.finished.Sub(p.started)
	}
	return s
}
