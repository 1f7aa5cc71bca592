package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing constants.
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21).
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as different.
	DiffThreshold = 25
	// DefaultChangeThreshold is the percentage of changed pixels that makes
	// a frame worth re-detecting.
	DefaultChangeThreshold = 1.0
)

// ChangeGate decides whether a frame differs enough from the last frame
// landmarks were detected on. A practitioner holding a pose produces a run
// of near-identical frames; the gate lets the pipeline reuse the previous
// landmarks for those instead of paying for another detection.
//
// The baseline only moves when a frame is accepted, so slow drift still
// accumulates into a change.
type ChangeGate struct {
	threshold float64
	baseline  gocv.Mat
	hasBase   bool
	mu        sync.Mutex
}

// NewChangeGate creates a gate. threshold is the percentage of pixels that
// must change; values <= 0 use DefaultChangeThreshold.
func NewChangeGate(threshold float64) *ChangeGate {
	if threshold <= 0 {
		threshold = DefaultChangeThreshold
	}
	return &ChangeGate{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Changed reports whether frame should be re-detected along with the
// percentage of pixels that differ from the baseline. The first frame
// after construction or Reset is always a change.
func (g *ChangeGate) Changed(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.hasBase || blurred.Rows() != g.baseline.Rows() || blurred.Cols() != g.baseline.Cols() {
		blurred.CopyTo(&g.baseline)
		g.hasBase = true
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.baseline, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	if changed <= g.threshold {
		return false, changed
	}

	blurred.CopyTo(&g.baseline)
	return true, changed
}

// Reset drops the baseline so the next frame counts as a change.
func (g *ChangeGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasBase = false
}

// Close releases the baseline Mat. The gate may be reused afterwards.
func (g *ChangeGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.baseline.Close()
	g.baseline = gocv.NewMat()
	g.hasBase = false
}
