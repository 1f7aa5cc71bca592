package pose

import (
	"gonum.org/v1/gonum/stat"
)

// Summary describes a run of scored frames.
type Summary struct {
	Frames       int     `json:"frames"`
	PassedFrames int     `json:"passed_frames"`
	BestScore    int     `json:"best_score"`
	MeanScore    float64 `json:"mean_score"`
	StddevScore  float64 `json:"stddev_score"`
}

// PassRate is the fraction of frames that passed, or zero for an empty run.
func (s Summary) PassRate() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.PassedFrames) / float64(s.Frames)
}

// Tally accumulates results into a Summary. The zero value is ready to use;
// it is not safe for concurrent use.
type Tally struct {
	scores []float64
	passed int
	best   int
}

// Add records one scored frame.
func (t *Tally) Add(r Result) {
	t.scores = append(t.scores, float64(r.Score))
	if r.Passed {
		t.passed++
	}
	if r.Score > t.best {
		t.best = r.Score
	}
}

// Len returns the number of recorded frames.
func (t *Tally) Len() int {
	return len(t.scores)
}

// Summary computes the run statistics. The standard deviation is the
// sample deviation and is zero for fewer than two frames.
func (t *Tally) Summary() Summary {
	s := Summary{
		Frames:       len(t.scores),
		PassedFrames: t.passed,
		BestScore:    t.best,
	}
	switch len(t.scores) {
	case 0:
	case 1:
		s.MeanScore = t.scores[0]
	default:
		s.MeanScore, s.StddevScore = stat.MeanStdDev(t.scores, nil)
	}
	return s
}
