package pose

import (
	"fmt"
	"math"

	"github.com/ayusman/tadasana/internal/detector"
)

// MaxScore is the score of a frame that breaks no rule.
const MaxScore = 100

// Result is the outcome of scoring one frame.
type Result struct {
	Target      Target   `json:"target"`
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Passed      bool     `json:"passed"`
	Corrections []string `json:"corrections"`
	Angles      AngleMap `json:"angles"`
}

// Scorer dispatches frames to the Evaluator of the requested Target.
// It holds no per-frame state and is safe for concurrent use.
type Scorer struct {
	thresholds Thresholds
	evaluators map[Target]Evaluator
}

// NewScorer creates a Scorer with the given thresholds.
func NewScorer(th Thresholds) (*Scorer, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return &Scorer{
		thresholds: th,
		evaluators: defaultEvaluators(),
	}, nil
}

// Thresholds returns the thresholds the scorer was built with.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score measures joint angles from set and scores them against target.
func (s *Scorer) Score(set *detector.LandmarkSet, target Target) (Result, error) {
	filtered := set.WithMinVisibility(s.thresholds.MinVisibility)
	return s.Evaluate(filtered, ComputeAngles(filtered), target)
}

// Evaluate scores precomputed angles. The score starts at MaxScore, loses
// the points of every fired rule and is floored at zero.
func (s *Scorer) Evaluate(set *detector.LandmarkSet, angles AngleMap, target Target) (Result, error) {
	eval, ok := s.evaluators[target]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	penalties := eval.Penalties(set, angles, s.thresholds)

	raw := float64(MaxScore)
	corrections := make([]string, 0, len(penalties))
	for _, p := range penalties {
		raw -= float64(p.Points)
		corrections = append(corrections, p.Correction)
	}
	score := int(math.Round(math.Max(0, raw)))

	passed := s.thresholds.Passed(score)
	return Result{
		Target:      target,
		Score:       score,
		Feedback:    eval.Feedback(passed),
		Passed:      passed,
		Corrections: corrections,
		Angles:      angles,
	}, nil
}
