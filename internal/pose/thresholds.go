package pose

import (
	"errors"
	"fmt"
)

// Thresholds are the heuristic constants the pose rules compare against.
type Thresholds struct {
	// AlignmentTolerance is the largest shoulder/hip horizontal offset,
	// as a fraction of frame width, still counted as upright.
	AlignmentTolerance float64 `json:"alignment_tolerance" yaml:"alignment_tolerance" mapstructure:"alignment_tolerance"`

	// ArmExtension is the minimum elbow angle in degrees for a relaxed, straight arm.
	ArmExtension float64 `json:"arm_extension" yaml:"arm_extension" mapstructure:"arm_extension"`

	// LegSymmetry is the minimum knee angle difference in degrees between
	// a standing and a raised leg.
	LegSymmetry float64 `json:"leg_symmetry" yaml:"leg_symmetry" mapstructure:"leg_symmetry"`

	// BendLimit is the knee angle in degrees above which a leg counts as unbent.
	BendLimit float64 `json:"bend_limit" yaml:"bend_limit" mapstructure:"bend_limit"`

	// PassScore is the score at or above which a frame is a pass. It selects
	// both the feedback text and the overlay colour.
	PassScore int `json:"pass_score" yaml:"pass_score" mapstructure:"pass_score"`

	// MinVisibility drops landmarks whose visibility is below it before
	// scoring. Zero disables the filter.
	MinVisibility float64 `json:"min_visibility" yaml:"min_visibility" mapstructure:"min_visibility"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AlignmentTolerance: 0.05,
		ArmExtension:       160,
		LegSymmetry:        30,
		BendLimit:          120,
		PassScore:          70,
		MinVisibility:      0,
	}
}

// Validate checks that every threshold is within its meaningful range.
func (t Thresholds) Validate() error {
	var errs []error
	if t.AlignmentTolerance < 0 || t.AlignmentTolerance > 1 {
		errs = append(errs, fmt.Errorf("alignment_tolerance %v outside [0, 1]", t.AlignmentTolerance))
	}
	if t.ArmExtension < 0 || t.ArmExtension > 180 {
		errs = append(errs, fmt.Errorf("arm_extension %v outside [0, 180]", t.ArmExtension))
	}
	if t.LegSymmetry < 0 || t.LegSymmetry > 180 {
		errs = append(errs, fmt.Errorf("leg_symmetry %v outside [0, 180]", t.LegSymmetry))
	}
	if t.BendLimit < 0 || t.BendLimit > 180 {
		errs = append(errs, fmt.Errorf("bend_limit %v outside [0, 180]", t.BendLimit))
	}
	if t.PassScore < 0 || t.PassScore > MaxScore {
		errs = append(errs, fmt.Errorf("pass_score %d outside [0, %d]", t.PassScore, MaxScore))
	}
	if t.MinVisibility < 0 || t.MinVisibility > 1 {
		errs = append(errs, fmt.Errorf("min_visibility %v outside [0, 1]", t.MinVisibility))
	}
	return errors.Join(errs...)
}

// Passed reports whether score clears the pass threshold.
func (t Thresholds) Passed(score int) bool {
	return score >= t.PassScore
}
