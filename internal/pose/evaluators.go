package pose

import (
	"math"

	"github.com/ayusman/tadasana/internal/detector"
)

// Penalty points subtracted when a rule fires.
const (
	MisalignedTorsoPenalty = 20
	BentArmsPenalty        = 15
	SymmetricLegsPenalty   = 30
	NotSeatedPenalty       = 30
	NotFoldedPenalty       = 40
	StraightLegsPenalty    = 30
)

// Penalty is one violated rule.
type Penalty struct {
	Rule       string `json:"rule"`
	Points     int    `json:"points"`
	Correction string `json:"correction"`
}

// Evaluator applies the rules of a single pose. Every rule checks for its own
// inputs and is skipped when a landmark or angle is unknown.
type Evaluator interface {
	Target() Target
	Penalties(set *detector.LandmarkSet, angles AngleMap, th Thresholds) []Penalty
	Feedback(passed bool) string
}

type mountainEvaluator struct{}

func (mountainEvaluator) Target() Target { return Mountain }

func (mountainEvaluator) Penalties(set *detector.LandmarkSet, angles AngleMap, th Thresholds) []Penalty {
	var out []Penalty

	shoulder, okS := set.Get(detector.LeftShoulder)
	hip, okH := set.Get(detector.LeftHip)
	if okS && okH && math.Abs(shoulder.X-hip.X) > th.AlignmentTolerance {
		out = append(out, Penalty{
			Rule:       "torso_alignment",
			Points:     MisalignedTorsoPenalty,
			Correction: "Stack your shoulders directly over your hips",
		})
	}

	if below(angles, LeftArm, th.ArmExtension) || below(angles, RightArm, th.ArmExtension) {
		out = append(out, Penalty{
			Rule:       "arm_extension",
			Points:     BentArmsPenalty,
			Correction: "Let your arms hang long and relaxed",
		})
	}

	return out
}

func (mountainEvaluator) Feedback(passed bool) string {
	if passed {
		return "Great mountain pose!"
	}
	return "Stand straighter and relax shoulders"
}

type treeEvaluator struct{}

func (treeEvaluator) Target() Target { return Tree }

func (treeEvaluator) Penalties(_ *detector.LandmarkSet, angles AngleMap, th Thresholds) []Penalty {
	left, okL := angles.Get(LeftLeg)
	right, okR := angles.Get(RightLeg)
	if okL && okR && math.Abs(left-right) < th.LegSymmetry {
		return []Penalty{{
			Rule:       "leg_asymmetry",
			Points:     SymmetricLegsPenalty,
			Correction: "Lift one foot to your inner thigh and keep the standing leg straight",
		}}
	}
	return nil
}

func (treeEvaluator) Feedback(passed bool) string {
	if passed {
		return "Excellent balance!"
	}
	return "Focus on balance and alignment"
}

type sukasanaEvaluator struct{}

func (sukasanaEvaluator) Target() Target { return Sukasana }

func (sukasanaEvaluator) Penalties(set *detector.LandmarkSet, _ AngleMap, _ Thresholds) []Penalty {
	shoulder, okS := set.Get(detector.LeftShoulder)
	hip, okH := set.Get(detector.LeftHip)
	// Image y grows downward: a seated hip sits at or below the shoulder.
	if okS && okH && hip.Y < shoulder.Y {
		return []Penalty{{
			Rule:       "seated",
			Points:     NotSeatedPenalty,
			Correction: "Sit down with your hips grounded",
		}}
	}
	return nil
}

func (sukasanaEvaluator) Feedback(passed bool) string {
	if passed {
		return "Perfect meditation pose!"
	}
	return "Sit up straighter"
}

type childsPoseEvaluator struct{}

func (childsPoseEvaluator) Target() Target { return ChildsPose }

func (childsPoseEvaluator) Penalties(set *detector.LandmarkSet, _ AngleMap, _ Thresholds) []Penalty {
	head, okN := set.Get(detector.Nose)
	hip, okH := set.Get(detector.LeftHip)
	if okN && okH && head.Y < hip.Y {
		return []Penalty{{
			Rule:       "forward_fold",
			Points:     NotFoldedPenalty,
			Correction: "Lower your forehead toward the mat",
		}}
	}
	return nil
}

func (childsPoseEvaluator) Feedback(passed bool) string {
	if passed {
		return "Relaxing child's pose!"
	}
	return "Fold forward more"
}

type warrior2Evaluator struct{}

func (warrior2Evaluator) Target() Target { return Warrior2 }

func (warrior2Evaluator) Penalties(_ *detector.LandmarkSet, angles AngleMap, th Thresholds) []Penalty {
	left, okL := angles.Get(LeftLeg)
	right, okR := angles.Get(RightLeg)
	if okL && okR && math.Min(left, right) > th.BendLimit {
		return []Penalty{{
			Rule:       "front_knee_bend",
			Points:     StraightLegsPenalty,
			Correction: "Bend your front knee over the ankle",
		}}
	}
	return nil
}

func (warrior2Evaluator) Feedback(passed bool) string {
	if passed {
		return "Strong warrior!"
	}
	return "Bend front knee and extend arms"
}

// below reports whether joint j is known and under limit.
func below(angles AngleMap, j Joint, limit float64) bool {
	v, ok := angles.Get(j)
	return ok && v < limit
}

// defaultEvaluators returns one evaluator per Target.
func defaultEvaluators() map[Target]Evaluator {
	evals := []Evaluator{
		mountainEvaluator{},
		treeEvaluator{},
		sukasanaEvaluator{},
		childsPoseEvaluator{},
		warrior2Evaluator{},
	}
	out := make(map[Target]Evaluator, len(evals))
	for _, e := range evals {
		out[e.Target()] = e
	}
	return out
}
