// Package pose scores body landmarks against a selected yoga pose.
//
// Scoring is a pure function of a landmark frame and a Target: joint angles
// are derived from landmark triples, then the Target's Evaluator subtracts
// fixed penalties from a base of 100 for each rule the frame violates.
// Nothing is retained between calls, so a Scorer may be shared freely.
package pose

import (
	"errors"
	"fmt"
)

// ErrUnknownTarget is returned for a Target outside the supported set.
var ErrUnknownTarget = errors.New("unknown pose target")

// Target identifies the pose the practitioner is attempting.
type Target int

const (
	Mountain Target = iota
	Tree
	Sukasana
	ChildsPose
	Warrior2

	numTargets
)

var targetNames = [numTargets]string{
	Mountain:   "mountain",
	Tree:       "tree",
	Sukasana:   "sukasana",
	ChildsPose: "childs_pose",
	Warrior2:   "warrior2",
}

var displayNames = [numTargets]string{
	Mountain:   "Mountain Pose",
	Tree:       "Tree Pose",
	Sukasana:   "Easy Pose",
	ChildsPose: "Child's Pose",
	Warrior2:   "Warrior II",
}

// Targets returns every supported target in practice order.
func Targets() []Target {
	out := make([]Target, numTargets)
	for i := range out {
		out[i] = Target(i)
	}
	return out
}

// Valid reports whether t is one of the supported targets.
func (t Target) Valid() bool {
	return t >= 0 && t < numTargets
}

// String returns the wire identifier, e.g. "childs_pose".
func (t Target) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return targetNames[t]
}

// DisplayName returns the human-readable pose name.
func (t Target) DisplayName() string {
	if !t.Valid() {
		return t.String()
	}
	return displayNames[t]
}

// Next returns the following target, wrapping after the last.
func (t Target) Next() Target {
	if !t.Valid() {
		return Mountain
	}
	return (t + 1) % numTargets
}

// Previous returns the preceding target, wrapping before the first.
func (t Target) Previous() Target {
	if !t.Valid() {
		return Mountain
	}
	return (t + numTargets - 1) % numTargets
}

// ParseTarget converts a wire identifier into a Target.
func ParseTarget(s string) (Target, error) {
	for i, name := range targetNames {
		if name == s {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTarget, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
