package pose

import (
	"math"

	"github.com/ayusman/tadasana/internal/detector"
)

// Joint names a limb whose bend is measured at its middle landmark.
type Joint string

const (
	LeftArm  Joint = "leftArm"
	RightArm Joint = "rightArm"
	LeftLeg  Joint = "leftLeg"
	RightLeg Joint = "rightLeg"
)

// jointTriples maps each joint to its (proximal, vertex, distal) landmarks.
var jointTriples = []struct {
	joint   Joint
	a, b, c int
}{
	{LeftArm, detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist},
	{RightArm, detector.RightShoulder, detector.RightElbow, detector.RightWrist},
	{LeftLeg, detector.LeftHip, detector.LeftKnee, detector.LeftAnkle},
	{RightLeg, detector.RightHip, detector.RightKnee, detector.RightAnkle},
}

// AngleMap holds joint angles in degrees. A joint that could not be measured
// is absent rather than zero.
type AngleMap map[Joint]float64

// Get returns the angle for j and whether it is known.
func (m AngleMap) Get(j Joint) (float64, bool) {
	v, ok := m[j]
	return v, ok
}

// Angle returns the interior angle at b formed by segments b→a and b→c,
// in degrees within [0, 180].
func Angle(a, b, c detector.Landmark) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360 - angle
	}
	return math.Max(0, angle)
}

// ComputeAngles measures every joint whose three landmarks are present.
func ComputeAngles(set *detector.LandmarkSet) AngleMap {
	angles := make(AngleMap, len(jointTriples))
	for _, jt := range jointTriples {
		a, okA := set.Get(jt.a)
		b, okB := set.Get(jt.b)
		c, okC := set.Get(jt.c)
		if !okA || !okB || !okC {
			continue
		}
		angles[jt.joint] = Angle(a, b, c)
	}
	return angles
}
