// Package detector provides body pose detection interfaces and types for pose scoring.
package detector

import (
	"encoding/json"
	"fmt"
)

// Body landmark indices following the MediaPipe 33-point pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Landmark is a single body joint in normalized image coordinates.
// X and Y are in [0, 1] with Y growing downward; Visibility is the
// detector's confidence that the joint is visible.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// LandmarkSet holds one frame of body landmarks indexed by the anatomical
// numbering above. Slots may be absent when the joint was occluded.
type LandmarkSet struct {
	points  [NumLandmarks]Landmark
	present [NumLandmarks]bool
}

// NewLandmarkSet returns an empty set with every landmark absent.
func NewLandmarkSet() *LandmarkSet {
	return &LandmarkSet{}
}

// Get returns the landmark at index i and whether it is present.
// Out-of-range indices report absent.
func (s *LandmarkSet) Get(i int) (Landmark, bool) {
	if s == nil || i < 0 || i >= NumLandmarks || !s.present[i] {
		return Landmark{}, false
	}
	return s.points[i], true
}

// Has reports whether every listed index is present.
func (s *LandmarkSet) Has(indices ...int) bool {
	for _, i := range indices {
		if _, ok := s.Get(i); !ok {
			return false
		}
	}
	return true
}

// Set stores a landmark at index i. Out-of-range indices are ignored.
func (s *LandmarkSet) Set(i int, lm Landmark) {
	if i < 0 || i >= NumLandmarks {
		return
	}
	s.points[i] = lm
	s.present[i] = true
}

// Clear marks index i as absent.
func (s *LandmarkSet) Clear(i int) {
	if i < 0 || i >= NumLandmarks {
		return
	}
	s.points[i] = Landmark{}
	s.present[i] = false
}

// Len returns the number of present landmarks.
func (s *LandmarkSet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// WithMinVisibility returns a copy of the set in which landmarks whose
// visibility is below minVisibility are absent. A non-positive threshold
// returns an unfiltered copy.
func (s *LandmarkSet) WithMinVisibility(minVisibility float64) *LandmarkSet {
	if s == nil {
		return nil
	}
	out := *s
	if minVisibility <= 0 {
		return &out
	}
	for i := 0; i < NumLandmarks; i++ {
		if out.present[i] && out.points[i].Visibility < minVisibility {
			out.Clear(i)
		}
	}
	return &out
}

// MarshalJSON encodes the set as a 33-element array with null for absent landmarks.
func (s LandmarkSet) MarshalJSON() ([]byte, error) {
	out := make([]*Landmark, NumLandmarks)
	for i := 0; i < NumLandmarks; i++ {
		if s.present[i] {
			lm := s.points[i]
			out[i] = &lm
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an array of up to 33 landmarks; null entries and
// missing trailing entries are absent.
func (s *LandmarkSet) UnmarshalJSON(data []byte) error {
	var raw []*Landmark
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > NumLandmarks {
		return fmt.Errorf("landmark set has %d entries, max %d", len(raw), NumLandmarks)
	}

	*s = LandmarkSet{}
	for i, lm := range raw {
		if lm != nil {
			s.Set(i, *lm)
		}
	}
	return nil
}
