package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu        sync.Mutex
	landmarks *LandmarkSet
	err       error
	calls     int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
func (m *MockDetector) SetLandmarks(set *LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.landmarks = set
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns a copy of the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*LandmarkSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.landmarks == nil {
		return nil, nil
	}
	out := *m.landmarks
	return &out, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fill sets each index to the given point with full visibility.
func fill(set *LandmarkSet, points map[int][2]float64) {
	for i, p := range points {
		set.Set(i, Landmark{X: p[0], Y: p[1], Visibility: 0.99})
	}
}

// MountainLandmarks returns a standing figure with shoulders over hips and
// both arms and legs straight.
func MountainLandmarks() *LandmarkSet {
	set := NewLandmarkSet()
	fill(set, map[int][2]float64{
		Nose: {0.50, 0.15},

		LeftShoulder: {0.55, 0.30},
		LeftElbow:    {0.56, 0.45},
		LeftWrist:    {0.57, 0.60},
		LeftHip:      {0.55, 0.60},
		LeftKnee:     {0.55, 0.75},
		LeftAnkle:    {0.55, 0.90},

		RightShoulder: {0.45, 0.30},
		RightElbow:    {0.44, 0.45},
		RightWrist:    {0.43, 0.60},
		RightHip:      {0.45, 0.60},
		RightKnee:     {0.45, 0.75},
		RightAnkle:    {0.45, 0.90},
	})
	return set
}

// TreeLandmarks returns a figure balancing on a straight right leg with the
// left foot drawn up against the inner right thigh.
func TreeLandmarks() *LandmarkSet {
	set := NewLandmarkSet()
	fill(set, map[int][2]float64{
		Nose: {0.50, 0.15},

		LeftShoulder: {0.55, 0.30},
		LeftElbow:    {0.58, 0.40},
		LeftWrist:    {0.51, 0.42},
		LeftHip:      {0.55, 0.60},
		LeftKnee:     {0.65, 0.68},
		LeftAnkle:    {0.47, 0.70},

		RightShoulder: {0.45, 0.30},
		RightElbow:    {0.42, 0.40},
		RightWrist:    {0.49, 0.42},
		RightHip:      {0.45, 0.60},
		RightKnee:     {0.45, 0.75},
		RightAnkle:    {0.45, 0.90},
	})
	return set
}

// SukasanaLandmarks returns a seated cross-legged figure with hips well
// below the shoulders.
func SukasanaLandmarks() *LandmarkSet {
	set := NewLandmarkSet()
	fill(set, map[int][2]float64{
		Nose: {0.50, 0.25},

		LeftShoulder: {0.56, 0.40},
		LeftElbow:    {0.60, 0.55},
		LeftWrist:    {0.62, 0.68},
		LeftHip:      {0.55, 0.70},
		LeftKnee:     {0.68, 0.74},
		LeftAnkle:    {0.47, 0.78},

		RightShoulder: {0.44, 0.40},
		RightElbow:    {0.40, 0.55},
		RightWrist:    {0.38, 0.68},
		RightHip:      {0.45, 0.70},
		RightKnee:     {0.32, 0.74},
		RightAnkle:    {0.53, 0.78},
	})
	return set
}

// ChildsPoseLandmarks returns a figure folded forward over the knees with
// the head resting below hip level.
func ChildsPoseLandmarks() *LandmarkSet {
	set := NewLandmarkSet()
	fill(set, map[int][2]float64{
		Nose: {0.30, 0.80},

		LeftShoulder: {0.40, 0.72},
		LeftElbow:    {0.28, 0.80},
		LeftWrist:    {0.15, 0.84},
		LeftHip:      {0.62, 0.58},
		LeftKnee:     {0.55, 0.84},
		LeftAnkle:    {0.72, 0.86},

		RightShoulder: {0.41, 0.70},
		RightElbow:    {0.29, 0.78},
		RightWrist:    {0.16, 0.82},
		RightHip:      {0.63, 0.56},
		RightKnee:     {0.56, 0.82},
		RightAnkle:    {0.73, 0.84},
	})
	return set
}

// WarriorTwoLandmarks returns a wide stance with the front (left) knee bent
// to a right angle and the back leg straight.
func WarriorTwoLandmarks() *LandmarkSet {
	set := NewLandmarkSet()
	fill(set, map[int][2]float64{
		Nose: {0.52, 0.20},

		LeftShoulder: {0.56, 0.32},
		LeftElbow:    {0.70, 0.32},
		LeftWrist:    {0.84, 0.32},
		LeftHip:      {0.60, 0.55},
		LeftKnee:     {0.75, 0.55},
		LeftAnkle:    {0.75, 0.75},

		RightShoulder: {0.46, 0.32},
		RightElbow:    {0.32, 0.32},
		RightWrist:    {0.18, 0.32},
		RightHip:      {0.45, 0.55},
		RightKnee:     {0.35, 0.70},
		RightAnkle:    {0.25, 0.85},
	})
	return set
}
