// Package replay scores recorded MediaPipe sessions offline.
//
// A recording is a JSON document of the form
//
//	{"frames": {"<n>": {"mediapipe": {"<index>": {"x", "y", "z", "visibility", "presence"}}}}}
//
// where <n> is the video frame number and <index> a pose landmark index.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
)

// Point is one recorded landmark.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
	Presence   float64 `json:"presence"`
}

// Frame is the recorded landmarks of one video frame.
type Frame struct {
	Mediapipe map[string]Point `json:"mediapipe"`
}

// Recording is a decoded session.
type Recording struct {
	Path   string        `json:"-"`
	Frames map[int]Frame `json:"frames"`
}

// Read decodes a recording from r.
func Read(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding recording: %w", err)
	}
	return &rec, nil
}

// ReadFile decodes the recording at path.
func ReadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()

	rec, err := Read(f)
	if err != nil {
		return nil, err
	}
	rec.Path = path
	return rec, nil
}

// FrameNumbers returns the recorded frame numbers in ascending order.
func (r *Recording) FrameNumbers() []int {
	nums := make([]int, 0, len(r.Frames))
	for n := range r.Frames {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Landmarks converts the frame into a LandmarkSet. Indices outside the
// pose model are an error.
func (f Frame) Landmarks() (*detector.LandmarkSet, error) {
	set := detector.NewLandmarkSet()
	for key, p := range f.Mediapipe {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= detector.NumLandmarks {
			return nil, fmt.Errorf("invalid landmark index %q", key)
		}
		set.Set(i, detector.Landmark{X: p.X, Y: p.Y, Z: p.Z, Visibility: p.Visibility})
	}
	return set, nil
}

// FrameScore is the outcome for one recorded frame.
type FrameScore struct {
	Frame    int          `json:"frame"`
	Detected bool         `json:"detected"`
	Result   *pose.Result `json:"result,omitempty"`
}

// Report summarizes a scored recording.
type Report struct {
	Target  pose.Target  `json:"target"`
	Summary pose.Summary `json:"summary"`
	Frames  []FrameScore `json:"frames"`
}

// Score scores every frame of rec against target in frame order. Frames
// without landmarks are reported as undetected and left out of the summary.
// progress, when non-nil, is called once per frame.
func Score(rec *Recording, scorer *pose.Scorer, target pose.Target, progress func()) (*Report, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %d", pose.ErrUnknownTarget, int(target))
	}

	report := &Report{Target: target}
	var tally pose.Tally

	for _, n := range rec.FrameNumbers() {
		set, err := rec.Frames[n].Landmarks()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", n, err)
		}

		fs := FrameScore{Frame: n}
		if set.Len() > 0 {
			res, err := scorer.Score(set, target)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", n, err)
			}
			fs.Detected = true
			fs.Result = &res
			tally.Add(res)
		}
		report.Frames = append(report.Frames, fs)

		if progress != nil {
			progress()
		}
	}

	report.Summary = tally.Summary()
	return report, nil
}
