// Package overlay maps pose landmarks into canvas pixels and draws a
// colour-coded skeleton over camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
)

// Drawing constants.
const (
	LineThickness   = 3
	JointRadius     = 5
	JointOutline    = 2
	JointVisibility = 0.5
)

var (
	// Pass is used for skeletons whose score clears the pass threshold.
	Pass = color.RGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}
	// Fail is used for everything else.
	Fail = color.RGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}
	// Outline rings each drawn joint.
	Outline = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Connections are the landmark pairs drawn as skeleton segments.
var Connections = [][2]int{
	{detector.LeftShoulder, detector.RightShoulder},
	{detector.LeftShoulder, detector.LeftElbow}, {detector.LeftElbow, detector.LeftWrist},
	{detector.RightShoulder, detector.RightElbow}, {detector.RightElbow, detector.RightWrist},
	{detector.LeftShoulder, detector.LeftHip}, {detector.RightShoulder, detector.RightHip},
	{detector.LeftHip, detector.RightHip},
	{detector.LeftHip, detector.LeftKnee}, {detector.LeftKnee, detector.LeftAnkle},
	{detector.LeftAnkle, detector.LeftHeel}, {detector.LeftHeel, detector.LeftFootIndex},
	{detector.RightHip, detector.RightKnee}, {detector.RightKnee, detector.RightAnkle},
	{detector.RightAnkle, detector.RightHeel}, {detector.RightHeel, detector.RightFootIndex},
}

// Colour picks the skeleton colour for a pass or fail frame.
func Colour(passed bool) color.RGBA {
	if passed {
		return Pass
	}
	return Fail
}

// ToCanvas scales a normalized landmark to pixel coordinates.
func ToCanvas(lm detector.Landmark, width, height int) image.Point {
	return image.Pt(int(lm.X*float64(width)), int(lm.Y*float64(height)))
}

// Segment is a skeleton line in pixel space.
type Segment struct {
	From image.Point
	To   image.Point
}

// Joint is a drawn landmark in pixel space.
type Joint struct {
	Index int
	At    image.Point
}

// Projection is a landmark set mapped onto a canvas.
type Projection struct {
	Segments []Segment
	Joints   []Joint
}

// Project maps set onto a width×height canvas. Segments need both ends
// present; joints need visibility above JointVisibility.
func Project(set *detector.LandmarkSet, width, height int) Projection {
	var p Projection

	for _, c := range Connections {
		from, okA := set.Get(c[0])
		to, okB := set.Get(c[1])
		if !okA || !okB {
			continue
		}
		p.Segments = append(p.Segments, Segment{
			From: ToCanvas(from, width, height),
			To:   ToCanvas(to, width, height),
		})
	}

	for i := 0; i < detector.NumLandmarks; i++ {
		lm, ok := set.Get(i)
		if !ok || lm.Visibility <= JointVisibility {
			continue
		}
		p.Joints = append(p.Joints, Joint{Index: i, At: ToCanvas(lm, width, height)})
	}

	return p
}

// Draw renders the skeleton for set onto img, coloured by result, and
// captions the frame with the score and feedback.
func Draw(img *gocv.Mat, set *detector.LandmarkSet, result pose.Result) {
	if img == nil || img.Empty() || set == nil {
		return
	}

	colour := Colour(result.Passed)
	p := Project(set, img.Cols(), img.Rows())

	for _, s := range p.Segments {
		gocv.Line(img, s.From, s.To, colour, LineThickness)
	}
	for _, j := range p.Joints {
		gocv.Circle(img, j.At, JointRadius, colour, -1)
		gocv.Circle(img, j.At, JointRadius, Outline, JointOutline)
	}

	caption := fmt.Sprintf("%s  %d/100", result.Target.DisplayName(), result.Score)
	gocv.PutText(img, caption, image.Pt(12, 28), gocv.FontHersheySimplex, 0.7, colour, 2)
	gocv.PutText(img, result.Feedback, image.Pt(12, 56), gocv.FontHersheySimplex, 0.6, Outline, 1)
}
