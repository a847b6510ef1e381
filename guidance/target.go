// Package guidance derives the cart's per-frame navigation decisions from
// classified detections: which person to follow, which way to steer, and
// whether the travel path is blocked. All geometry is plain pixel math on
// the canonical frame; the package has no OpenCV dependency so the
// decision logic stays testable on its own.
package guidance

import (
	"image"

	"trailcam/detection"
)

// Target is the person the cart is following in the current frame.
type Target struct {
	Rect       image.Rectangle
	Confidence float64
}

// SelectTarget picks the person detection to follow: the one with the
// strictly greatest box area, scanning in input order so that the first of
// several equal-area candidates wins. Returns false when the frame has no
// person detections.
func SelectTarget(dets []detection.Detection, c *detection.Classifier) (Target, bool) {
	var target Target
	found := false
	maxArea := -1 // below any real area so a zero-area box still selects

	for _, d := range dets {
		if c.Classify(d.Label) != detection.CategoryPerson {
			continue
		}
		area := d.Rect.Dx() * d.Rect.Dy()
		if area > maxArea {
			maxArea = area
			target = Target{Rect: d.Rect, Confidence: d.Confidence}
			found = true
		}
	}

	return target, found
}
