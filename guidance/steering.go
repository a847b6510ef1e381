package guidance

import "image"

// SteeringDeadbandPx is the horizontal deviation, in pixels of the
// canonical frame, within which no steering correction is issued. Tuned
// against a 640-pixel-wide frame; it does not scale with frame size.
const SteeringDeadbandPx = 50

// arrowAnchorOffset is how far above the bottom edge the guidance arrow
// starts.
const arrowAnchorOffset = 50

// Direction is the discrete steering suggestion for the current frame.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "LEFT"
	case DirectionRight:
		return "RIGHT"
	default:
		return "FORWARD"
	}
}

// Vector is the presentational guidance arrow drawn from the cart's view
// anchor to the target's base. It carries no decision weight; use
// ComputeSteering for the control suggestion.
type Vector struct {
	From image.Point
	To   image.Point
}

// ComputeSteering derives the steering direction from the target's
// horizontal offset against the frame center, with the fixed deadband.
func ComputeSteering(t Target, frameWidth int) Direction {
	centerX := frameWidth / 2
	targetCx := (t.Rect.Min.X + t.Rect.Max.X) / 2
	deviation := targetCx - centerX

	switch {
	case deviation < -SteeringDeadbandPx:
		return DirectionLeft
	case deviation > SteeringDeadbandPx:
		return DirectionRight
	default:
		return DirectionForward
	}
}

// GuidanceVector returns the overlay arrow from a fixed anchor near the
// bottom center of the frame to the base of the target box.
func GuidanceVector(t Target, frameWidth, frameHeight int) Vector {
	targetCx := (t.Rect.Min.X + t.Rect.Max.X) / 2
	return Vector{
		From: image.Pt(frameWidth/2, frameHeight-arrowAnchorOffset),
		To:   image.Pt(targetCx, t.Rect.Max.Y),
	}
}
