// Package overlay renders decision data onto frames for the video feed.
// Everything here is presentational: the structured decision values are
// the contract, the pixels are for the operator watching the stream.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"trailcam/detection"
	"trailcam/guidance"
)

// Renderer draws detection boxes, steering guidance and status banners.
type Renderer struct {
	personColor   color.RGBA
	obstacleColor color.RGBA
	otherColor    color.RGBA
	steerColor    color.RGBA
	alertColor    color.RGBA
	placeholderBg color.RGBA
	placeholderFg color.RGBA
}

// NewRenderer creates a renderer with the cart's color scheme.
func NewRenderer() *Renderer {
	return &Renderer{
		personColor:   color.RGBA{0, 255, 0, 255},     // green for people
		obstacleColor: color.RGBA{255, 0, 0, 255},     // red for obstacles
		otherColor:    color.RGBA{0, 255, 255, 255},   // cyan for everything else
		steerColor:    color.RGBA{255, 255, 0, 255},   // yellow guidance
		alertColor:    color.RGBA{255, 0, 0, 255},     // red status text
		placeholderBg: color.RGBA{20, 20, 20, 255},    // near-black card
		placeholderFg: color.RGBA{200, 200, 200, 255}, // light grey message
	}
}

// DrawDetections draws every raw detection with its category color and a
// "label confidence" caption.
func (r *Renderer) DrawDetections(img *gocv.Mat, dets []detection.Detection, c *detection.Classifier) {
	for _, d := range dets {
		var boxColor color.RGBA
		switch c.Classify(d.Label) {
		case detection.CategoryPerson:
			boxColor = r.personColor
		case detection.CategoryObstacle:
			boxColor = r.obstacleColor
		default:
			boxColor = r.otherColor
		}

		gocv.Rectangle(img, d.Rect, boxColor, 1)

		label := fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
		labelY := d.Rect.Min.Y - 5
		if labelY < 20 {
			labelY = 20
		}
		gocv.PutText(img, label, image.Pt(d.Rect.Min.X, labelY),
			gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}
}

// DrawTarget highlights the followed person with a heavy box.
func (r *Renderer) DrawTarget(img *gocv.Mat, target guidance.Target) {
	gocv.Rectangle(img, target.Rect, r.personColor, 3)
}

// DrawSteering draws the guidance arrow and the steering direction text.
func (r *Renderer) DrawSteering(img *gocv.Mat, dir guidance.Direction, vec guidance.Vector) {
	gocv.ArrowedLine(img, vec.From, vec.To, r.steerColor, 4)
	gocv.PutText(img, "STEERING: "+dir.String(), image.Pt(50, 50),
		gocv.FontHersheySimplex, 0.8, r.steerColor, 2)
}

// DrawAdvisory draws the obstacle-avoidance suggestion beneath the
// steering text. A none advisory draws nothing.
func (r *Renderer) DrawAdvisory(img *gocv.Mat, advisory guidance.Advisory) {
	text := advisoryText(advisory)
	if text == "" {
		return
	}
	gocv.PutText(img, text, image.Pt(50, 110),
		gocv.FontHersheySimplex, 0.7, r.steerColor, 2)
}

// DrawSearching marks a frame with no person detections.
func (r *Renderer) DrawSearching(img *gocv.Mat) {
	gocv.PutText(img, "SEARCHING FOR USER...", image.Pt(50, 50),
		gocv.FontHersheySimplex, 0.8, r.alertColor, 2)
}

// DrawBanner draws a degraded-mode notice over a live frame, used for the
// model-unavailable and detection-error modes.
func (r *Renderer) DrawBanner(img *gocv.Mat, text string) {
	gocv.PutText(img, text, image.Pt(50, 50),
		gocv.FontHersheySimplex, 0.6, r.alertColor, 2)
}

// Placeholder builds a dark card frame carrying a status message, used
// when there is no video to show. The caller owns the returned Mat.
func (r *Renderer) Placeholder(width, height int, message string) gocv.Mat {
	img := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(r.placeholderBg.B), float64(r.placeholderBg.G), float64(r.placeholderBg.R), 0),
		height, width, gocv.MatTypeCV8UC3)
	gocv.PutText(&img, message, image.Pt(180, height/2),
		gocv.FontHersheySimplex, 0.8, r.placeholderFg, 2)
	return img
}

// advisoryText expands an advisory into the overlay wording. The
// center-blocked suggestions get the warning prefix; lane-keeping hints
// stand alone.
func advisoryText(a guidance.Advisory) string {
	switch a {
	case guidance.AdvisoryGoLeft, guidance.AdvisoryGoRight, guidance.AdvisoryStop:
		return "OBSTACLE AHEAD - " + string(a)
	case guidance.AdvisoryKeepLeft, guidance.AdvisoryKeepRight:
		return string(a)
	default:
		return ""
	}
}
