package guidance

import "trailcam/detection"

// DangerZoneRatio sets the vertical cutoff for path-relevant obstacles:
// only boxes whose bottom edge reaches below DangerZoneRatio*frameHeight
// are close enough to matter. Tuned against the 640x480 canonical frame;
// it does not scale with frame size.
const DangerZoneRatio = 0.6

// LaneState reports which thirds of the frame contain a near-field
// obstacle.
type LaneState struct {
	LeftBlocked   bool `json:"left_blocked"`
	CenterBlocked bool `json:"center_blocked"`
	RightBlocked  bool `json:"right_blocked"`
}

// Advisory is the obstacle-avoidance suggestion for the current frame.
type Advisory string

const (
	AdvisoryNone      Advisory = ""
	AdvisoryGoLeft    Advisory = "GO LEFT"
	AdvisoryGoRight   Advisory = "GO RIGHT"
	AdvisoryStop      Advisory = "STOP"
	AdvisoryKeepLeft  Advisory = "KEEP LEFT"
	AdvisoryKeepRight Advisory = "KEEP RIGHT"
)

// AnalyzeObstacles classifies near-field obstacle detections into
// left/center/right lanes and derives the avoidance advisory.
func AnalyzeObstacles(dets []detection.Detection, c *detection.Classifier, frameWidth, frameHeight int) (LaneState, Advisory) {
	dangerZoneY := int(DangerZoneRatio * float64(frameHeight))
	midLeft := frameWidth / 3
	midRight := 2 * frameWidth / 3

	var lanes LaneState
	for _, d := range dets {
		if c.Classify(d.Label) != detection.CategoryObstacle {
			continue
		}
		// Only obstacles reaching into the near-field bottom of the frame
		// are path-relevant.
		if d.Rect.Max.Y < dangerZoneY {
			continue
		}

		ocx := (d.Rect.Min.X + d.Rect.Max.X) / 2
		switch {
		case ocx < midLeft:
			lanes.LeftBlocked = true
		case ocx > midRight:
			lanes.RightBlocked = true
		default:
			lanes.CenterBlocked = true
		}
	}

	return lanes, Advise(lanes)
}

// Advise maps a lane state onto the avoidance advisory. The precedence is
// a hard contract: when the center lane is blocked, left clearance is
// checked before right clearance.
func Advise(lanes LaneState) Advisory {
	if lanes.CenterBlocked {
		switch {
		case !lanes.LeftBlocked:
			return AdvisoryGoLeft
		case !lanes.RightBlocked:
			return AdvisoryGoRight
		default:
			return AdvisoryStop
		}
	}
	if lanes.LeftBlocked && !lanes.RightBlocked {
		return AdvisoryKeepRight
	}
	if lanes.RightBlocked && !lanes.LeftBlocked {
		return AdvisoryKeepLeft
	}
	return AdvisoryNone
}
