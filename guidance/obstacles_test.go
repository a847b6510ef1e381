package guidance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trailcam/detection"
)

func TestAdvisePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		lanes LaneState
		want  Advisory
	}{
		{"all clear", LaneState{}, AdvisoryNone},
		{"center only", LaneState{CenterBlocked: true}, AdvisoryGoLeft},
		// Left clearance is checked first even when right is also clear or
		// blocked.
		{"center and right", LaneState{CenterBlocked: true, RightBlocked: true}, AdvisoryGoLeft},
		{"center and left", LaneState{CenterBlocked: true, LeftBlocked: true}, AdvisoryGoRight},
		{"all blocked", LaneState{LeftBlocked: true, CenterBlocked: true, RightBlocked: true}, AdvisoryStop},
		{"left only", LaneState{LeftBlocked: true}, AdvisoryKeepRight},
		{"right only", LaneState{RightBlocked: true}, AdvisoryKeepLeft},
		{"left and right", LaneState{LeftBlocked: true, RightBlocked: true}, AdvisoryNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Advise(tt.lanes))
		})
	}
}

func TestAnalyzeObstaclesLanes(t *testing.T) {
	c := detection.NewClassifier(nil)

	// Frame 640x480; danger zone starts at y=288; lane boundaries at
	// x=213 and x=426.
	dets := []detection.Detection{
		det(10, 200, 90, 400, "chair", 0.8),     // center x=50, left lane
		det(300, 250, 340, 470, "suitcase", 0.7), // center x=320, center lane
		det(500, 300, 600, 460, "dog", 0.6),     // center x=550, right lane
	}

	lanes, advisory := AnalyzeObstacles(dets, c, 640, 480)
	assert.Equal(t, LaneState{LeftBlocked: true, CenterBlocked: true, RightBlocked: true}, lanes)
	assert.Equal(t, AdvisoryStop, advisory)
}

func TestAnalyzeObstaclesDangerZoneFilter(t *testing.T) {
	c := detection.NewClassifier(nil)

	// Bottom edge at y=287 is above the 0.6*480=288 cutoff: excluded
	// regardless of horizontal position.
	dets := []detection.Detection{
		det(300, 100, 340, 287, "chair", 0.8),
	}

	lanes, advisory := AnalyzeObstacles(dets, c, 640, 480)
	assert.Equal(t, LaneState{}, lanes)
	assert.Equal(t, AdvisoryNone, advisory)

	// Exactly on the cutoff counts as relevant.
	dets[0] = det(300, 100, 340, 288, "chair", 0.8)
	lanes, advisory = AnalyzeObstacles(dets, c, 640, 480)
	assert.Equal(t, LaneState{CenterBlocked: true}, lanes)
	assert.Equal(t, AdvisoryGoLeft, advisory)
}

func TestAnalyzeObstaclesIgnoresNonObstacles(t *testing.T) {
	c := detection.NewClassifier(nil)

	dets := []detection.Detection{
		det(300, 250, 340, 470, "person", 0.9),
		det(300, 250, 340, 470, "bird", 0.9),
	}

	lanes, advisory := AnalyzeObstacles(dets, c, 640, 480)
	assert.Equal(t, LaneState{}, lanes)
	assert.Equal(t, AdvisoryNone, advisory)
}

func TestAnalyzeObstaclesKeepRight(t *testing.T) {
	c := detection.NewClassifier(nil)

	dets := []detection.Detection{
		det(10, 200, 90, 400, "bicycle", 0.8), // left lane only
	}

	lanes, advisory := AnalyzeObstacles(dets, c, 640, 480)
	assert.Equal(t, LaneState{LeftBlocked: true}, lanes)
	assert.Equal(t, AdvisoryKeepRight, advisory)
}
