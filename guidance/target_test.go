package guidance

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"trailcam/detection"
)

func det(x1, y1, x2, y2 int, label string, conf float64) detection.Detection {
	return detection.Detection{
		Rect:       image.Rect(x1, y1, x2, y2),
		Label:      label,
		Confidence: conf,
	}
}

func TestSelectTargetLargestPerson(t *testing.T) {
	c := detection.NewClassifier(nil)

	dets := []detection.Detection{
		det(0, 0, 10, 10, "person", 0.9),    // area 100
		det(0, 0, 100, 100, "chair", 0.95),  // not a person
		det(50, 50, 90, 130, "person", 0.5), // area 3200, the target
		det(0, 0, 20, 20, "person", 0.99),   // area 400
	}

	target, ok := SelectTarget(dets, c)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(50, 50, 90, 130), target.Rect)
	assert.Equal(t, 0.5, target.Confidence)
}

func TestSelectTargetTieFirstWins(t *testing.T) {
	c := detection.NewClassifier(nil)

	dets := []detection.Detection{
		det(0, 0, 10, 10, "person", 0.3),
		det(100, 100, 110, 110, "person", 0.8), // same area, later
	}

	target, ok := SelectTarget(dets, c)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 10, 10), target.Rect)
	assert.Equal(t, 0.3, target.Confidence)
}

func TestSelectTargetNoPersons(t *testing.T) {
	c := detection.NewClassifier(nil)

	_, ok := SelectTarget(nil, c)
	assert.False(t, ok)

	_, ok = SelectTarget([]detection.Detection{
		det(0, 0, 50, 50, "chair", 0.9),
		det(0, 0, 50, 50, "bird", 0.9),
	}, c)
	assert.False(t, ok)
}

func TestSelectTargetZeroAreaPerson(t *testing.T) {
	c := detection.NewClassifier(nil)

	target, ok := SelectTarget([]detection.Detection{
		det(5, 5, 5, 5, "person", 0.7),
	}, c)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(5, 5, 5, 5), target.Rect)
}
