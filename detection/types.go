package detection

import (
	"image"
	"strings"
)

// Detection is one bounding box emitted by the detector for a single frame.
// Coordinates are in the pixel space of the frame that was passed to Detect.
type Detection struct {
	Rect       image.Rectangle
	Label      string
	Confidence float64
}

// Category is the navigation-relevant class of a detection.
type Category int

const (
	CategoryOther Category = iota
	CategoryPerson
	CategoryObstacle
)

func (c Category) String() string {
	switch c {
	case CategoryPerson:
		return "person"
	case CategoryObstacle:
		return "obstacle"
	default:
		return "other"
	}
}

// DefaultObstacleLabels returns the COCO labels treated as path obstacles.
// A custom-trained model can add its own class ("obstacle" is always one).
func DefaultObstacleLabels() []string {
	return []string{
		"chair", "bench", "table",
		"backpack", "handbag", "suitcase",
		"bicycle", "motorbike", "car", "truck",
		"dog", "cat",
		"traffic light", "stop sign",
	}
}

// Classifier maps detector label strings onto the closed Category set.
// Matching is case-insensitive and exact; unknown labels are CategoryOther.
type Classifier struct {
	obstacles map[string]struct{}
}

// NewClassifier builds a classifier over the given obstacle label set.
// A nil or empty set falls back to DefaultObstacleLabels.
func NewClassifier(obstacleLabels []string) *Classifier {
	if len(obstacleLabels) == 0 {
		obstacleLabels = DefaultObstacleLabels()
	}
	set := make(map[string]struct{}, len(obstacleLabels))
	for _, l := range obstacleLabels {
		set[strings.ToLower(l)] = struct{}{}
	}
	return &Classifier{obstacles: set}
}

// Classify returns the category for a detector label.
func (c *Classifier) Classify(label string) Category {
	l := strings.ToLower(label)
	switch {
	case l == "person":
		return CategoryPerson
	case l == "obstacle":
		// Custom obstacle-model class, independent of the configured set.
		return CategoryObstacle
	default:
		if _, ok := c.obstacles[l]; ok {
			return CategoryObstacle
		}
		return CategoryOther
	}
}
