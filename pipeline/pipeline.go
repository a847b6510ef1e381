// Package pipeline turns raw capture+detection into one annotated frame
// and one decision set per call, degrading to a placeholder or banner
// frame when the camera, signal or model is unavailable.
package pipeline

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"trailcam/detection"
	"trailcam/guidance"
	"trailcam/overlay"
)

// Canonical frame size. All pixel-space geometry (deadband, danger zone,
// lanes) assumes frames of exactly this size; captured frames are resized
// before any computation.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// maxErrorOverlayLen caps the detection error text drawn on a frame.
const maxErrorOverlayLen = 30

// Mode is the output mode chosen for a frame. Exactly one applies per
// frame; it is recomputed every frame and never cached.
type Mode int

const (
	ModePrivacy Mode = iota
	ModeNoCamera
	ModeNoSignal
	ModeNoModel
	ModeDetectionError
	ModeActive
)

func (m Mode) String() string {
	switch m {
	case ModePrivacy:
		return "privacy"
	case ModeNoCamera:
		return "no_camera"
	case ModeNoSignal:
		return "no_signal"
	case ModeNoModel:
		return "no_model"
	case ModeDetectionError:
		return "detection_error"
	case ModeActive:
		return "active"
	default:
		return "unknown"
	}
}

// CaptureSource is the camera-facing contract the engine consumes.
type CaptureSource interface {
	IsOpened() bool
	// Read grabs the next frame into dst, reporting false on signal loss.
	Read(dst *gocv.Mat) bool
}

// Detector is the model-facing contract. Detect may fail per frame; the
// engine treats that as a transient fault scoped to the single frame.
type Detector interface {
	Detect(frame gocv.Mat) ([]detection.Detection, error)
}

// Decision is the structured per-frame output. All fields are frame-scoped
// values; nothing is carried to the next frame.
type Decision struct {
	Mode       Mode               `json:"mode"`
	Detections int                `json:"detections"`
	HasTarget  bool               `json:"has_target"`
	Target     guidance.Target    `json:"target,omitempty"`
	Direction  guidance.Direction `json:"-"`
	Steering   string             `json:"steering,omitempty"`
	Lanes      guidance.LaneState `json:"lanes"`
	Advisory   guidance.Advisory  `json:"advisory,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Engine is the frame pipeline state machine. It owns no camera or model;
// both are injected handles whose lifecycle belongs to the caller. The
// only cross-frame state is the privacy toggle.
//
// Process serializes capture and inference internally, so concurrent
// callers sharing one engine are safe; sharing the same CaptureSource
// across multiple engines is not.
type Engine struct {
	source     CaptureSource
	detector   Detector // nil means no model available
	classifier *detection.Classifier
	renderer   *overlay.Renderer
	stats      *Stats
	log        *logrus.Entry

	running atomic.Bool
	mu      sync.Mutex
}

// NewEngine wires a pipeline over the given collaborators. A nil detector
// is valid and produces the model-unavailable mode. The engine starts
// with the privacy toggle on (video visible).
func NewEngine(source CaptureSource, detector Detector, classifier *detection.Classifier, renderer *overlay.Renderer, log *logrus.Logger) *Engine {
	e := &Engine{
		source:     source,
		detector:   detector,
		classifier: classifier,
		renderer:   renderer,
		stats:      NewStats(),
		log:        log.WithField("component", "pipeline"),
	}
	e.running.Store(true)
	return e
}

// SetRunning flips the privacy toggle. False blanks the feed.
func (e *Engine) SetRunning(running bool) {
	e.running.Store(running)
}

// Running reports the privacy toggle state.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Stats returns the engine's per-mode frame counters.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Process produces the next output frame and its decision data. The
// caller owns the returned Mat and must close it. Faults from detection
// or geometry never propagate: they degrade the single frame and the next
// call retries the full pipeline.
func (e *Engine) Process() (gocv.Mat, Decision) {
	e.mu.Lock()
	defer e.mu.Unlock()

	img, dec := e.process()
	e.stats.Record(dec.Mode)
	return img, dec
}

func (e *Engine) process() (gocv.Mat, Decision) {
	if !e.running.Load() {
		// Privacy wins over everything; capture is skipped entirely.
		return e.renderer.Placeholder(FrameWidth, FrameHeight, "PRIVACY MODE ON"),
			Decision{Mode: ModePrivacy}
	}

	if e.source == nil || !e.source.IsOpened() {
		return e.renderer.Placeholder(FrameWidth, FrameHeight, "Camera Not Accessible"),
			Decision{Mode: ModeNoCamera}
	}

	raw := gocv.NewMat()
	defer raw.Close()
	if ok := e.source.Read(&raw); !ok || raw.Empty() {
		return e.renderer.Placeholder(FrameWidth, FrameHeight, "No Camera Signal"),
			Decision{Mode: ModeNoSignal}
	}

	// Resize to the canonical frame before any geometry.
	img := gocv.NewMat()
	gocv.Resize(raw, &img, image.Pt(FrameWidth, FrameHeight), 0, 0, gocv.InterpolationLinear)

	if e.detector == nil {
		e.renderer.DrawBanner(&img, "YOLO MODEL UNAVAILABLE")
		return img, Decision{Mode: ModeNoModel}
	}

	dets, err := e.detector.Detect(img)
	if err != nil {
		e.log.WithError(err).Warn("detection failed, degrading frame")
		e.renderer.DrawBanner(&img, "Detection Error: "+truncateError(err.Error()))
		return img, Decision{Mode: ModeDetectionError, Error: truncateError(err.Error())}
	}

	dec := Decision{Mode: ModeActive, Detections: len(dets)}
	e.renderer.DrawDetections(&img, dets, e.classifier)

	target, found := guidance.SelectTarget(dets, e.classifier)
	if found {
		dec.HasTarget = true
		dec.Target = target
		dec.Direction = guidance.ComputeSteering(target, FrameWidth)
		dec.Steering = dec.Direction.String()

		e.renderer.DrawTarget(&img, target)
		e.renderer.DrawSteering(&img, dec.Direction, guidance.GuidanceVector(target, FrameWidth, FrameHeight))
	} else {
		e.renderer.DrawSearching(&img)
	}

	dec.Lanes, dec.Advisory = guidance.AnalyzeObstacles(dets, e.classifier, FrameWidth, FrameHeight)
	e.renderer.DrawAdvisory(&img, dec.Advisory)

	return img, dec
}

// Frame runs Process and encodes the result as JPEG for the MJPEG feed.
func (e *Engine) Frame() ([]byte, Decision, error) {
	img, dec := e.Process()
	defer img.Close()

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return nil, dec, err
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, dec, nil
}

func truncateError(msg string) string {
	if len(msg) > maxErrorOverlayLen {
		return msg[:maxErrorOverlayLen]
	}
	return msg
}
