package pipeline

import (
	"errors"
	"image"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"trailcam/detection"
	"trailcam/guidance"
	"trailcam/overlay"
)

// fakeSource produces synthetic frames at an arbitrary capture size to
// exercise the canonical resize.
type fakeSource struct {
	opened  bool
	hasNext bool
	width   int
	height  int
}

func (f *fakeSource) IsOpened() bool { return f.opened }

func (f *fakeSource) Read(dst *gocv.Mat) bool {
	if !f.hasNext {
		return false
	}
	frame := gocv.NewMatWithSize(f.height, f.width, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.CopyTo(dst)
	return true
}

// fakeDetector returns a fixed detection set or a fixed error.
type fakeDetector struct {
	dets  []detection.Detection
	err   error
	calls int
}

func (f *fakeDetector) Detect(frame gocv.Mat) ([]detection.Detection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.dets, nil
}

func newTestEngine(source CaptureSource, det Detector) *Engine {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewEngine(source, det, detection.NewClassifier(nil), overlay.NewRenderer(), log)
}

func det(x1, y1, x2, y2 int, label string, conf float64) detection.Detection {
	return detection.Detection{Rect: image.Rect(x1, y1, x2, y2), Label: label, Confidence: conf}
}

func processAndClose(t *testing.T, e *Engine) Decision {
	t.Helper()
	img, dec := e.Process()
	require.False(t, img.Empty())
	assert.Equal(t, FrameWidth, img.Cols())
	assert.Equal(t, FrameHeight, img.Rows())
	img.Close()
	return dec
}

func TestPrivacyModeWinsOverEverything(t *testing.T) {
	// Camera healthy, model healthy: privacy still takes precedence.
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 1280, height: 720},
		&fakeDetector{dets: []detection.Detection{det(0, 0, 50, 100, "person", 0.9)}})
	e.SetRunning(false)

	dec := processAndClose(t, e)
	assert.Equal(t, ModePrivacy, dec.Mode)
	assert.False(t, dec.HasTarget)
}

func TestNoCameraMode(t *testing.T) {
	e := newTestEngine(&fakeSource{opened: false}, nil)

	dec := processAndClose(t, e)
	assert.Equal(t, ModeNoCamera, dec.Mode)
}

func TestNilSourceIsNoCamera(t *testing.T) {
	e := newTestEngine(nil, nil)

	dec := processAndClose(t, e)
	assert.Equal(t, ModeNoCamera, dec.Mode)
}

func TestNoSignalMode(t *testing.T) {
	e := newTestEngine(&fakeSource{opened: true, hasNext: false}, nil)

	dec := processAndClose(t, e)
	assert.Equal(t, ModeNoSignal, dec.Mode)
}

func TestNoModelModeStillStreams(t *testing.T) {
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 320, height: 240}, nil)

	dec := processAndClose(t, e)
	assert.Equal(t, ModeNoModel, dec.Mode)
}

func TestDetectionErrorTruncatedAndSwallowed(t *testing.T) {
	source := &fakeSource{opened: true, hasNext: true, width: 640, height: 480}
	failing := &fakeDetector{err: errors.New("inference engine exploded with a very long diagnostic message")}
	e := newTestEngine(source, failing)

	dec := processAndClose(t, e)
	assert.Equal(t, ModeDetectionError, dec.Mode)
	assert.Len(t, dec.Error, 30)
	assert.Equal(t, "inference engine exploded with", dec.Error)

	// The stream continues: the next frame retries the full pipeline.
	dec = processAndClose(t, e)
	assert.Equal(t, ModeDetectionError, dec.Mode)
	assert.Equal(t, 2, failing.calls)
}

func TestShortDetectionErrorKeptWhole(t *testing.T) {
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 640, height: 480},
		&fakeDetector{err: errors.New("boom")})

	dec := processAndClose(t, e)
	assert.Equal(t, "boom", dec.Error)
}

func TestActiveModeWithTarget(t *testing.T) {
	dets := []detection.Detection{
		det(180, 100, 260, 360, "person", 0.8), // center x 220 -> LEFT
		det(300, 250, 340, 470, "chair", 0.7),  // center lane obstacle
	}
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 1920, height: 1080},
		&fakeDetector{dets: dets})

	dec := processAndClose(t, e)
	assert.Equal(t, ModeActive, dec.Mode)
	assert.Equal(t, 2, dec.Detections)
	assert.True(t, dec.HasTarget)
	assert.Equal(t, image.Rect(180, 100, 260, 360), dec.Target.Rect)
	assert.Equal(t, guidance.DirectionLeft, dec.Direction)
	assert.Equal(t, "LEFT", dec.Steering)
	assert.Equal(t, guidance.LaneState{CenterBlocked: true}, dec.Lanes)
	assert.Equal(t, guidance.AdvisoryGoLeft, dec.Advisory)
}

func TestActiveModeSearching(t *testing.T) {
	dets := []detection.Detection{
		det(300, 250, 340, 470, "chair", 0.7),
	}
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 640, height: 480},
		&fakeDetector{dets: dets})

	dec := processAndClose(t, e)
	assert.Equal(t, ModeActive, dec.Mode)
	assert.False(t, dec.HasTarget)
	assert.Empty(t, dec.Steering)
	// Obstacle analysis still runs without a target.
	assert.Equal(t, guidance.AdvisoryGoLeft, dec.Advisory)
}

func TestIdempotentDecisions(t *testing.T) {
	dets := []detection.Detection{
		det(400, 100, 500, 400, "person", 0.9),
		det(10, 200, 90, 470, "dog", 0.6),
	}
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 640, height: 480},
		&fakeDetector{dets: dets})

	first := processAndClose(t, e)
	second := processAndClose(t, e)
	assert.Equal(t, first, second)
}

func TestStatsRecordModes(t *testing.T) {
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 640, height: 480}, nil)

	processAndClose(t, e)
	e.SetRunning(false)
	processAndClose(t, e)
	processAndClose(t, e)

	snap := e.Stats().Snapshot()
	assert.Equal(t, int64(3), snap.TotalFrames)
	assert.Equal(t, int64(1), snap.ByMode["no_model"])
	assert.Equal(t, int64(2), snap.ByMode["privacy"])
}

func TestFrameEncodesJPEG(t *testing.T) {
	e := newTestEngine(&fakeSource{opened: true, hasNext: true, width: 640, height: 480}, nil)

	buf, dec, err := e.Frame()
	require.NoError(t, err)
	assert.Equal(t, ModeNoModel, dec.Mode)
	require.True(t, len(buf) > 2)
	// JPEG SOI marker.
	assert.Equal(t, byte(0xff), buf[0])
	assert.Equal(t, byte(0xd8), buf[1])
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "privacy", ModePrivacy.String())
	assert.Equal(t, "no_camera", ModeNoCamera.String())
	assert.Equal(t, "no_signal", ModeNoSignal.String())
	assert.Equal(t, "no_model", ModeNoModel.String())
	assert.Equal(t, "detection_error", ModeDetectionError.String())
	assert.Equal(t, "active", ModeActive.String())
}
