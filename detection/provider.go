package detection

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// DefaultConfidenceThreshold is the minimum confidence for a detection to
// be reported. Matches the threshold the cart was tuned with.
const DefaultConfidenceThreshold = 0.4

// InferenceProvider defines the interface for object-detection inference.
type InferenceProvider interface {
	Initialize(weightsPath, configPath, namesPath string) error
	// Detect runs inference on a frame and returns all detections above the
	// confidence threshold, in model output order.
	Detect(frame gocv.Mat) ([]Detection, error)
	Close() error
	ProviderInfo() ProviderInfo
}

// ProviderInfo describes the active inference backend.
type ProviderInfo struct {
	Backend  string        // "CUDA" or "CPU"
	Device   string        // Device identifier
	InitTime time.Duration // Time taken to initialize
}

// Manager selects and owns the inference provider. It tries the CUDA
// backend first and falls back to CPU, verifying each candidate with a
// test inference before accepting it.
type Manager struct {
	provider InferenceProvider
	info     ProviderInfo
	log      *logrus.Entry
}

// NewManager creates a provider manager. Call Initialize before use.
func NewManager(log *logrus.Logger) *Manager {
	return &Manager{log: log.WithField("component", "detection")}
}

// Initialize auto-selects the best available backend for the given model
// files. An error means no backend could load the model; the caller is
// expected to keep running without detection.
func (m *Manager) Initialize(weightsPath, configPath, namesPath string) error {
	for _, backend := range []Backend{BackendCUDA, BackendCPU} {
		p := NewDNNProvider(backend)

		start := time.Now()
		if err := p.Initialize(weightsPath, configPath, namesPath); err != nil {
			m.log.WithError(err).Debugf("%s backend initialization failed", backend)
			continue
		}
		if !testProvider(p) {
			m.log.Debugf("%s backend failed test inference", backend)
			p.Close()
			continue
		}

		m.provider = p
		m.info = p.ProviderInfo()
		m.info.InitTime = time.Since(start)
		m.log.WithFields(logrus.Fields{
			"backend":   m.info.Backend,
			"init_time": m.info.InitTime,
		}).Info("inference provider ready")
		return nil
	}
	return fmt.Errorf("no inference backend could load model %s", weightsPath)
}

// Provider returns the active provider, or nil if none initialized.
func (m *Manager) Provider() InferenceProvider {
	return m.provider
}

// Info returns information about the active provider.
func (m *Manager) Info() ProviderInfo {
	return m.info
}

// Close releases the active provider.
func (m *Manager) Close() error {
	if m.provider != nil {
		return m.provider.Close()
	}
	return nil
}

// testProvider runs one inference on a blank frame to verify the backend
// actually works, not just loads.
func testProvider(p InferenceProvider) bool {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	_, err := p.Detect(frame)
	return err == nil
}
