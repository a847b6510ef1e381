package detection

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// Backend selects the OpenCV DNN compute backend.
type Backend int

const (
	BackendCPU Backend = iota
	BackendCUDA
)

func (b Backend) String() string {
	if b == BackendCUDA {
		return "CUDA"
	}
	return "CPU"
}

// blobSize is the square input size the YOLO network expects.
const blobSize = 640

// DNNProvider implements InferenceProvider on the OpenCV DNN module.
// Detect is safe for concurrent use; inference is serialized internally.
type DNNProvider struct {
	backend    Backend
	net        gocv.Net
	classNames []string
	mu         sync.Mutex
}

// NewDNNProvider creates an uninitialized provider for the given backend.
func NewDNNProvider(backend Backend) *DNNProvider {
	return &DNNProvider{backend: backend}
}

// Initialize loads the network and class names for this provider.
func (p *DNNProvider) Initialize(weightsPath, configPath, namesPath string) error {
	p.net = gocv.ReadNet(weightsPath, configPath)
	if p.net.Empty() {
		return fmt.Errorf("failed to load network from %s and %s", weightsPath, configPath)
	}

	switch p.backend {
	case BackendCUDA:
		if err := p.net.SetPreferableBackend(gocv.NetBackendCUDA); err != nil {
			p.net.Close()
			return fmt.Errorf("could not select CUDA backend: %w", err)
		}
		if err := p.net.SetPreferableTarget(gocv.NetTargetCUDA); err != nil {
			p.net.Close()
			return fmt.Errorf("could not select CUDA target: %w", err)
		}
	default:
		p.net.SetPreferableBackend(gocv.NetBackendDefault)
		p.net.SetPreferableTarget(gocv.NetTargetCPU)
	}

	namesBytes, err := os.ReadFile(namesPath)
	if err != nil {
		p.net.Close()
		return fmt.Errorf("could not read class names: %w", err)
	}
	for _, name := range strings.Split(string(namesBytes), "\n") {
		p.classNames = append(p.classNames, strings.TrimSpace(name))
	}

	return nil
}

// Detect performs object detection on a frame. Box coordinates are in the
// pixel space of the input frame.
func (p *DNNProvider) Detect(frame gocv.Mat) ([]Detection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame.Empty() {
		return nil, fmt.Errorf("empty input frame")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(blobSize, blobSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	p.net.SetInput(blob, "")
	output := p.net.Forward("")
	defer output.Close()

	frameW := float32(frame.Cols())
	frameH := float32(frame.Rows())

	var detections []Detection
	for i := 0; i < output.Rows(); i++ {
		row := output.RowRange(i, i+1)
		data := row.Clone()
		scores := data.ColRange(5, data.Cols())
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(scores)
		classID := maxLoc.X
		confidence := float64(maxVal)

		if confidence >= DefaultConfidenceThreshold && classID < len(p.classNames) {
			// Output coordinates are normalized box center and size.
			cx := data.GetFloatAt(0, 0) * frameW
			cy := data.GetFloatAt(0, 1) * frameH
			w := data.GetFloatAt(0, 2) * frameW
			h := data.GetFloatAt(0, 3) * frameH

			left := int(cx - w/2)
			top := int(cy - h/2)
			rect := image.Rect(left, top, left+int(w), top+int(h))

			detections = append(detections, Detection{
				Rect:       rect,
				Label:      p.classNames[classID],
				Confidence: confidence,
			})
		}

		scores.Close()
		data.Close()
		row.Close()
	}

	return detections, nil
}

// Close releases the network.
func (p *DNNProvider) Close() error {
	return p.net.Close()
}

// ProviderInfo returns information about this provider.
func (p *DNNProvider) ProviderInfo() ProviderInfo {
	return ProviderInfo{
		Backend: p.backend.String(),
		Device:  p.backend.String(),
	}
}
