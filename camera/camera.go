// Package camera wraps the capture device behind an explicitly owned
// handle. The device is created once by main, injected into the pipeline,
// and released on shutdown; nothing else touches the hardware.
package camera

import (
	"fmt"
	"strconv"

	"gocv.io/x/gocv"
)

// Device is a capture handle over one camera or stream. A Device whose
// open failed is still usable: IsOpened reports false and the pipeline
// degrades instead of crashing.
//
// Device is not safe for concurrent Read calls; the pipeline engine
// serializes access.
type Device struct {
	cap    *gocv.VideoCapture
	source string
}

// Open opens a capture source. The source is either a numeric device
// index ("0") or a stream URL/path. On failure the returned Device is
// non-nil but closed, alongside the error, so the caller can keep running
// in degraded mode.
func Open(source string) (*Device, error) {
	d := &Device{source: source}

	var (
		cap *gocv.VideoCapture
		err error
	)
	if id, convErr := strconv.Atoi(source); convErr == nil {
		cap, err = gocv.OpenVideoCapture(id)
	} else {
		cap, err = gocv.OpenVideoCapture(source)
	}
	if err != nil {
		return d, fmt.Errorf("could not open capture source %q: %w", source, err)
	}

	d.cap = cap
	return d, nil
}

// IsOpened reports whether the capture device is usable.
func (d *Device) IsOpened() bool {
	return d.cap != nil && d.cap.IsOpened()
}

// Read grabs the next frame into dst, reporting false on signal loss.
func (d *Device) Read(dst *gocv.Mat) bool {
	if d.cap == nil {
		return false
	}
	return d.cap.Read(dst)
}

// Source returns the configured capture source string.
func (d *Device) Source() string {
	return d.source
}

// Close releases the capture device. Safe on a never-opened device.
func (d *Device) Close() error {
	if d.cap == nil {
		return nil
	}
	return d.cap.Close()
}
