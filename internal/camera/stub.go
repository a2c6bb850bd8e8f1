//go:build !gst

package camera

import (
	"errors"

	"go.uber.org/zap"
)

// GstSource is not available without the gst build tag.
type GstSource struct{}

// NewGstSource returns an error when built without the gst build tag.
func NewGstSource(cfg Config, logger *zap.Logger) (*GstSource, error) {
	return nil, errors.New("camera: GStreamer capture requires the gst build tag")
}

// Read is not implemented without the gst build tag.
func (s *GstSource) Read() (Frame, error) {
	return Frame{}, ErrClosed
}

// Close is not implemented without the gst build tag.
func (s *GstSource) Close() error {
	return nil
}
