//go:build gst

package camera

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
	"go.uber.org/zap"
)

// GstSource captures grayscale frames through a GStreamer pipeline:
//
//	<platform camera src> → videoconvert → videoscale → GRAY8 capsfilter → appsink
type GstSource struct {
	pipeline *gst.Pipeline
	sink     *app.Sink
	width    int
	height   int
	seq      uint64
	logger   *zap.Logger
}

// NewGstSource builds and starts the capture pipeline.
func NewGstSource(cfg Config, logger *zap.Logger) (*GstSource, error) {
	gst.Init(nil)

	launch := pipelineString(cfg)
	pipeline, err := gst.NewPipelineFromString(launch)
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	elem, err := pipeline.GetElementByName("sink")
	if err != nil {
		return nil, fmt.Errorf("find appsink: %w", err)
	}
	sink := app.SinkFromElement(elem)

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("start pipeline: %w", err)
	}
	logger.Info("camera pipeline started", zap.String("pipeline", launch))

	return &GstSource{
		pipeline: pipeline,
		sink:     sink,
		width:    cfg.Width,
		height:   cfg.Height,
		logger:   logger,
	}, nil
}

func pipelineString(cfg Config) string {
	var src string
	switch runtime.GOOS {
	case "linux":
		device := cfg.Device
		if device == "" {
			device = "/dev/video0"
		}
		src = fmt.Sprintf("v4l2src device=%s", device)
	case "windows":
		src = "mfvideosrc"
		if cfg.Device != "" {
			src += " device-index=" + cfg.Device
		}
	case "darwin":
		src = "avfvideosrc"
		if cfg.Device != "" {
			src += " device-index=" + cfg.Device
		}
	default:
		src = "autovideosrc"
	}
	return fmt.Sprintf(
		"%s ! videoconvert ! videoscale ! video/x-raw,format=GRAY8,width=%d,height=%d ! appsink name=sink sync=false max-buffers=1 drop=true",
		src, cfg.Width, cfg.Height,
	)
}

// Read blocks until the pipeline produces the next frame.
func (s *GstSource) Read() (Frame, error) {
	sample := s.sink.PullSample()
	if sample == nil {
		if s.sink.IsEOS() {
			return Frame{}, ErrClosed
		}
		return Frame{}, fmt.Errorf("%w: no sample", ErrClosed)
	}

	width, height := s.width, s.height
	if caps := sample.GetCaps(); caps != nil {
		if st := caps.GetStructureAt(0); st != nil {
			if v, err := st.GetValue("width"); err == nil {
				if w, ok := v.(int); ok {
					width = w
				}
			}
			if v, err := st.GetValue("height"); err == nil {
				if h, ok := v.(int); ok {
					height = h
				}
			}
		}
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return Frame{}, fmt.Errorf("%w: empty sample", ErrClosed)
	}
	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 || height <= 0 || width <= 0 || len(data) < width*height {
		buffer.Unmap()
		return Frame{}, fmt.Errorf("camera: short buffer (%d bytes for %dx%d)", len(data), width, height)
	}

	// GRAY8 rows are padded to 4 bytes.
	stride := len(data) / height
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*width:(y+1)*width], data[y*stride:y*stride+width])
	}
	buffer.Unmap()

	s.seq++
	frame := Frame{
		Seq:       s.seq,
		Timestamp: time.Now(),
		Image:     img,
		TraceID:   uuid.New().String(),
	}
	s.logger.Debug("frame captured",
		zap.Uint64("seq", frame.Seq),
		zap.String("trace_id", frame.TraceID),
	)
	return frame, nil
}

// Close stops the pipeline.
func (s *GstSource) Close() error {
	if s.pipeline == nil {
		return nil
	}
	if err := s.pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("stop pipeline: %w", err)
	}
	return nil
}
