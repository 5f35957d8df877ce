package server

import (
	"fmt"
	"net/http"
	"time"
)

// Stream pacing.
const (
	liveFrameInterval    = 66 * time.Millisecond // ~15 FPS
	stoppedFrameInterval = 100 * time.Millisecond
)

// FrameSource provides the JPEG frames to stream.
type FrameSource interface {
	LatestFrame() []byte
	IsStreaming() bool
}

// StreamHandler serves the annotated frames as an MJPEG stream.
type StreamHandler struct {
	source FrameSource
}

// NewStreamHandler creates a new StreamHandler reading from source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients until they disconnect.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		interval := liveFrameInterval
		if !h.source.IsStreaming() {
			interval = stoppedFrameInterval
		}

		if frame := h.source.LatestFrame(); frame != nil {
			if err := writePart(w, frame); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-time.After(interval):
		}
	}
}

// writePart writes one JPEG as a multipart section.
func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
