package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airsig/internal/app"
)

// streamInterval paces the MJPEG stream at ~15 FPS. The pipeline runs
// faster; skipped frames are simply never encoded.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves composited frames from the mailbox as MJPEG.
type StreamHandler struct {
	mailbox *app.FrameMailbox
}

// NewStreamHandler creates a new StreamHandler reading from the mailbox.
func NewStreamHandler(mailbox *app.FrameMailbox) *StreamHandler {
	return &StreamHandler{mailbox: mailbox}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var lastSeq uint64

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, seq, ok := h.mailbox.Get()
		if !ok || seq == lastSeq {
			if ok {
				frame.Close()
			}
			time.Sleep(streamInterval)
			continue
		}
		lastSeq = seq

		buf, err := gocv.IMEncode(".jpg", frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(streamInterval)
	}
}
