package app

import (
	"errors"
	"time"

	"github.com/ayusman/airsig/internal/detector"
	"github.com/ayusman/airsig/internal/store"
)

// runPipeline is the frame loop: read, enhance, detect, classify, draw,
// composite, publish. It runs until stopCh closes and signals completion
// on done.
//
// The loop is paced by a ticker at the camera FPS. Detection failures
// and dropped frames log and continue; the loop only exits on stop.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Second / time.Duration(a.camera.FPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	frameCount := 0
	fpsWindow := time.Now()

	autosave := a.config.Settings.Autosave
	lastAutosave := time.Now()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.logger.Debug("frame read failed", "err", err)
			continue
		}

		a.enhance.Enhance(frame)

		if a.IsEnabled() {
			landmarks, err := a.det.Detect(frame)
			if err != nil {
				a.logger.Debug("hand detection failed", "err", err)
				landmarks = nil
			}

			hands := toPixelHands(landmarks, frame.Cols(), frame.Rows())
			a.driver.ProcessHands(hands, time.Since(start).Seconds())
		}

		a.engine.OverlayOnFrame(frame)

		a.mu.Lock()
		rec := a.recorder
		a.mu.Unlock()
		if rec != nil {
			if err := rec.Write(frame); err != nil {
				if errors.Is(err, ErrRecordingFull) {
					a.logger.Warn("recording frame limit reached, stopping")
				} else {
					a.logger.Error("recording write failed", "err", err)
				}
			}
		}

		a.mailbox.Set(*frame)
		frame.Close()

		// Throughput measurement over one-second windows.
		frameCount++
		if elapsed := time.Since(fpsWindow); elapsed >= time.Second {
			a.mu.Lock()
			a.fps = float64(frameCount) / elapsed.Seconds()
			a.mu.Unlock()
			frameCount = 0
			fpsWindow = time.Now()
		}

		if autosave.Enabled && a.config.Store != nil &&
			time.Since(lastAutosave) >= time.Duration(autosave.IntervalSeconds)*time.Second {
			lastAutosave = time.Now()
			if a.driver.Modified() {
				a.runAutosave()
			}
		}
	}
}

// toPixelHands projects normalized landmark frames into pixel space.
func toPixelHands(landmarks []detector.HandLandmarks, width, height int) []detector.Hand {
	hands := make([]detector.Hand, 0, len(landmarks))
	for i := range landmarks {
		hands = append(hands, landmarks[i].ToPixels(width, height))
	}
	return hands
}

// runAutosave snapshots the canvas into the autosave history.
func (a *App) runAutosave() {
	png, err := a.engine.EncodePNG()
	if err != nil {
		a.logger.Error("autosave encode failed", "err", err)
		return
	}

	w, h := a.engine.Size()
	p := &store.Project{
		Name:         "autosave",
		Canvas:       png,
		Width:        w,
		Height:       h,
		BrushColor:   a.driver.BrushColor(),
		BrushSize:    a.driver.BrushSize(),
		BrushOpacity: a.driver.BrushOpacity(),
		EraserRadius: 3 * a.driver.BrushSize(),
	}
	if err := a.config.Store.Projects().SaveAutosave(p); err != nil {
		a.logger.Error("autosave failed", "err", err)
		return
	}

	a.driver.ClearModified()
	a.logger.Debug("autosaved canvas")
}
