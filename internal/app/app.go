// Package app wires capture, detection, gesture classification, and the
// drawing engine into the AirSig frame pipeline.
package app

import (
	"fmt"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/airsig/internal/canvas"
	"github.com/ayusman/airsig/internal/capture"
	"github.com/ayusman/airsig/internal/config"
	"github.com/ayusman/airsig/internal/detector"
	"github.com/ayusman/airsig/internal/filter"
	"github.com/ayusman/airsig/internal/store"
)

// Config holds the dependencies and settings for the application.
type Config struct {
	Store    *store.Store
	Logger   *charmlog.Logger
	Settings config.Config
}

// App orchestrates the capture-to-canvas pipeline and owns the runtime
// state the server and tray expose.
type App struct {
	config  Config
	logger  *charmlog.Logger
	camera  capture.Camera
	enhance *capture.FrameEnhancer
	det     detector.Detector
	engine  *canvas.Engine
	driver  *Driver
	mailbox *FrameMailbox

	mu       sync.Mutex
	recorder *Recorder
	enabled  bool
	stopCh   chan struct{}
	done     chan struct{}
	fps      float64
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = charmlog.Default()
	}
	settings := cfg.Settings

	engine := canvas.NewEngine(settings.Camera.Width, settings.Camera.Height, canvas.Color("black"))

	a := &App{
		config:  cfg,
		logger:  logger,
		camera:  capture.NewCamera(settings.Camera.Index, settings.Camera.Width, settings.Camera.Height),
		enhance: capture.NewFrameEnhancer(settings.Camera.Mirror, settings.Camera.LowLight),
		engine:  engine,
		mailbox: NewFrameMailbox(),
		enabled: true,
		driver: NewDriver(engine, DriverConfig{
			SmoothingEnabled: settings.Smoothing.Enabled,
			SmoothingLevel:   filter.Stabilization(settings.Smoothing.Level),
			JitterThreshold:  settings.Smoothing.JitterThreshold,
			PinchThreshold:   settings.Gesture.PinchThreshold,
			BrushColor:       settings.Brush.Color,
			BrushSize:        settings.Brush.Size,
			BrushOpacity:     settings.Brush.Opacity,
		}),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.det = mp
		logger.Info("using MediaPipe hand detection")
	} else {
		logger.Warn("MediaPipe not available, using mock detector", "err", err)
		a.det = detector.NewMockDetector()
	}

	return a
}

// SetDetector replaces the hand detector. Used by tests and the tray.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.det = d
}

// SetCamera replaces the camera implementation. Must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetEnabled pauses or resumes gesture tracking. The pipeline keeps
// streaming frames while disabled, it just stops interpreting them.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture tracking is active.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Start opens the camera and launches the frame pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	a.logger.Info("pipeline started",
		"camera", a.config.Settings.Camera.Index,
		"size", fmt.Sprintf("%dx%d", a.config.Settings.Camera.Width, a.config.Settings.Camera.Height))
	return nil
}

// Stop halts the pipeline and releases all resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			a.logger.Warn("pipeline did not stop in time, releasing resources anyway")
		}
	}

	if err := a.camera.Close(); err != nil {
		a.logger.Error("closing camera", "err", err)
	}
	if err := a.det.Close(); err != nil {
		a.logger.Error("closing detector", "err", err)
	}

	a.mu.Lock()
	rec := a.recorder
	a.recorder = nil
	a.mu.Unlock()
	if rec != nil {
		if err := rec.Close(); err != nil {
			a.logger.Error("closing recorder", "err", err)
		}
	}

	a.mailbox.Close()
	a.logger.Info("pipeline stopped")
}

// StartRecording begins writing composited frames to path.
func (a *App) StartRecording(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recorder != nil && a.recorder.Recording() {
		return fmt.Errorf("recording already in progress")
	}
	a.recorder = NewRecorder(path, float64(a.camera.FPS()))
	a.logger.Info("recording started", "path", path)
	return nil
}

// StopRecording finalizes the current recording, if any.
func (a *App) StopRecording() error {
	a.mu.Lock()
	rec := a.recorder
	a.recorder = nil
	a.mu.Unlock()

	if rec == nil {
		return nil
	}
	a.logger.Info("recording stopped", "frames", rec.Frames())
	return rec.Close()
}

// SaveProject persists the current canvas under the given name and
// returns the stored project.
func (a *App) SaveProject(name string) (*store.Project, error) {
	if a.config.Store == nil {
		return nil, fmt.Errorf("no store configured")
	}

	png, err := a.engine.EncodePNG()
	if err != nil {
		return nil, err
	}

	w, h := a.engine.Size()
	p := &store.Project{
		Name:         name,
		Canvas:       png,
		Width:        w,
		Height:       h,
		BrushColor:   a.driver.BrushColor(),
		BrushSize:    a.driver.BrushSize(),
		BrushOpacity: a.driver.BrushOpacity(),
		EraserRadius: 3 * a.driver.BrushSize(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := a.config.Store.Projects().Create(p); err != nil {
		return nil, err
	}

	a.driver.ClearModified()
	a.logger.Info("project saved", "id", p.ID, "name", name)
	return p, nil
}

// LoadProject restores a stored canvas and its brush setup.
func (a *App) LoadProject(id string) error {
	if a.config.Store == nil {
		return fmt.Errorf("no store configured")
	}

	p, err := a.config.Store.Projects().GetByID(id)
	if err != nil {
		return err
	}

	mat, err := gocv.IMDecode(p.Canvas, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("decode project canvas: %w", err)
	}
	defer mat.Close()

	if err := a.engine.SetCanvas(mat); err != nil {
		return err
	}

	a.driver.SetBrushColor(p.BrushColor)
	a.driver.SetBrushSize(p.BrushSize)
	a.driver.ClearModified()
	a.logger.Info("project loaded", "id", id, "name", p.Name)
	return nil
}

// Engine returns the drawing engine.
func (a *App) Engine() *canvas.Engine {
	return a.engine
}

// Driver returns the gesture driver.
func (a *App) Driver() *Driver {
	return a.driver
}

// Mailbox returns the latest-frame mailbox used by the stream endpoints.
func (a *App) Mailbox() *FrameMailbox {
	return a.mailbox
}

// Enhancer returns the frame enhancer for runtime toggles.
func (a *App) Enhancer() *capture.FrameEnhancer {
	return a.enhance
}

// Store returns the persistence layer, possibly nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// FPS returns the measured pipeline throughput in frames per second.
func (a *App) FPS() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fps
}

// Recording reports whether a recording is accepting frames.
func (a *App) Recording() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recorder != nil && a.recorder.Recording()
}
