// Package app wires the camera, the hand detector and the calculator engine
// into the frame processing loop behind the web UI.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/detector"
	"github.com/ayusman/handcalc/internal/logging"
	"github.com/ayusman/handcalc/internal/metrics"
	"github.com/ayusman/handcalc/internal/overlay"
	"github.com/ayusman/handcalc/internal/store"
	"github.com/ayusman/handcalc/internal/timeutil"
)

// Config holds configuration options for the application.
type Config struct {
	Camera     capture.Config
	Detector   detector.Config
	Calculator calculator.Config
	// Store persists completed calculations. Optional.
	Store *store.Store
	// Metrics records pipeline instrumentation. Optional.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	// Clock drives the calculator timing. Defaults to the wall clock.
	Clock timeutil.Clock
}

// App is the main application that turns camera frames into calculations.
type App struct {
	config   Config
	log      zerolog.Logger
	camera   capture.Camera
	detector detector.Detector
	engine   *calculator.Engine
	metrics  *metrics.Metrics
	store    *store.Store

	streaming atomic.Bool

	frameMu      sync.RWMutex
	frame        []byte
	stoppedFrame []byte

	subMu       sync.Mutex
	subscribers map[chan struct{}]struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new App instance with the given configuration.
// Processing and streaming start enabled.
func New(config Config) *App {
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}

	a := &App{
		config:      config,
		log:         logging.Component(config.Logger, "app"),
		camera:      capture.NewCamera(config.Camera),
		engine:      calculator.NewEngine(config.Calculator, config.Clock),
		metrics:     config.Metrics,
		store:       config.Store,
		subscribers: make(map[chan struct{}]struct{}),
	}
	a.streaming.Store(true)
	a.metrics.SetEnabled(true)
	a.metrics.SetStage(calculator.StageAwaitingA)

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		a.log.Info().Msg("using MediaPipe hand detection")
	} else {
		a.log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled starts or stops gesture processing together with the video
// stream. While stopped the stream carries the placeholder frame, and the
// last live frame is discarded so a restart never replays it.
func (a *App) SetEnabled(enabled bool) {
	a.engine.SetEnabled(enabled)
	a.streaming.Store(enabled)
	if !enabled {
		a.setFrame(nil)
	}
	a.metrics.SetEnabled(enabled)
	a.log.Info().Bool("enabled", enabled).Msg("processing toggled")
	a.notify()
}

// IsEnabled returns whether gesture processing is currently enabled.
func (a *App) IsEnabled() bool {
	return a.engine.Enabled()
}

// IsStreaming returns whether live frames are being streamed.
func (a *App) IsStreaming() bool {
	return a.streaming.Load()
}

// Reset abandons the calculation in progress.
func (a *App) Reset() {
	a.engine.Reset()
	a.metrics.SetStage(calculator.StageAwaitingA)
	a.log.Info().Msg("calculator reset")
	a.notify()
}

// State returns a snapshot of the calculator state.
func (a *App) State() calculator.State {
	return a.engine.State()
}

// History returns the formatted history lines, oldest first.
func (a *App) History() []string {
	return a.engine.History()
}

// Engine returns the calculator engine.
func (a *App) Engine() *calculator.Engine {
	return a.engine
}

// Store returns the calculation store, which may be nil.
func (a *App) Store() *store.Store {
	return a.store
}

// Metrics returns the pipeline metrics.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detector
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.camera
}

// LatestFrame returns the JPEG to stream next: the newest annotated frame,
// or the placeholder while streaming is stopped. It returns nil before the
// first frame has been produced.
func (a *App) LatestFrame() []byte {
	if !a.streaming.Load() {
		return a.placeholder()
	}
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.frame
}

func (a *App) setFrame(jpeg []byte) {
	a.frameMu.Lock()
	a.frame = jpeg
	a.frameMu.Unlock()
}

func (a *App) placeholder() []byte {
	a.frameMu.RLock()
	cached := a.stoppedFrame
	a.frameMu.RUnlock()
	if cached != nil {
		return cached
	}

	w, h := a.config.Camera.Width, a.config.Camera.Height
	if w <= 0 || h <= 0 {
		w, h = capture.DefaultWidth, capture.DefaultHeight
	}
	jpeg, err := overlay.StoppedJPEG(w, h)
	if err != nil {
		a.log.Error().Err(err).Msg("render stopped frame")
		return nil
	}

	a.frameMu.Lock()
	a.stoppedFrame = jpeg
	a.frameMu.Unlock()
	return jpeg
}

// Subscribe returns a channel that receives a signal whenever the calculator
// state or the processing toggle changes. Signals coalesce; read State after
// each one. Call the returned function to unsubscribe.
func (a *App) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	a.subMu.Lock()
	a.subscribers[ch] = struct{}{}
	a.subMu.Unlock()

	return ch, func() {
		a.subMu.Lock()
		delete(a.subscribers, ch)
		a.subMu.Unlock()
	}
}

func (a *App) notify() {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
