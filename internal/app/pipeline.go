package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/detector"
	"github.com/ayusman/handcalc/internal/gesture"
	"github.com/ayusman/handcalc/internal/overlay"
	"github.com/ayusman/handcalc/internal/store"
)

// Start opens the camera, seeds the history from the store and launches the
// processing loop. The loop runs until ctx is cancelled or Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.cancel != nil {
		return nil
	}

	if err := a.loadHistory(); err != nil {
		a.log.Warn().Err(err).Msg("could not load calculation history")
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	fps := a.config.Camera.FPS
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	a.camera.SetFPS(fps)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(ctx, time.Second/time.Duration(fps), a.done)

	a.log.Info().Int("fps", fps).Msg("processing loop started")
	return nil
}

// Stop halts the processing loop and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := a.camera.Close(); err != nil {
		a.log.Error().Err(err).Msg("close camera")
	}
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			a.log.Error().Err(err).Msg("close detector")
		}
	}

	a.log.Info().Msg("processing loop stopped")
}

// run is the frame loop. Each tick reads one frame while streaming, feeds it
// through ProcessFrame and publishes the annotated JPEG. While streaming is
// stopped the camera is left alone but the result timeout still runs.
func (a *App) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !a.streaming.Load() {
			if a.engine.Tick() {
				a.afterTick()
			}
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrCameraNotOpen) {
				a.log.Error().Err(err).Msg("camera closed, stopping loop")
				return
			}
			a.log.Debug().Err(err).Msg("read frame")
			continue
		}

		jpeg, err := a.ProcessFrame(frame)
		frame.Close()
		if err != nil {
			a.log.Error().Err(err).Msg("process frame")
			continue
		}
		// Stop may have landed while this frame was in flight.
		if a.streaming.Load() {
			a.setFrame(jpeg)
		}
	}
}

// ProcessFrame runs one frame through detection, the calculator engine and
// the overlay, annotating frame in place, and returns it encoded as JPEG.
func (a *App) ProcessFrame(frame *gocv.Mat) ([]byte, error) {
	start := time.Now()
	changed := false

	if a.engine.Enabled() {
		hands, err := a.Detector().Detect(frame)
		if err != nil {
			a.metrics.DetectErrors.Inc()
			a.log.Debug().Err(err).Msg("detect hands")
		} else {
			outcome := a.engine.Observe(handCounts(hands))
			a.metrics.ObserveOutcome(outcome)
			changed = a.handleOutcome(outcome)
			overlay.DrawHands(frame, hands)
		}
	}

	if a.engine.Tick() {
		a.afterTick()
	} else if changed {
		a.notify()
	}

	overlay.DrawState(frame, a.engine.State())
	a.metrics.FrameDuration.Observe(time.Since(start).Seconds())

	return overlay.EncodeJPEG(*frame)
}

func (a *App) afterTick() {
	a.metrics.SetStage(calculator.StageAwaitingA)
	a.log.Debug().Msg("result timed out, ready for next calculation")
	a.notify()
}

// handleOutcome logs and persists the effect of a frame and reports whether
// the calculator state changed.
func (a *App) handleOutcome(o calculator.Outcome) bool {
	t := o.Transition
	if t == nil {
		return false
	}

	ev := a.log.Debug()
	if t.Advanced() {
		ev = a.log.Info()
	}
	ev.Int("symbol", t.Symbol).
		Str("from", t.From.String()).
		Str("to", t.To.String()).
		Bool("rejected", t.Rejected).
		Bool("dropped", t.Dropped).
		Msg("gesture confirmed")

	if t.Entry != nil {
		a.log.Info().Str("calculation", t.Entry.String()).Msg("calculation complete")
		a.persist(*t.Entry)
	}
	return t.Advanced()
}

func (a *App) persist(e calculator.Entry) {
	if a.store == nil {
		return
	}
	if err := a.store.Calculations().Create(entryToCalculation(e)); err != nil {
		a.log.Error().Err(err).Str("calculation", e.String()).Msg("persist calculation")
	}
}

// loadHistory seeds the engine history with the newest stored calculations.
func (a *App) loadHistory() error {
	if a.store == nil {
		return nil
	}

	size := a.config.Calculator.HistorySize
	if size <= 0 {
		size = calculator.DefaultHistorySize
	}

	calcs, err := a.store.Calculations().Recent(size)
	if err != nil {
		return err
	}

	entries := make([]calculator.Entry, 0, len(calcs))
	for i := len(calcs) - 1; i >= 0; i-- {
		e, ok := calculationToEntry(calcs[i])
		if !ok {
			a.log.Warn().Str("id", calcs[i].ID).Msg("skipping stored calculation with unknown operator")
			continue
		}
		entries = append(entries, e)
	}
	a.engine.LoadHistory(entries)

	a.log.Info().Int("count", len(entries)).Msg("loaded calculation history")
	return nil
}

func handCounts(hands []detector.HandLandmarks) []gesture.HandCount {
	fingers := detector.CountFingers(hands)
	counts := make([]gesture.HandCount, len(hands))
	for i := range hands {
		counts[i] = gesture.HandCount{
			Fingers:    fingers[i],
			Handedness: hands[i].Handedness,
		}
	}
	return counts
}

func entryToCalculation(e calculator.Entry) *store.Calculation {
	c := &store.Calculation{
		OperandA:  e.OperandA,
		Operator:  e.Operator.Symbol(),
		OperandB:  e.OperandB,
		Result:    e.Result.String(),
		IsError:   e.Result.IsError(),
		CreatedAt: e.At,
	}
	if !c.IsError {
		v := e.Result.Value
		c.ResultValue = &v
	}
	return c
}

func calculationToEntry(c *store.Calculation) (calculator.Entry, bool) {
	op, ok := calculator.ParseOperator(c.Operator)
	if !ok {
		return calculator.Entry{}, false
	}

	e := calculator.Entry{
		OperandA: c.OperandA,
		Operator: op,
		OperandB: c.OperandB,
		At:       c.CreatedAt,
	}
	switch {
	case c.IsError:
		e.Result = calculator.Result{Err: calculator.ErrDivisionByZero}
	case c.ResultValue != nil:
		e.Result = calculator.Result{Value: *c.ResultValue, Fractional: op == calculator.OpDivide}
	}
	return e, true
}
