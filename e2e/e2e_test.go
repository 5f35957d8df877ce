package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/detector"
	"github.com/ayusman/handcalc/internal/logging"
	"github.com/ayusman/handcalc/internal/metrics"
	"github.com/ayusman/handcalc/internal/server"
	"github.com/ayusman/handcalc/internal/store"
	"github.com/ayusman/handcalc/internal/timeutil"
	"github.com/ayusman/handcalc/testdata"
)

type harness struct {
	app      *app.App
	clock    *timeutil.MockClock
	detector *detector.MockDetector
	store    *store.Store
	ts       *httptest.Server
}

func newHarness(t *testing.T, dbPath string) *harness {
	t.Helper()

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	m := metrics.New()
	a := app.New(app.Config{
		Camera:     capture.DefaultConfig(),
		Detector:   detector.DefaultConfig(),
		Calculator: calculator.DefaultConfig(),
		Store:      s,
		Metrics:    m,
		Logger:     logging.Nop(),
		Clock:      clock,
	})
	d := detector.NewMockDetector()
	a.SetDetector(d)

	ts := httptest.NewServer(server.New(server.Config{
		Controller: a,
		Store:      s,
		Metrics:    m.Handler(),
		Logger:     logging.Nop(),
	}))
	t.Cleanup(ts.Close)

	return &harness{app: a, clock: clock, detector: d, store: s, ts: ts}
}

// perform holds each step for a full stabilizer window, waiting out the
// cooldown between steps.
func (h *harness) perform(t *testing.T, steps []int) {
	t.Helper()
	frame := testdata.BlankFrame()
	defer frame.Close()

	for _, n := range steps {
		h.clock.Advance(calculator.DefaultConfig().Cooldown + 100*time.Millisecond)
		h.detector.SetHands(testdata.Hands(n))
		for i := 0; i < calculator.DefaultConfig().BufferSize; i++ {
			if _, err := h.app.ProcessFrame(&frame); err != nil {
				t.Fatalf("ProcessFrame() error = %v", err)
			}
		}
	}
}

// waitOutResult lets the result display expire.
func (h *harness) waitOutResult(t *testing.T) {
	t.Helper()
	frame := testdata.BlankFrame()
	defer frame.Close()

	h.detector.SetHands(nil)
	h.clock.Advance(calculator.DefaultConfig().ResultDisplay + 100*time.Millisecond)
	if _, err := h.app.ProcessFrame(&frame); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
}

func (h *harness) getJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	resp, err := h.ts.Client().Get(h.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func (h *harness) post(t *testing.T, path string) string {
	t.Helper()
	resp, err := h.ts.Client().Post(h.ts.URL+path, "text/plain", nil)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t, filepath.Join(t.TempDir(), "data.db"))

	t.Run("InitialState", func(t *testing.T) {
		var state struct {
			Stage   string `json:"stage"`
			Enabled bool   `json:"enabled"`
		}
		h.getJSON(t, "/api/state", &state)
		if state.Stage != "A" || !state.Enabled {
			t.Errorf("state = %+v, want stage A enabled", state)
		}
	})

	for _, script := range testdata.Scripts {
		t.Run(script.Name, func(t *testing.T) {
			h.perform(t, script.Steps)

			var state struct {
				Stage string `json:"stage"`
			}
			h.getJSON(t, "/api/state", &state)
			if state.Stage != "Result" {
				t.Fatalf("stage = %s, want Result", state.Stage)
			}

			var history []string
			h.getJSON(t, "/history", &history)
			if len(history) == 0 || history[len(history)-1] != script.Want {
				t.Errorf("last history line = %v, want %q", history, script.Want)
			}

			h.waitOutResult(t)
		})
	}

	t.Run("Persisted", func(t *testing.T) {
		var resp struct {
			Calculations []struct {
				Result string `json:"result"`
			} `json:"calculations"`
			Total int `json:"total"`
		}
		h.getJSON(t, "/api/calculations?limit=1", &resp)
		if resp.Total != len(testdata.Scripts) {
			t.Errorf("total = %d, want %d", resp.Total, len(testdata.Scripts))
		}
		if len(resp.Calculations) != 1 || resp.Calculations[0].Result != "1.0" {
			t.Errorf("newest calculation = %+v, want 1.0", resp.Calculations)
		}
	})

	t.Run("StopAndStart", func(t *testing.T) {
		if body := h.post(t, "/control/stop"); body != "Stopped" {
			t.Errorf("stop body = %q", body)
		}
		h.perform(t, []int{3})

		var state struct {
			Stage   string `json:"stage"`
			Enabled bool   `json:"enabled"`
		}
		h.getJSON(t, "/api/state", &state)
		if state.Stage != "A" || state.Enabled {
			t.Errorf("stopped state = %+v, want stage A disabled", state)
		}

		if body := h.post(t, "/control/start"); body != "Started" {
			t.Errorf("start body = %q", body)
		}
		h.perform(t, []int{3})
		h.getJSON(t, "/api/state", &state)
		if state.Stage != "B" {
			t.Errorf("stage = %s, want B after restart", state.Stage)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		if body := h.post(t, "/control/reset"); body != "Reset" {
			t.Errorf("reset body = %q", body)
		}
		var state struct {
			Stage    string `json:"stage"`
			OperandA *int   `json:"operand_a"`
		}
		h.getJSON(t, "/api/state", &state)
		if state.Stage != "A" || state.OperandA != nil {
			t.Errorf("state after reset = %+v", state)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := h.ts.Client().Get(h.ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("metrics status = %d", resp.StatusCode)
		}
	})
}

func TestE2E_HistoryReloadedAfterRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")

	first := newHarness(t, dbPath)
	first.perform(t, testdata.Scripts[0].Steps)
	first.store.Close()

	second := newHarness(t, dbPath)
	cam, frame := capture.NewBlankMockCamera(testdata.FrameWidth, testdata.FrameHeight)
	defer frame.Close()
	second.app.SetCamera(cam)

	if err := second.app.Start(t.Context()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer second.app.Stop()

	var history []string
	second.getJSON(t, "/history", &history)
	if len(history) != 1 || history[0] != testdata.Scripts[0].Want {
		t.Errorf("history after restart = %v, want [%s]", history, testdata.Scripts[0].Want)
	}
}
