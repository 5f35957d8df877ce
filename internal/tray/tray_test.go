package tray

import "testing"

func TestTray_Toggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("two toggles should leave the tray enabled")
	}
}

func TestTray_SetEnabledSkipsCallback(t *testing.T) {
	tr := New()
	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)

	if tr.IsEnabled() {
		t.Error("SetEnabled(false) should disable the tray")
	}
	if called {
		t.Error("SetEnabled should not call the toggle callback")
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New()
	var resets, opens, quits int
	tr.OnReset(func() { resets++ })
	tr.OnOpen(func() { opens++ })
	tr.OnQuit(func() { quits++ })

	tr.invoke(func() func() { return tr.onReset })
	tr.invoke(func() func() { return tr.onOpen })
	tr.invoke(func() func() { return tr.onOpen })
	tr.invoke(func() func() { return tr.onQuit })

	if resets != 1 || opens != 2 || quits != 1 {
		t.Errorf("resets=%d opens=%d quits=%d, want 1 2 1", resets, opens, quits)
	}

	// Unset callbacks are ignored.
	New().invoke(func() func() { return nil })
}

func TestTray_SetLastResult(t *testing.T) {
	tr := New()
	tr.SetLastResult("3 + 4 = 7")

	if tr.LastResult() != "3 + 4 = 7" {
		t.Errorf("LastResult() = %q", tr.LastResult())
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleLabel(true), "● Running"},
		{toggleLabel(false), "○ Stopped"},
		{lastLabel(""), "Last: none"},
		{lastLabel("7 / 2 = 3.5"), "Last: 7 / 2 = 3.5"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("label = %q, want %q", tt.got, tt.want)
		}
	}
}
