package attempt

import "testing"

func TestMonitorThreshold(t *testing.T) {
	kinds := []ViolationKind{ViolationTab, ViolationFullscreen}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			m := NewMonitor()
			for i := 1; i <= 4; i++ {
				r := m.Report(kind)
				if r.Count != i {
					t.Fatalf("call %d: count = %d", i, r.Count)
				}
				want := i >= BlockThreshold
				if r.ShouldBlock != want {
					t.Fatalf("call %d: shouldBlock = %v, want %v", i, r.ShouldBlock, want)
				}
			}
		})
	}
}

func TestMonitorCountersArePerKind(t *testing.T) {
	m := NewMonitor()
	m.Report(ViolationTab)
	m.Report(ViolationTab)
	r := m.Report(ViolationFullscreen)
	if r.ShouldBlock {
		t.Fatal("mixed kinds must not combine toward the threshold")
	}
	if !r.RequestFullscreen {
		t.Fatal("fullscreen violation should request re-entry")
	}
	if m.Count(ViolationTab) != 2 || m.Count(ViolationFullscreen) != 1 {
		t.Fatalf("counts = %v", m.Counts())
	}

	m.Reset()
	if m.Count(ViolationTab) != 0 || len(m.Counts()) != 0 {
		t.Fatalf("after reset counts = %v", m.Counts())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		sig  Signal
		kind ViolationKind
		ok   bool
	}{
		{Signal{Type: "visibility_hidden"}, ViolationTab, true},
		{Signal{Type: "blur"}, ViolationTab, true},
		{Signal{Type: "fullscreen_exit"}, ViolationFullscreen, true},
		{Signal{Type: "keydown", Key: "Alt+Tab"}, ViolationTab, true},
		{Signal{Type: "keydown", Key: "Control + W"}, ViolationTab, true},
		{Signal{Type: "keydown", Key: "ctrl+tab"}, ViolationTab, true},
		{Signal{Type: "keydown", Key: "F11"}, ViolationTab, true},
		{Signal{Type: "keydown", Key: "ctrl+c"}, "", false},
		{Signal{Type: "keydown", Key: "a"}, "", false},
		{Signal{Type: "mousemove"}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.sig.Type+" "+tc.sig.Key, func(t *testing.T) {
			kind, ok := Classify(tc.sig)
			if kind != tc.kind || ok != tc.ok {
				t.Fatalf("Classify(%+v) = %q, %v; want %q, %v", tc.sig, kind, ok, tc.kind, tc.ok)
			}
		})
	}
}
