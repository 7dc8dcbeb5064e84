package logic

import (
	"math/rand"
	"testing"
	"time"
)

func TestNewRegistryStartsIdle(t *testing.T) {
	r := NewRegistry(DefaultSequences())

	if got := r.Highest(); got != EventIdle {
		t.Errorf("expected IDLE, got %s", got)
	}
	if !r.Active(EventIdle) {
		t.Error("IDLE should always be active")
	}
	if events := r.ActiveEvents(); len(events) != 0 {
		t.Errorf("expected no active events, got %v", events)
	}
}

func TestNewRegistryMissingTemplatePanics(t *testing.T) {
	tpl := DefaultSequences()
	delete(tpl, EventIdentify)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing template")
		}
	}()
	NewRegistry(tpl)
}

func TestStartStop(t *testing.T) {
	r := NewRegistry(DefaultSequences())

	if !r.Start(EventNetworkError) {
		t.Error("Start should report a new activation")
	}
	if !r.Active(EventNetworkError) {
		t.Error("NETWORK_ERROR should be active")
	}
	if _, ok := r.live[EventNetworkError]; !ok {
		t.Error("active event should have a live sequence")
	}

	r.Stop(EventNetworkError)
	if r.Active(EventNetworkError) {
		t.Error("NETWORK_ERROR should not be active after Stop")
	}
	if _, ok := r.live[EventNetworkError]; ok {
		t.Error("stopped event should not have a live sequence")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rd := NewRenderer(r, now)

	r.Start(EventNetworkError)
	rd.Step(now)
	rd.Step(now.Add(time.Second))

	before := r.live[EventNetworkError]
	remaining := before.Remaining()
	if remaining != 2*time.Second {
		t.Fatalf("expected 2s remaining, got %v", remaining)
	}

	if r.Start(EventNetworkError) {
		t.Error("second Start should not report a new activation")
	}
	after := r.live[EventNetworkError]
	if after != before {
		t.Error("second Start replaced the live sequence")
	}
	if after.Remaining() != remaining {
		t.Errorf("countdown changed: got %v, want %v", after.Remaining(), remaining)
	}
}

func TestRestartResets(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rd := NewRenderer(r, now)

	r.Restart(EventNetworkError)
	rd.Step(now)
	rd.Step(now.Add(1150 * time.Millisecond))

	seq := r.live[EventNetworkError]
	if seq.Index() == 0 && seq.Remaining() == 3*time.Second {
		t.Fatal("sequence did not progress")
	}

	r.Restart(EventNetworkError)
	seq = r.live[EventNetworkError]
	if seq.Index() != 0 {
		t.Errorf("index: got %d, want 0", seq.Index())
	}
	if seq.Remaining() != 3*time.Second {
		t.Errorf("sequence remaining: got %v, want 3s", seq.Remaining())
	}
	for i, st := range seq.States {
		if st.Remaining() != st.Duration {
			t.Errorf("state %d remaining: got %v, want %v", i, st.Remaining(), st.Duration)
		}
	}
}

func TestRestartDoesNotMutateTemplate(t *testing.T) {
	tpl := DefaultSequences()
	r := NewRegistry(tpl)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rd := NewRenderer(r, now)

	r.Restart(EventNetworkConfiguredConnecting)
	rd.Step(now)
	rd.Step(now.Add(300 * time.Millisecond))

	for i, st := range tpl[EventNetworkConfiguredConnecting].States {
		if st.Remaining() != 0 {
			t.Errorf("template state %d was modified: remaining %v", i, st.Remaining())
		}
	}
}

func TestRestartFor(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	r.RestartFor(EventIdentify, 10*time.Second)

	seq := r.live[EventIdentify]
	if seq.Duration != 10*time.Second {
		t.Errorf("duration: got %v, want 10s", seq.Duration)
	}
	if seq.Remaining() != 10*time.Second {
		t.Errorf("remaining: got %v, want 10s", seq.Remaining())
	}
	if r.templates[EventIdentify].Duration != 3*time.Second {
		t.Errorf("template duration changed to %v", r.templates[EventIdentify].Duration)
	}
}

func TestStopMany(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	r.Start(EventNetworkError)
	r.Start(EventIdentify)
	r.Start(EventLightSwitchedLocal)

	r.StopMany(EventNetworkError, EventIdentify, EventNetworkConnected)

	if r.Active(EventNetworkError) || r.Active(EventIdentify) {
		t.Error("batch stop left events active")
	}
	if !r.Active(EventLightSwitchedLocal) {
		t.Error("LIGHT_SWITCHED_LOCAL should still be active")
	}
	if len(r.live) != 1 {
		t.Errorf("expected 1 live sequence, got %d", len(r.live))
	}
}

func TestIdleIsNeverStored(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	r.Start(EventIdle)
	r.Restart(EventIdle)
	r.Stop(EventIdle)

	if len(r.live) != 0 {
		t.Errorf("IDLE should never have a live sequence, got %d entries", len(r.live))
	}
	if !r.Active(EventIdle) {
		t.Error("IDLE should always be active")
	}
}

func TestInvalidEventPanics(t *testing.T) {
	r := NewRegistry(DefaultSequences())

	tests := []struct {
		name string
		fn   func()
	}{
		{"Start", func() { r.Start(Event(99)) }},
		{"Restart", func() { r.Restart(Event(-1)) }},
		{"Stop", func() { r.Stop(Event(numEvents)) }},
		{"Active", func() { r.Active(Event(42)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestHighestMatchesModel(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	rng := rand.New(rand.NewSource(1))
	model := make(map[Event]bool)

	for i := 0; i < 2000; i++ {
		e := Event(rng.Intn(numEvents))
		switch rng.Intn(4) {
		case 0:
			r.Start(e)
			model[e] = true
		case 1:
			r.Restart(e)
			model[e] = true
		case 2:
			r.Stop(e)
			delete(model, e)
		case 3:
			a, b := Event(rng.Intn(numEvents)), Event(rng.Intn(numEvents))
			r.StopMany(a, b)
			delete(model, a)
			delete(model, b)
		}
		delete(model, EventIdle)

		want := EventIdle
		for _, ev := range Events() {
			if model[ev] {
				want = ev
				break
			}
		}
		if got := r.Highest(); got != want {
			t.Fatalf("step %d: Highest() = %s, want %s", i, got, want)
		}
		if len(r.live) != len(model) {
			t.Fatalf("step %d: %d live sequences, %d active events", i, len(r.live), len(model))
		}
		for ev := range r.live {
			if !r.active.has(ev) {
				t.Fatalf("step %d: %s has a sequence but no presence bit", i, ev)
			}
		}
	}
}

func TestActiveEventsPriorityOrder(t *testing.T) {
	r := NewRegistry(DefaultSequences())
	r.Start(EventNetworkConnected)
	r.Start(EventIdentify)
	r.Start(EventNetworkUnconfiguredFailed)

	got := r.ActiveEvents()
	want := []Event{EventNetworkUnconfiguredFailed, EventIdentify, EventNetworkConnected}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
