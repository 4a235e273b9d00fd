package event

import (
	"sync"
	"testing"
)

func TestSubscription_Identity(t *testing.T) {
	ev := NewEvent("Camera.Zoom")

	a := ev.Subscribe(Action(func(*Params) {}))
	b := ev.Subscribe(Action(func(*Params) {}))

	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected unique non-empty IDs, got %q and %q", a.ID(), b.ID())
	}
	if a.EventID() != "Camera.Zoom" {
		t.Errorf("unexpected event ID: %s", a.EventID())
	}
}

func TestSubscription_ReleaseIsIdempotent(t *testing.T) {
	ev := NewEvent("Camera.Zoom")
	sub := ev.Subscribe(Action(func(*Params) {}))

	if !sub.Active() {
		t.Fatal("new subscription should be active")
	}
	if !sub.Release() {
		t.Error("first Release should report true")
	}
	if sub.Release() {
		t.Error("second Release should report false")
	}
	if sub.Active() {
		t.Error("released subscription should be inactive")
	}
	if ev.Len() != 0 {
		t.Errorf("expected empty event, got %d", ev.Len())
	}
}

func TestSubscription_ReleaseAfterPromotion(t *testing.T) {
	r := NewRegistry()

	count := 0
	sub, live := r.Subscribe("Foo", Action(func(*Params) { count++ }))
	if live {
		t.Fatal("expected pending subscription")
	}

	ev, err := r.Register("Foo")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !sub.Release() {
		t.Fatal("Release should succeed after promotion")
	}
	_ = ev.Invoke(NewParams())

	if count != 0 {
		t.Errorf("released subscription must not run, ran %d times", count)
	}
	if ev.Len() != 0 {
		t.Errorf("expected real event to be empty, got %d", ev.Len())
	}
}

func TestSubscription_ConcurrentReleaseAndPromotion(t *testing.T) {
	for i := 0; i < 50; i++ {
		r := NewRegistry()

		subs := make([]*Subscription, 20)
		for j := range subs {
			subs[j], _ = r.Subscribe("Race", Action(func(*Params) {}))
		}

		var wg sync.WaitGroup
		var ev *Event
		wg.Add(2)
		go func() {
			defer wg.Done()
			ev, _ = r.Register("Race")
		}()
		go func() {
			defer wg.Done()
			for _, s := range subs {
				s.Release()
			}
		}()
		wg.Wait()

		if n := ev.Len(); n != 0 {
			t.Fatalf("iteration %d: expected every subscription released, %d left", i, n)
		}
	}
}
