package event

import (
	"errors"
	"reflect"
	"testing"
)

// recorder collects the names of callbacks in call order.
type recorder struct {
	calls []string
}

func (r *recorder) callback(name string) Callback {
	return func(*Params) error {
		r.calls = append(r.calls, name)
		return nil
	}
}

func TestEvent_InvokeInSubscriptionOrder(t *testing.T) {
	ev := NewEvent("Player.Attack")
	rec := &recorder{}

	ev.Subscribe(rec.callback("A"))
	ev.Subscribe(rec.callback("B"))
	ev.Subscribe(rec.callback("C"))

	if err := ev.Invoke(NewParams()); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if !reflect.DeepEqual(rec.calls, []string{"A", "B", "C"}) {
		t.Errorf("unexpected order: %v", rec.calls)
	}
}

func TestEvent_InvokePassesParams(t *testing.T) {
	ev := NewEvent("Player.Move")

	var got move
	ev.Subscribe(func(p *Params) error {
		var err error
		got, err = Read[move](p)
		return err
	})

	p := NewParams()
	_ = Add(p, move{DX: 2, DY: -1})

	if err := ev.Invoke(p); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != (move{DX: 2, DY: -1}) {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestEvent_DuplicateSubscriptionRunsTwice(t *testing.T) {
	ev := NewEvent("Sound.Play")

	count := 0
	cb := Action(func(*Params) { count++ })
	ev.Subscribe(cb)
	ev.Subscribe(cb)

	_ = ev.Invoke(NewParams())

	if count != 2 {
		t.Errorf("expected callback to run twice, got %d", count)
	}
}

func TestEvent_Unsubscribe(t *testing.T) {
	ev := NewEvent("Sound.Play")
	rec := &recorder{}

	ev.Subscribe(rec.callback("A"))
	b := ev.Subscribe(rec.callback("B"))
	ev.Subscribe(rec.callback("C"))

	if !ev.Unsubscribe(b) {
		t.Fatal("expected Unsubscribe to report removal")
	}
	if ev.Unsubscribe(b) {
		t.Error("second Unsubscribe should be a no-op")
	}
	if ev.Len() != 2 {
		t.Errorf("expected 2 subscriptions, got %d", ev.Len())
	}

	_ = ev.Invoke(NewParams())
	if !reflect.DeepEqual(rec.calls, []string{"A", "C"}) {
		t.Errorf("unexpected calls: %v", rec.calls)
	}
}

func TestEvent_UnsubscribeForeignSubscription(t *testing.T) {
	a := NewEvent("A")
	b := NewEvent("B")

	sub := a.Subscribe(Action(func(*Params) {}))

	if b.Unsubscribe(sub) {
		t.Error("event must not remove a subscription it does not hold")
	}
	if !sub.Active() {
		t.Error("subscription should still be active")
	}
	if b.Unsubscribe(nil) {
		t.Error("nil subscription should be a no-op")
	}
}

func TestEvent_NilCallback(t *testing.T) {
	ev := NewEvent("A")

	if sub := ev.Subscribe(nil); sub != nil {
		t.Error("expected nil handle for nil callback")
	}
	if ev.Len() != 0 {
		t.Error("nil callback must not be stored")
	}
}

func TestEvent_CallbackFailuresAreIsolated(t *testing.T) {
	ev := NewEvent("Combat.Hit")
	rec := &recorder{}
	boom := errors.New("boom")

	ev.Subscribe(rec.callback("A"))
	ev.Subscribe(func(*Params) error {
		rec.calls = append(rec.calls, "B")
		return boom
	})
	ev.Subscribe(func(*Params) error {
		rec.calls = append(rec.calls, "C")
		panic("C exploded")
	})
	ev.Subscribe(rec.callback("D"))

	err := ev.Invoke(NewParams())

	if !reflect.DeepEqual(rec.calls, []string{"A", "B", "C", "D"}) {
		t.Errorf("every callback should run, got %v", rec.calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error to contain callback error, got %v", err)
	}
	if !errors.Is(err, ErrCallbackPanic) {
		t.Errorf("expected joined error to contain panic, got %v", err)
	}

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatal("expected *PanicError in joined error")
	}
	if pe.Value != "C exploded" || pe.Event != "Combat.Hit" || pe.Stack == "" {
		t.Errorf("unexpected panic error: %+v", pe)
	}
}

func TestEvent_SubscribeDuringInvoke(t *testing.T) {
	ev := NewEvent("Spawn")
	rec := &recorder{}

	ev.Subscribe(func(*Params) error {
		rec.calls = append(rec.calls, "A")
		ev.Subscribe(rec.callback("late"))
		return nil
	})
	ev.Subscribe(rec.callback("B"))

	_ = ev.Invoke(NewParams())
	if !reflect.DeepEqual(rec.calls, []string{"A", "B"}) {
		t.Errorf("subscriptions added mid-invoke must wait for the next firing, got %v", rec.calls)
	}

	rec.calls = nil
	_ = ev.Invoke(NewParams())
	if !reflect.DeepEqual(rec.calls, []string{"A", "B", "late"}) {
		t.Errorf("unexpected second firing: %v", rec.calls)
	}
}

func TestEvent_UnsubscribeDuringInvoke(t *testing.T) {
	ev := NewEvent("Despawn")
	rec := &recorder{}

	var self, later *Subscription
	self = ev.Subscribe(func(*Params) error {
		rec.calls = append(rec.calls, "A")
		self.Release()
		later.Release()
		return nil
	})
	ev.Subscribe(rec.callback("B"))
	later = ev.Subscribe(rec.callback("C"))

	if err := ev.Invoke(NewParams()); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !reflect.DeepEqual(rec.calls, []string{"A", "B"}) {
		t.Errorf("released subscriptions must be skipped, got %v", rec.calls)
	}
	if ev.Len() != 1 {
		t.Errorf("expected 1 remaining subscription, got %d", ev.Len())
	}
}

func TestEvent_PendingCannotBeInvoked(t *testing.T) {
	ev := newPending("Foo")
	called := false
	ev.Subscribe(Action(func(*Params) { called = true }))

	err := ev.Invoke(NewParams())

	if !errors.Is(err, ErrInvokedPlaceholder) {
		t.Errorf("expected ErrInvokedPlaceholder, got %v", err)
	}
	if called {
		t.Error("pending event must not dispatch buffered callbacks")
	}
	if ev.IsReal() {
		t.Error("pending event must not be real")
	}
}

func TestEvent_PromotePreservesOrder(t *testing.T) {
	pending := newPending("Foo")
	target := NewEvent("Foo")
	rec := &recorder{}

	target.Subscribe(rec.callback("direct"))
	pending.Subscribe(rec.callback("A"))
	pending.Subscribe(rec.callback("B"))
	pending.Subscribe(rec.callback("C"))

	if moved := pending.promoteTo(target); moved != 3 {
		t.Errorf("expected 3 moved, got %d", moved)
	}
	if pending.Len() != 0 {
		t.Error("pending event should be empty after promotion")
	}

	_ = target.Invoke(NewParams())
	if !reflect.DeepEqual(rec.calls, []string{"direct", "A", "B", "C"}) {
		t.Errorf("unexpected order: %v", rec.calls)
	}
}

func TestEvent_PromotedPendingForwards(t *testing.T) {
	pending := newPending("Foo")
	target := NewEvent("Foo")
	pending.promoteTo(target)

	called := false
	sub := pending.Subscribe(Action(func(*Params) { called = true }))

	_ = target.Invoke(NewParams())
	if !called {
		t.Error("subscription on a promoted pending event should reach the real event")
	}
	if !target.Unsubscribe(sub) {
		t.Error("forwarded subscription should be owned by the real event")
	}
}
