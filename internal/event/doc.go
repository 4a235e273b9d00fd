// Package event provides the typed event bus for gamebus.
//
// The bus decouples producers (input, camera, gameplay code) from the
// consumers that react to them. Producers and consumers only share an ID;
// neither needs to exist first.
//
// # Architecture
//
//	                    ┌──────────────────────────────────────────┐
//	                    │                Registry                  │
//	                    │  - ID → *Event (real or pending)         │
//	                    │  - registration / promotion protocol     │
//	                    └──────────────────────────────────────────┘
//	                                      │
//	          ┌───────────────────────────┼───────────────────────────┐
//	          ▼                           ▼                           ▼
//	┌─────────────────┐         ┌─────────────────┐         ┌─────────────────┐
//	│      Event      │         │     Params      │         │     Invoker     │
//	│  - ordered subs │         │  - one value    │         │  - producer     │
//	│  - Invoke       │         │    per Go type  │         │    helper       │
//	└─────────────────┘         └─────────────────┘         └─────────────────┘
//
// # Registration States
//
// Every ID is in one of three states:
//
//	unregistered  no entry
//	pending       a consumer subscribed before the producer registered
//	real          the producer registered; terminal
//
// Subscribing to an unregistered or pending ID is supported: the
// subscription is buffered on a pending event and Subscribe reports false.
// When the producer calls CreateEvent the buffered subscriptions move to the
// real event in the order they were made. Registering an ID that is already
// real fails with ErrDuplicateEventRegistration.
//
// # Payloads
//
// Params holds at most one value per Go type:
//
//	p := event.NewParams()
//	_ = event.Add(p, Move{DX: 1})
//	_ = event.Add(p, 3)           // int
//	mv, err := event.Read[Move](p) // strict: error when absent
//	n := event.Get[int](p)         // lenient: zero value when absent
//
// # Basic Usage
//
//	reg := event.NewRegistry(event.WithLogger(logger))
//
//	// Consumer, possibly before the producer exists.
//	sub, live := reg.Subscribe("Player.Jump", func(p *event.Params) error {
//	    h := event.Get[JumpHeight](p)
//	    ...
//	    return nil
//	})
//	defer sub.Release()
//
//	// Producer.
//	jump, err := event.NewInvoker(reg, "Player.Jump")
//	if err != nil {
//	    return err
//	}
//	err = jump.Invoke(JumpHeight(2.5))
//
// # Failure Isolation
//
// Callbacks run synchronously in subscription order. A callback that returns
// an error or panics does not stop the rest; Invoke returns the joined
// failures as *CallbackError and *PanicError values.
//
// # Thread Safety
//
// The Registry serializes its mutators under one mutex. Each Event guards its
// own list and snapshots it before dispatching, so callbacks may subscribe or
// unsubscribe during an Invoke. Params and Invoker are not safe for
// concurrent mutation.
package event
