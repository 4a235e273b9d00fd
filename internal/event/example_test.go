package event_test

import (
	"fmt"

	"github.com/dshills/gamebus/internal/event"
)

type Damage int

// Example_subscribeBeforeCreate shows a consumer subscribing before the
// producer has registered the event.
func Example_subscribeBeforeCreate() {
	reg := event.NewRegistry()

	_, live := reg.Subscribe("Player.Hit", event.Action(func(p *event.Params) {
		fmt.Println("hit for", event.Get[Damage](p))
	}))
	fmt.Println("live:", live)

	hit, err := event.NewInvoker(reg, "Player.Hit")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("state:", reg.State("Player.Hit"))

	_ = hit.Invoke(Damage(12))

	// Output:
	// live: false
	// state: real
	// hit for 12
}

// Example_params demonstrates the strict and lenient read policies.
func Example_params() {
	p := event.NewParams()
	_ = event.Add(p, 5)

	if err := event.Add(p, 7); err != nil {
		fmt.Println(err)
	}
	fmt.Println(event.Get[int](p))

	_, err := event.Read[string](p)
	fmt.Println(err)
	fmt.Printf("%q\n", event.Get[string](p))

	// Output:
	// params add int: duplicate parameter type
	// 5
	// params read string: parameter type not found (present: [int])
	// ""
}

// Example_handles shows releasing a subscription through its handle.
func Example_handles() {
	reg := event.NewRegistry()
	ev := reg.MustRegister("Door.Open")

	sub, _ := reg.Subscribe("Door.Open", event.Action(func(*event.Params) {
		fmt.Println("creak")
	}))

	_ = ev.Invoke(event.NewParams())
	sub.Release()
	_ = ev.Invoke(event.NewParams())

	fmt.Println("subscribers:", ev.Len())

	// Output:
	// creak
	// subscribers: 0
}
