// Package dispatch runs subscriber callbacks for the event package.
//
// Calls execute synchronously on the caller's goroutine. Each one is
// isolated: a panic is recovered into the Result and an error is captured,
// so a failing callback never stops the next one in the same invocation.
// A Runner can also flag calls that exceed a time budget, which matters
// when subscribers run inside a fixed-rate game tick.
//
//	r := dispatch.NewRunner(
//	    dispatch.WithBudget(2*time.Millisecond, func(label string, took time.Duration) {
//	        logger.Warn("slow subscriber", "event", label, "took", took)
//	    }),
//	)
//	res := r.Run("Player.Moved", func() error { return cb(p) })
//
// The package knows nothing about payloads; the event package closes over
// its Params when it builds each Func.
package dispatch
