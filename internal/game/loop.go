package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Run drives g on screen until ctx is done or Game.Quit fires. Key presses
// and ticks are handled on the calling goroutine, so every subscriber runs
// there. Subscriber failures are logged and the loop keeps going.
//
// The caller owns the screen: it must be initialised before Run and
// finalised afterwards, which also stops the input goroutine.
func Run(ctx context.Context, g *Game, screen tcell.Screen, interval time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "game.loop")

	input := pollInput(ctx, screen)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report := func(what string, err error) {
		if err != nil {
			logger.Warn("subscriber failures", "source", what, "error", err)
		}
	}

	g.Draw(screen)
	screen.Show()

	for !g.Quitting() {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-input:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				report("key", g.HandleKey(ev))
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			report("tick", g.Step(interval))
		}

		g.Draw(screen)
		screen.Show()
	}
	logger.Info("quit requested", "ticks", g.Ticks())
	return nil
}

// pollInput forwards screen events to a channel. PollEvent blocks, so the
// goroutine ends when the screen is finalised and PollEvent returns nil.
func pollInput(ctx context.Context, screen tcell.Screen) <-chan tcell.Event {
	events := make(chan tcell.Event, 64)
	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}
