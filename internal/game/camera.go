package game

import (
	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game/events"
)

// ShakeTicks is how long a hit shakes the camera.
const ShakeTicks = 4

// Camera keeps the player in view and shakes on hits.
type Camera struct {
	target         Position
	viewW, viewH   int
	worldW, worldH int
	shake          int
	strict         bool
	subs           []*event.Subscription
}

// NewCamera creates a camera over a worldW by worldH arena.
func NewCamera(reg *event.Registry, worldW, worldH int, strict bool) *Camera {
	c := &Camera{
		viewW:  worldW,
		viewH:  worldH,
		worldW: worldW,
		worldH: worldH,
		strict: strict,
	}

	moved, _ := reg.Subscribe(events.PlayerMoved, c.onPlayerMoved)
	hit, _ := reg.Subscribe(events.CombatHit, event.Action(func(*event.Params) {
		c.shake = ShakeTicks
	}))
	tick, _ := reg.Subscribe(events.GameTick, event.Action(func(*event.Params) {
		if c.shake > 0 {
			c.shake--
		}
	}))
	c.subs = append(c.subs, moved, hit, tick)
	return c
}

// Resize sets the visible area.
func (c *Camera) Resize(w, h int) {
	c.viewW, c.viewH = w, h
}

// Shaking reports whether a shake is in progress.
func (c *Camera) Shaking() bool {
	return c.shake > 0
}

// Target returns the followed cell.
func (c *Camera) Target() Position {
	return c.target
}

// Origin returns the world cell drawn at the top-left of the view.
// The view is centred on the target and clamped to the arena; a shake
// nudges it one column on alternate ticks.
func (c *Camera) Origin() Position {
	o := Position{
		X: clamp(c.target.X-c.viewW/2, 0, max(c.worldW-c.viewW, 0)),
		Y: clamp(c.target.Y-c.viewH/2, 0, max(c.worldH-c.viewH, 0)),
	}
	if c.shake%2 == 1 {
		o.X--
	}
	return o
}

// Close stops listening.
func (c *Camera) Close() {
	for _, sub := range c.subs {
		sub.Release()
	}
}

func (c *Camera) onPlayerMoved(p *event.Params) error {
	pos, err := payload[Position](p, c.strict)
	if err != nil {
		return err
	}
	c.target = pos
	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
