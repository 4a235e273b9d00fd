// Package game is a small terminal arena whose systems talk to each other
// only through the event registry.
//
// Systems do not call each other; the only direct link is the collision
// query the game hands the player from combat. The input mapper fires
// Player.Move without knowing who listens; the player system answers with
// Player.Moved, which the camera and combat systems follow; combat reports
// hits that the camera shakes on and the audio system turns into cues.
// Systems are built consumers first, so most subscriptions are made before
// the events they name exist.
package game

import (
	"time"

	"github.com/dshills/gamebus/internal/event"
)

// Direction is the Player.Move payload.
type Direction struct {
	DX, DY int
}

// Position is a cell in the arena.
type Position struct {
	X, Y int
}

// Add returns p moved by d.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Adjacent reports whether q is one of the eight cells around p.
func (p Position) Adjacent(q Position) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return p != q && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// Attack is the Player.Attack payload.
type Attack struct {
	Damage int
}

// Hit is the Combat.Hit and Combat.Defeated payload.
type Hit struct {
	Target    string
	Damage    int
	Remaining int
}

// SoundCue is the Sound.Cue payload.
type SoundCue struct {
	Name string
}

// Tick is the Game.Tick payload.
type Tick struct {
	N  uint64
	Dt time.Duration
}

// payload reads a T from p. Strict mode reports a missing T as an error;
// otherwise the zero value is used.
func payload[T any](p *event.Params, strict bool) (T, error) {
	if strict {
		return event.Read[T](p)
	}
	return event.Get[T](p), nil
}
