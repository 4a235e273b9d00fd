package game

import (
	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game/events"
)

// Player owns the player's position. It answers Player.Move with
// Player.Moved or Player.Blocked.
type Player struct {
	pos           Position
	width, height int
	strict        bool
	obstacle      func(Position) bool

	moved   *event.Invoker
	blocked *event.Invoker
	sub     *event.Subscription
}

// NewPlayer places the player at start inside a width by height arena.
func NewPlayer(reg *event.Registry, start Position, width, height int, strict bool) (*Player, error) {
	p := &Player{pos: start, width: width, height: height, strict: strict}

	var err error
	if p.moved, err = event.NewInvoker(reg, events.PlayerMoved); err != nil {
		return nil, err
	}
	if p.blocked, err = event.NewInvoker(reg, events.PlayerBlocked); err != nil {
		return nil, err
	}
	p.sub, _ = reg.Subscribe(events.PlayerMove, p.onMove)
	return p, nil
}

// Position returns the current cell.
func (p *Player) Position() Position {
	return p.pos
}

// BlockWith makes moves onto cells where occupied reports true fire
// Player.Blocked instead of Player.Moved.
func (p *Player) BlockWith(occupied func(Position) bool) {
	p.obstacle = occupied
}

// Announce fires Player.Moved for the current cell so late followers can
// sync up.
func (p *Player) Announce() error {
	return p.moved.Invoke(p.pos)
}

// Close stops listening for moves.
func (p *Player) Close() {
	p.sub.Release()
}

func (p *Player) onMove(params *event.Params) error {
	d, err := payload[Direction](params, p.strict)
	if err != nil {
		return err
	}

	next := p.pos.Add(d)
	outside := next.X < 0 || next.Y < 0 || next.X >= p.width || next.Y >= p.height
	if outside || (p.obstacle != nil && p.obstacle(next)) {
		return p.blocked.Invoke(p.pos)
	}
	p.pos = next
	return p.moved.Invoke(p.pos)
}
