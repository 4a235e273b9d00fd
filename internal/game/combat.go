package game

import (
	"errors"

	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game/events"
)

// Enemy is a stationary target.
type Enemy struct {
	Name string
	Pos  Position
	HP   int
}

// Combat resolves attacks against enemies next to the player.
type Combat struct {
	enemies []Enemy
	player  Position
	strict  bool

	hit      *event.Invoker
	defeated *event.Invoker
	subs     []*event.Subscription
}

// NewCombat places enemies and follows the player from start.
func NewCombat(reg *event.Registry, enemies []Enemy, start Position, strict bool) (*Combat, error) {
	c := &Combat{
		enemies: append([]Enemy(nil), enemies...),
		player:  start,
		strict:  strict,
	}

	var err error
	if c.hit, err = event.NewInvoker(reg, events.CombatHit); err != nil {
		return nil, err
	}
	if c.defeated, err = event.NewInvoker(reg, events.CombatDefeated); err != nil {
		return nil, err
	}

	moved, _ := reg.Subscribe(events.PlayerMoved, c.onPlayerMoved)
	attack, _ := reg.Subscribe(events.PlayerAttack, c.onAttack)
	c.subs = append(c.subs, moved, attack)
	return c, nil
}

// Enemies returns the surviving enemies.
func (c *Combat) Enemies() []Enemy {
	return append([]Enemy(nil), c.enemies...)
}

// Occupied reports whether an enemy stands on pos.
func (c *Combat) Occupied(pos Position) bool {
	for _, e := range c.enemies {
		if e.Pos == pos {
			return true
		}
	}
	return false
}

// Close stops listening.
func (c *Combat) Close() {
	for _, sub := range c.subs {
		sub.Release()
	}
}

func (c *Combat) onPlayerMoved(p *event.Params) error {
	pos, err := payload[Position](p, c.strict)
	if err != nil {
		return err
	}
	c.player = pos
	return nil
}

func (c *Combat) onAttack(p *event.Params) error {
	atk, err := payload[Attack](p, c.strict)
	if err != nil {
		return err
	}

	var errs []error
	survivors := c.enemies[:0]
	for _, e := range c.enemies {
		if !c.player.Adjacent(e.Pos) || atk.Damage <= 0 {
			survivors = append(survivors, e)
			continue
		}

		e.HP -= atk.Damage
		hit := Hit{Target: e.Name, Damage: atk.Damage, Remaining: max(e.HP, 0)}
		if err := c.hit.Invoke(hit); err != nil {
			errs = append(errs, err)
		}
		if e.HP > 0 {
			survivors = append(survivors, e)
			continue
		}
		if err := c.defeated.Invoke(hit); err != nil {
			errs = append(errs, err)
		}
	}
	c.enemies = survivors
	return errors.Join(errs...)
}
