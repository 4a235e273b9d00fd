package game

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game/events"
)

// AttackDamage is the damage of one attack.
const AttackDamage = 1

// Input maps terminal keys to gameplay events.
type Input struct {
	move   *event.Invoker
	attack *event.Invoker
	quit   *event.Invoker
}

// NewInput registers the events the input mapper produces.
func NewInput(reg *event.Registry) (*Input, error) {
	move, err := event.NewInvoker(reg, events.PlayerMove)
	if err != nil {
		return nil, err
	}
	attack, err := event.NewInvoker(reg, events.PlayerAttack)
	if err != nil {
		return nil, err
	}
	quit, err := event.NewInvoker(reg, events.GameQuit)
	if err != nil {
		return nil, err
	}
	return &Input{move: move, attack: attack, quit: quit}, nil
}

// HandleKey fires the event bound to ev. It reports whether the key was
// bound; errors are the subscribers' joined failures.
func (in *Input) HandleKey(ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyUp:
		return true, in.move.Invoke(Direction{DY: -1})
	case tcell.KeyDown:
		return true, in.move.Invoke(Direction{DY: 1})
	case tcell.KeyLeft:
		return true, in.move.Invoke(Direction{DX: -1})
	case tcell.KeyRight:
		return true, in.move.Invoke(Direction{DX: 1})
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, in.quit.Invoke()
	case tcell.KeyRune:
	default:
		return false, nil
	}

	switch ev.Rune() {
	case 'k', 'w':
		return true, in.move.Invoke(Direction{DY: -1})
	case 'j', 's':
		return true, in.move.Invoke(Direction{DY: 1})
	case 'h', 'a':
		return true, in.move.Invoke(Direction{DX: -1})
	case 'l', 'd':
		return true, in.move.Invoke(Direction{DX: 1})
	case ' ', 'f':
		return true, in.attack.Invoke(Attack{Damage: AttackDamage})
	case 'q':
		return true, in.quit.Invoke()
	}
	return false, nil
}
