package game

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game/events"
)

// Options configures a Game.
type Options struct {
	Width, Height int
	Start         Position
	Enemies       []Enemy

	// StrictParams makes systems fail on missing payload types.
	StrictParams bool
}

// DefaultEnemies returns the demo's enemy placement for a width by height
// arena.
func DefaultEnemies(width, height int) []Enemy {
	return []Enemy{
		{Name: "goblin", Pos: Position{X: width / 4, Y: height / 2}, HP: 2},
		{Name: "orc", Pos: Position{X: width * 3 / 4, Y: height / 3}, HP: 3},
		{Name: "slime", Pos: Position{X: width / 2, Y: height - 2}, HP: 1},
	}
}

// Game wires the demo systems to a registry.
type Game struct {
	Camera *Camera
	Audio  *Audio
	Combat *Combat
	Player *Player
	Input  *Input

	tick     *event.Invoker
	ticks    uint64
	quitting bool
	subs     []*event.Subscription
}

// New builds every system on reg. Consumers are created before producers.
func New(reg *event.Registry, opts Options) (*Game, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("game: invalid arena %dx%d", opts.Width, opts.Height)
	}

	g := &Game{}
	quit, _ := reg.Subscribe(events.GameQuit, event.Action(func(*event.Params) {
		g.quitting = true
	}))
	// Ticks are counted from Game.Tick, replayed firings included.
	tick, _ := reg.Subscribe(events.GameTick, event.Action(func(p *event.Params) {
		g.ticks = max(g.ticks, event.Get[Tick](p).N)
	}))
	g.subs = append(g.subs, quit, tick)
	g.Camera = NewCamera(reg, opts.Width, opts.Height, opts.StrictParams)

	var err error
	if g.Audio, err = NewAudio(reg); err != nil {
		return nil, err
	}
	if g.Combat, err = NewCombat(reg, opts.Enemies, opts.Start, opts.StrictParams); err != nil {
		return nil, err
	}
	if g.Player, err = NewPlayer(reg, opts.Start, opts.Width, opts.Height, opts.StrictParams); err != nil {
		return nil, err
	}
	g.Player.BlockWith(g.Combat.Occupied)
	if g.Input, err = NewInput(reg); err != nil {
		return nil, err
	}
	if g.tick, err = event.NewInvoker(reg, events.GameTick); err != nil {
		return nil, err
	}

	if err := g.Player.Announce(); err != nil {
		return nil, err
	}
	return g, nil
}

// HandleKey routes a key press through the input mapper.
func (g *Game) HandleKey(ev *tcell.EventKey) error {
	_, err := g.Input.HandleKey(ev)
	return err
}

// Step advances the simulation by one tick of length dt.
func (g *Game) Step(dt time.Duration) error {
	return g.tick.Invoke(Tick{N: g.ticks + 1, Dt: dt})
}

// Ticks returns the number of the last Game.Tick seen.
func (g *Game) Ticks() uint64 {
	return g.ticks
}

// Quitting reports whether Game.Quit has fired.
func (g *Game) Quitting() bool {
	return g.quitting
}

// Close releases every subscription the systems hold.
func (g *Game) Close() error {
	for _, sub := range g.subs {
		sub.Release()
	}
	g.Camera.Close()
	g.Audio.Close()
	g.Combat.Close()
	g.Player.Close()
	return nil
}
