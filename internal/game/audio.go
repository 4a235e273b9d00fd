package game

import (
	"github.com/dshills/gamebus/internal/event"
	"github.com/dshills/gamebus/internal/game/events"
)

// HistorySize is the number of recent cues Audio keeps.
const HistorySize = 8

// Cue names.
const (
	CueHit    = "hit"
	CueDefeat = "defeat"
	CueBump   = "bump"
)

// Audio turns gameplay events into named sound cues. Mixing and playback
// belong to whoever subscribes to Sound.Cue.
type Audio struct {
	cue     *event.Invoker
	history []SoundCue
	subs    []*event.Subscription
}

// NewAudio registers Sound.Cue and listens for the events that trigger cues.
func NewAudio(reg *event.Registry) (*Audio, error) {
	cue, err := event.NewInvoker(reg, events.SoundCue)
	if err != nil {
		return nil, err
	}
	a := &Audio{cue: cue}

	for id, name := range map[event.ID]string{
		events.CombatHit:      CueHit,
		events.CombatDefeated: CueDefeat,
		events.PlayerBlocked:  CueBump,
	} {
		sub, _ := reg.Subscribe(id, a.play(name))
		a.subs = append(a.subs, sub)
	}
	return a, nil
}

// History returns recent cues, oldest first.
func (a *Audio) History() []SoundCue {
	return append([]SoundCue(nil), a.history...)
}

// Close stops listening.
func (a *Audio) Close() {
	for _, sub := range a.subs {
		sub.Release()
	}
}

func (a *Audio) play(name string) event.Callback {
	return func(*event.Params) error {
		cue := SoundCue{Name: name}
		a.history = append(a.history, cue)
		if len(a.history) > HistorySize {
			a.history = a.history[len(a.history)-HistorySize:]
		}
		return a.cue.Invoke(cue)
	}
}
