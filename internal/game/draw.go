package game

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

var (
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleEnemy  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// Draw renders the arena through the camera. The bottom row is a status line.
func (g *Game) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	if w < 3 || h < 4 {
		return
	}

	// Border takes one cell on each side, the status line one row.
	g.Camera.Resize(w-2, h-3)
	origin := g.Camera.Origin()
	toScreen := func(p Position) (int, int, bool) {
		x, y := p.X-origin.X+1, p.Y-origin.Y+1
		return x, y, x >= 1 && y >= 1 && x < w-1 && y < h-2
	}

	for x := 0; x < w; x++ {
		s.SetContent(x, 0, '─', nil, styleWall)
		s.SetContent(x, h-2, '─', nil, styleWall)
	}
	for y := 1; y < h-2; y++ {
		s.SetContent(0, y, '│', nil, styleWall)
		s.SetContent(w-1, y, '│', nil, styleWall)
	}

	for _, e := range g.Combat.Enemies() {
		if x, y, ok := toScreen(e.Pos); ok {
			s.SetContent(x, y, enemyRune(e), nil, styleEnemy)
		}
	}
	if x, y, ok := toScreen(g.Player.Position()); ok {
		s.SetContent(x, y, '@', nil, stylePlayer)
	}

	drawText(s, 0, h-1, w, g.status(), styleStatus)
}

func (g *Game) status() string {
	var cues []string
	for _, c := range g.Audio.History() {
		cues = append(cues, c.Name)
	}
	p := g.Player.Position()
	return fmt.Sprintf(" tick %d  pos %d,%d  enemies %d  sound [%s]  q quits",
		g.ticks, p.X, p.Y, len(g.Combat.Enemies()), strings.Join(cues, " "))
}

func enemyRune(e Enemy) rune {
	for _, r := range e.Name {
		return r
	}
	return 'E'
}

func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+width {
			return
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < x+width; col++ {
		s.SetContent(col, y, ' ', nil, style)
	}
}
