// Package render draws published game snapshots, either to a terminal through
// tcell or to a PNG image through gg. Renderers only read snapshots and never
// touch the live world.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"bomb-arena/internal/game"
)

// Terminal colors
var (
	ColorBackground = tcell.NewRGBColor(12, 12, 28)
	ColorWall       = tcell.NewRGBColor(90, 90, 110)
	ColorBreakable  = tcell.NewRGBColor(150, 100, 50)
	ColorFire       = tcell.NewRGBColor(255, 140, 0)
	ColorFireCore   = tcell.NewRGBColor(255, 230, 120)
	ColorPlayer     = tcell.NewRGBColor(83, 255, 69)
	ColorBomb       = tcell.NewRGBColor(230, 230, 230)
	ColorPowerUp    = tcell.NewRGBColor(80, 180, 255)
	ColorHUD        = tcell.NewRGBColor(200, 200, 220)
	ColorBanner     = tcell.NewRGBColor(255, 62, 62)
)

var enemyColors = map[string]tcell.Color{
	"tier1": tcell.NewRGBColor(255, 107, 107),
	"tier2": tcell.NewRGBColor(255, 62, 200),
	"tier3": tcell.NewRGBColor(170, 60, 255),
}

// CellWidth is the number of terminal columns per grid cell
const CellWidth = 2

// Terminal draws snapshots onto a tcell screen. The board starts at the
// top-left corner; the HUD goes on the row below it.
type Terminal struct {
	screen tcell.Screen
	base   tcell.Style
}

// NewTerminal wraps an initialized screen
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen: screen,
		base:   tcell.StyleDefault.Background(ColorBackground).Foreground(ColorHUD),
	}
}

// Draw renders snap and shows the screen
func (t *Terminal) Draw(snap *game.GameSnapshot) {
	t.screen.Clear()
	t.screen.Fill(' ', t.base)

	t.drawCells(snap)
	t.drawExplosions(snap)
	t.drawEntities(snap)
	t.drawHUD(snap)
	t.drawBanner(snap)

	t.screen.Show()
}

func (t *Terminal) put(gx, gy int, glyph [CellWidth]rune, fg tcell.Color) {
	style := t.base.Foreground(fg)
	for i, r := range glyph {
		t.screen.SetContent(gx*CellWidth+i, gy, r, nil, style)
	}
}

func (t *Terminal) drawCells(snap *game.GameSnapshot) {
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			switch snap.Cell(x, y) {
			case game.CellWall:
				t.put(x, y, [CellWidth]rune{'█', '█'}, ColorWall)
			case game.CellBreakable:
				t.put(x, y, [CellWidth]rune{'▒', '▒'}, ColorBreakable)
			}
		}
	}
}

func (t *Terminal) drawExplosions(snap *game.GameSnapshot) {
	for _, ex := range snap.Explosions {
		for _, p := range ex.Parts {
			glyph, fg := [CellWidth]rune{'░', '░'}, ColorFire
			switch p.Segment {
			case game.SegmentCenter:
				glyph, fg = [CellWidth]rune{'█', '█'}, ColorFireCore
			case game.SegmentMiddle:
				glyph = [CellWidth]rune{'▓', '▓'}
			}
			t.put(p.X, p.Y, glyph, fg)
		}
	}
}

// entityGlyph picks a glyph and color for one entity, or false to skip it
func entityGlyph(v game.EntityView) ([CellWidth]rune, tcell.Color, bool) {
	switch v.Kind {
	case game.KindPlayer:
		if v.State == "dead" {
			return [CellWidth]rune{'x', 'x'}, ColorBanner, true
		}
		fg := ColorPlayer
		if v.State == "invulnerable" {
			fg = ColorHUD
		}
		return [CellWidth]rune{'(', ')'}, fg, true
	case game.KindEnemy:
		fg, ok := enemyColors[v.State]
		if !ok {
			return [CellWidth]rune{}, 0, false
		}
		return [CellWidth]rune{'>', '<'}, fg, true
	case game.KindBomb:
		if v.State != "armed" {
			return [CellWidth]rune{}, 0, false
		}
		return [CellWidth]rune{'o', '*'}, ColorBomb, true
	case game.KindPowerUp:
		r := '?'
		switch v.State {
		case "bomb":
			r = 'B'
		case "range":
			r = 'R'
		case "speed":
			r = 'S'
		}
		return [CellWidth]rune{'+', r}, ColorPowerUp, true
	}
	return [CellWidth]rune{}, 0, false
}

// drawEntities draws power-ups and bombs under actors
func (t *Terminal) drawEntities(snap *game.GameSnapshot) {
	layers := [][]game.EntityKind{
		{game.KindPowerUp, game.KindBomb},
		{game.KindEnemy, game.KindPlayer},
	}
	for _, kinds := range layers {
		for _, v := range snap.Entities {
			if v.Kind != kinds[0] && v.Kind != kinds[1] {
				continue
			}
			if glyph, fg, ok := entityGlyph(v); ok {
				t.put(v.GridX, v.GridY, glyph, fg)
			}
		}
	}
}

// HUDLine formats the status row
func HUDLine(snap *game.GameSnapshot) string {
	return fmt.Sprintf("L%d/%d %s  ♥%d  bombs:%d  range:%d  speed:x%.1f  enemies:%d",
		snap.Player.Level, snap.LevelCount, snap.LevelName,
		snap.Player.Lives, snap.Player.BombCapacity, snap.Player.BombRange,
		snap.Player.SpeedMultiplier, snap.EnemiesAlive)
}

func (t *Terminal) drawHUD(snap *game.GameSnapshot) {
	t.text(0, snap.Height+1, HUDLine(snap), t.base)
	t.text(0, snap.Height+2, "arrows/wasd move  space bomb  p pause  r restart  m mute  q quit", t.base.Dim(true))
}

// Banner returns the overlay text for non-playing states
func Banner(snap *game.GameSnapshot) string {
	switch snap.Status {
	case game.StatusPaused:
		return "PAUSED"
	case game.StatusTransition:
		return fmt.Sprintf("LEVEL %d CLEAR", snap.Player.Level)
	case game.StatusGameOver:
		return "GAME OVER  press r"
	case game.StatusVictory:
		return "VICTORY  press r"
	case game.StatusError:
		return "ERROR: " + snap.Error
	}
	return ""
}

func (t *Terminal) drawBanner(snap *game.GameSnapshot) {
	msg := Banner(snap)
	if msg == "" {
		return
	}
	x := (snap.Width*CellWidth - len([]rune(msg))) / 2
	if x < 0 {
		x = 0
	}
	t.text(x, snap.Height/2, msg, t.base.Foreground(ColorBanner).Bold(true))
}

func (t *Terminal) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
