package render

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"bomb-arena/internal/game"
)

// testSnapshot is a 5x3 board:
//
//	#####
//	#P*E#
//	#####
func testSnapshot() *game.GameSnapshot {
	W, E, B := game.CellWall, game.CellEmpty, game.CellBomb
	return &game.GameSnapshot{
		Status:     game.StatusPlaying,
		Level:      1,
		LevelName:  "Basic",
		LevelCount: 3,
		Width:      5,
		Height:     3,
		CellSize:   1,
		Cells: []game.CellType{
			W, W, W, W, W,
			W, E, B, E, W,
			W, W, W, W, W,
		},
		Entities: []game.EntityView{
			{ID: 1, Kind: game.KindPlayer, GridX: 1, GridY: 1, X: -1.5, Z: -0.5, State: "alive"},
			{ID: 2, Kind: game.KindBomb, GridX: 2, GridY: 1, State: "armed"},
			{ID: 3, Kind: game.KindEnemy, GridX: 3, GridY: 1, X: 0.5, Z: -0.5, State: "tier2"},
		},
		Player:       game.PlayerStats{Level: 1, Lives: 3, BombCapacity: 1, BombRange: 2, SpeedMultiplier: 1},
		EnemiesAlive: 1,
	}
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	screen.SetSize(40, 10)
	t.Cleanup(screen.Fini)
	return screen
}

// TestTerminalDrawsBoard tests cell and entity glyphs
func TestTerminalDrawsBoard(t *testing.T) {
	screen := newScreen(t)
	NewTerminal(screen).Draw(testSnapshot())

	tests := []struct {
		name string
		x, y int
		want rune
		fg   tcell.Color
	}{
		{"wall", 0, 0, '█', ColorWall},
		{"player", 2, 1, '(', ColorPlayer},
		{"bomb", 4, 1, 'o', ColorBomb},
		{"enemy", 6, 1, '>', enemyColors["tier2"]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mainc, _, style, _ := screen.GetContent(tt.x, tt.y)
			if mainc != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, mainc)
			}
			fg, _, _ := style.Decompose()
			if fg != tt.fg {
				t.Errorf("Expected foreground %v, got %v", tt.fg, fg)
			}
		})
	}
}

// TestTerminalExplosionOverBomb tests that fire is drawn under actors but over cells
func TestTerminalExplosionOverBomb(t *testing.T) {
	screen := newScreen(t)
	snap := testSnapshot()
	snap.Entities = snap.Entities[:1]
	snap.Explosions = []game.ExplosionSnapshot{{
		ID:        9,
		Remaining: 1,
		Parts: []game.ExplosionPart{
			{X: 2, Y: 1, Segment: game.SegmentCenter},
			{X: 1, Y: 1, Segment: game.SegmentEnd, Dir: game.DirLeft},
		},
	}}
	NewTerminal(screen).Draw(snap)

	if mainc, _, _, _ := screen.GetContent(4, 1); mainc != '█' {
		t.Errorf("Expected explosion center, got %q", mainc)
	}
	if mainc, _, _, _ := screen.GetContent(2, 1); mainc != '(' {
		t.Errorf("Player should be drawn over fire, got %q", mainc)
	}
}

// TestTerminalHUD tests the status row
func TestTerminalHUD(t *testing.T) {
	screen := newScreen(t)
	NewTerminal(screen).Draw(testSnapshot())

	var sb strings.Builder
	for x := 0; x < 12; x++ {
		mainc, _, _, _ := screen.GetContent(x, 4)
		sb.WriteRune(mainc)
	}
	if got := sb.String(); got != "L1/3 Basic  " {
		t.Errorf("Unexpected HUD prefix %q", got)
	}
}

// TestBanner tests overlay text per status
func TestBanner(t *testing.T) {
	tests := []struct {
		status game.SessionStatus
		want   string
	}{
		{game.StatusPlaying, ""},
		{game.StatusPaused, "PAUSED"},
		{game.StatusTransition, "LEVEL 1 CLEAR"},
		{game.StatusGameOver, "GAME OVER  press r"},
		{game.StatusVictory, "VICTORY  press r"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			snap := testSnapshot()
			snap.Status = tt.status
			if got := Banner(snap); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestImagePNG tests the encoded frame size and colors
func TestImagePNG(t *testing.T) {
	r := NewImage(16)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf, testSnapshot()); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 80 || b.Dy() != 48 {
		t.Fatalf("Expected 80x48, got %dx%d", b.Dx(), b.Dy())
	}

	got := color.RGBAModel.Convert(img.At(8, 8)).(color.RGBA)
	if got != rgbWall {
		t.Errorf("Expected wall color at (8,8), got %v", got)
	}
	got = color.RGBAModel.Convert(img.At(24, 24)).(color.RGBA)
	if got != rgbPlayer {
		t.Errorf("Expected player color at cell center, got %v", got)
	}
	got = color.RGBAModel.Convert(img.At(56, 24)).(color.RGBA)
	if got != rgbEnemy["tier2"] {
		t.Errorf("Expected enemy color at cell center, got %v", got)
	}
}

// TestImageBanner tests that paused frames carry the banner band
func TestImageBanner(t *testing.T) {
	snap := testSnapshot()
	snap.Status = game.StatusPaused
	img := NewImage(16).Render(snap)

	got := color.RGBAModel.Convert(img.At(2, 24)).(color.RGBA)
	if got != rgbBannerBand {
		t.Errorf("Expected banner band at (2,24), got %v", got)
	}
	got = color.RGBAModel.Convert(img.At(8, 8)).(color.RGBA)
	if got != rgbWall {
		t.Errorf("Expected wall untouched at (8,8), got %v", got)
	}
}

// TestImageEmptySnapshot tests that an unpublished snapshot still renders
func TestImageEmptySnapshot(t *testing.T) {
	img := NewImage(0).Render(&game.GameSnapshot{})
	if img.Bounds().Dx() != 1 {
		t.Errorf("Expected placeholder image, got %v", img.Bounds())
	}
}
