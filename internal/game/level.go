package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
)

var (
	// ErrInvalidLevel is returned for malformed level data
	ErrInvalidLevel = errors.New("invalid level")
	// ErrNoSpawnCell is returned when enemies cannot be placed
	ErrNoSpawnCell = errors.New("no free enemy spawn cell")
)

// Layout markers
const (
	MarkerWall      = '#'
	MarkerBreakable = '*'
	MarkerStart     = 'P'
	MarkerEnemy     = 'E'
	MarkerEmpty     = '.'
)

// minSpawnDistance keeps random enemy spawns out of the start neighborhood
const minSpawnDistance = 3

// LevelData describes one level layout
type LevelData struct {
	Name       string   `json:"name"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Layout     []string `json:"layout"`
	EnemyCount int      `json:"enemyCount"`
	Tier       int      `json:"tier,omitempty"` // 0 derives the tier from the level number
	Theme      string   `json:"theme,omitempty"`
}

// DefaultLevels returns the built-in level set
func DefaultLevels() []LevelData {
	return []LevelData{
		{
			Name:   "Basic",
			Width:  15,
			Height: 13,
			Layout: []string{
				"###############",
				"#P....*....*..#",
				"#.#.#.#.#.#.#.#",
				"#.............#",
				"#.#.#.#.#.#.#.#",
				"#.............#",
				"#.#.#.#.#.#.#.#",
				"#.............#",
				"#.#.#.#.#.#.#.#",
				"#.............#",
				"#.#.#.#.#.#.#.#",
				"#...*.....*...#",
				"###############",
			},
			EnemyCount: 3,
			Theme:      "grass",
		},
		{
			Name:   "Crossroads",
			Width:  15,
			Height: 13,
			Layout: []string{
				"###############",
				"#P...*........#",
				"#.#.#.#.#.#.#.#",
				"#.............#",
				"#.#.#*#.#*#.#.#",
				"#.............#",
				"#.#.#.#.#.#.#.#",
				"#.............#",
				"#.#*#.#.#.#*#.#",
				"#.............#",
				"#.#.#.#.#.#.#.#",
				"#.......*....*#",
				"###############",
			},
			EnemyCount: 5,
			Theme:      "sand",
		},
		{
			Name:   "Frozen Maze",
			Width:  17,
			Height: 15,
			Layout: []string{
				"#################",
				"#P.............E#",
				"#.#.#.#.#.#.#.#.#",
				"#..............*#",
				"#.#.#.#.#.#.#.#.#",
				"#*....*....*....#",
				"#.#.#.#.#.#.#.#.#",
				"#..............*#",
				"#.#.#.#.#.#.#.#.#",
				"#*....*....*....#",
				"#.#.#.#.#.#.#.#.#",
				"#..............*#",
				"#.#.#.#.#.#.#.#.#",
				"#E.............E#",
				"#################",
			},
			EnemyCount: 7,
			Theme:      "ice",
		},
	}
}

// Validate checks dimensions, markers and the start cell
func (l LevelData) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w %q: dimensions %dx%d", ErrInvalidLevel, l.Name, l.Width, l.Height)
	}
	if len(l.Layout) != l.Height {
		return fmt.Errorf("%w %q: %d rows, want %d", ErrInvalidLevel, l.Name, len(l.Layout), l.Height)
	}
	if l.EnemyCount < 0 || l.Tier < 0 {
		return fmt.Errorf("%w %q: negative enemy count or tier", ErrInvalidLevel, l.Name)
	}

	starts, spawns := 0, 0
	for y, row := range l.Layout {
		if len(row) != l.Width {
			return fmt.Errorf("%w %q: row %d has width %d, want %d", ErrInvalidLevel, l.Name, y, len(row), l.Width)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case MarkerWall, MarkerBreakable, MarkerEmpty, ' ':
			case MarkerStart:
				starts++
			case MarkerEnemy:
				spawns++
			default:
				return fmt.Errorf("%w %q: unknown marker %q at (%d,%d)", ErrInvalidLevel, l.Name, row[x], x, y)
			}
		}
	}

	switch {
	case starts == 0:
		return fmt.Errorf("%w %q: missing player start", ErrInvalidLevel, l.Name)
	case starts > 1:
		return fmt.Errorf("%w %q: %d player starts", ErrInvalidLevel, l.Name, starts)
	case spawns == 0 && l.EnemyCount == 0:
		return fmt.Errorf("%w %q: no enemies", ErrInvalidLevel, l.Name)
	}
	return nil
}

// LoadLevels reads a JSON array of levels and validates each one
func LoadLevels(path string) ([]LevelData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read levels: %w", err)
	}

	var levels []LevelData
	if err := json.Unmarshal(data, &levels); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidLevel, path, err)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: %s contains no levels", ErrInvalidLevel, path)
	}
	for i, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
	}
	return levels, nil
}

// BuildWorld constructs the world for level number (1-based) from data,
// registers player on the start cell when non-nil, and spawns enemies.
// On error nothing is returned; a partial world never escapes.
func BuildWorld(data LevelData, number int, cfg WorldConfig, player *Player) (*World, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	cfg.Width, cfg.Height, cfg.Level = data.Width, data.Height, number
	if cfg.CellSize == 0 {
		cfg.CellSize = cfg.Rules.CellSize
	}
	if cfg.CellSize == 0 {
		cfg.CellSize = 1
	}

	w, err := NewWorld(cfg)
	if err != nil {
		return nil, fmt.Errorf("build level %d: %w", number, err)
	}

	var markers [][2]int
	for y, row := range data.Layout {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case MarkerWall:
				w.SetCellType(x, y, CellWall)
			case MarkerBreakable:
				w.AddBreakable(x, y)
			case MarkerStart:
				w.StartX, w.StartY = x, y
			case MarkerEnemy:
				markers = append(markers, [2]int{x, y})
			}
		}
	}

	// Spawn cells are chosen before the persistent player is touched, so a
	// failed build leaves it as it was.
	spots, err := enemySpawns(w, data, markers)
	if err != nil {
		return nil, fmt.Errorf("build level %d: %w", number, err)
	}

	if player != nil {
		player.Spawn(w)
	}

	tier := data.Tier
	if tier == 0 {
		tier = TierForLevel(w.Level)
	}
	for _, c := range spots {
		NewEnemy(w, c.x, c.y, tier)
	}

	w.emit(EventTypeLevelStarted, "level", LevelPayload{
		Name:    data.Name,
		Width:   data.Width,
		Height:  data.Height,
		Enemies: w.LiveEnemyCount(),
	})
	log.Printf("🎮 Level %d %q ready: %dx%d, %d enemies", number, data.Name, data.Width, data.Height, w.LiveEnemyCount())
	return w, nil
}

// enemySpawns returns every enemy marker, then random empty cells away from
// the start until EnemyCount is reached.
func enemySpawns(w *World, data LevelData, markers [][2]int) ([]cellKey, error) {
	spots := make([]cellKey, 0, max(data.EnemyCount, len(markers)))
	occupied := make(map[cellKey]struct{}, data.EnemyCount)
	for _, m := range markers {
		c := cellKey{m[0], m[1]}
		spots = append(spots, c)
		occupied[c] = struct{}{}
	}

	remaining := data.EnemyCount - len(markers)
	if remaining <= 0 {
		return spots, nil
	}

	var free []cellKey
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.CellType(x, y) != CellEmpty {
				continue
			}
			if max(abs(x-w.StartX), abs(y-w.StartY)) < minSpawnDistance {
				continue
			}
			if _, taken := occupied[cellKey{x, y}]; taken {
				continue
			}
			free = append(free, cellKey{x, y})
		}
	}

	if len(free) < remaining {
		return nil, fmt.Errorf("%w: need %d, found %d", ErrNoSpawnCell, remaining, len(free))
	}

	w.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	return append(spots, free[:remaining]...), nil
}
