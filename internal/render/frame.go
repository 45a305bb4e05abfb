package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"bomb-arena/internal/game"
)

// Image palette
var (
	rgbBackground = color.RGBA{12, 12, 28, 255}
	rgbFloor      = color.RGBA{30, 30, 45, 255}
	rgbWall       = color.RGBA{90, 90, 110, 255}
	rgbBreakable  = color.RGBA{150, 100, 50, 255}
	rgbFire       = color.RGBA{255, 140, 0, 255}
	rgbFireCore   = color.RGBA{255, 230, 120, 255}
	rgbPlayer     = color.RGBA{83, 255, 69, 255}
	rgbBomb       = color.RGBA{20, 20, 20, 255}
	rgbPowerUp    = color.RGBA{80, 180, 255, 255}
	rgbBannerBand = color.RGBA{0, 0, 0, 255}
	rgbBanner     = color.RGBA{255, 62, 62, 255}
	rgbEnemy      = map[string]color.RGBA{
		"tier1": {255, 107, 107, 255},
		"tier2": {255, 62, 200, 255},
		"tier3": {170, 60, 255, 255},
	}
)

// Image renders top-down frames of the board
type Image struct {
	CellPx int // Pixel size of one grid cell
}

// NewImage creates an image renderer; cellPx <= 0 uses 32
func NewImage(cellPx int) *Image {
	if cellPx <= 0 {
		cellPx = 32
	}
	return &Image{CellPx: cellPx}
}

// Size returns the frame dimensions for snap
func (r *Image) Size(snap *game.GameSnapshot) (int, int) {
	return snap.Width * r.CellPx, snap.Height * r.CellPx
}

// Render draws snap into a new image
func (r *Image) Render(snap *game.GameSnapshot) image.Image {
	w, h := r.Size(snap)
	if w == 0 || h == 0 || snap.CellSize <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	dc := gg.NewContext(w, h)

	dc.SetColor(rgbBackground)
	dc.Clear()

	r.drawCells(dc, snap)
	r.drawExplosions(dc, snap)
	r.drawEntities(dc, snap)
	r.drawEffects(dc, snap)
	r.drawBanner(dc, snap)

	return dc.Image()
}

// EncodePNG renders snap as PNG into out
func (r *Image) EncodePNG(out io.Writer, snap *game.GameSnapshot) error {
	img := r.Render(snap)
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(out)
}

func (r *Image) cellRect(dc *gg.Context, x, y int, inset float64) {
	s := float64(r.CellPx)
	dc.DrawRectangle(float64(x)*s+inset, float64(y)*s+inset, s-2*inset, s-2*inset)
}

func (r *Image) center(x, y int) (float64, float64) {
	s := float64(r.CellPx)
	return (float64(x) + 0.5) * s, (float64(y) + 0.5) * s
}

func (r *Image) drawCells(dc *gg.Context, snap *game.GameSnapshot) {
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			switch snap.Cell(x, y) {
			case game.CellWall:
				dc.SetColor(rgbWall)
				r.cellRect(dc, x, y, 0)
			case game.CellBreakable:
				dc.SetColor(rgbBreakable)
				r.cellRect(dc, x, y, 1)
			default:
				dc.SetColor(rgbFloor)
				r.cellRect(dc, x, y, 0)
			}
			dc.Fill()
		}
	}
}

func (r *Image) drawExplosions(dc *gg.Context, snap *game.GameSnapshot) {
	for _, ex := range snap.Explosions {
		for _, p := range ex.Parts {
			c := rgbFire
			if p.Segment == game.SegmentCenter {
				c = rgbFireCore
			}
			c.A = uint8(128 + 127*ex.Remaining)
			dc.SetColor(c)
			r.cellRect(dc, p.X, p.Y, 2)
			dc.Fill()
		}
	}
}

func (r *Image) drawEntities(dc *gg.Context, snap *game.GameSnapshot) {
	radius := float64(r.CellPx) * 0.38

	for _, v := range snap.Entities {
		// Actors are drawn at their interpolated position
		cx, cy := r.center(v.GridX, v.GridY)
		if v.Kind == game.KindPlayer || v.Kind == game.KindEnemy {
			cx, cy = r.worldToPixel(snap, v.X, v.Z)
		}

		switch v.Kind {
		case game.KindPowerUp:
			dc.SetColor(rgbPowerUp)
			dc.DrawRegularPolygon(4, cx, cy, radius, 0)
			dc.Fill()
		case game.KindBomb:
			if v.State != "armed" {
				continue
			}
			dc.SetColor(rgbBomb)
			dc.DrawCircle(cx, cy, radius)
			dc.Fill()
			dc.SetColor(color.White)
			dc.SetLineWidth(2)
			dc.DrawCircle(cx, cy, radius)
			dc.Stroke()
		case game.KindEnemy:
			c, ok := rgbEnemy[v.State]
			if !ok {
				continue
			}
			dc.SetColor(c)
			dc.DrawCircle(cx, cy, radius)
			dc.Fill()
		case game.KindPlayer:
			if v.State == "dead" {
				continue
			}
			if v.State == "invulnerable" {
				dc.SetColor(color.RGBA{255, 255, 255, 77})
				dc.DrawCircle(cx, cy, radius+4)
				dc.Fill()
			}
			dc.SetColor(rgbPlayer)
			dc.DrawCircle(cx, cy, radius)
			dc.Fill()
		}
	}
}

func (r *Image) drawEffects(dc *gg.Context, snap *game.GameSnapshot) {
	scale := float64(r.CellPx) / snap.CellSize
	for _, ef := range snap.Effects {
		cx, cy := r.worldToPixel(snap, ef.X, ef.Z)
		c := rgbFire
		if ef.Kind == "hit" {
			c = color.RGBA{255, 255, 255, 255}
		}
		c.A = uint8(ef.Alpha * 255)
		dc.SetColor(c)
		for _, p := range ef.Particles {
			dc.DrawCircle(cx+p.X*scale, cy+p.Z*scale, 1.5)
			dc.Fill()
		}
	}
}

// worldToPixel inverts World.GridToWorld and centers the result in the cell
func (r *Image) worldToPixel(snap *game.GameSnapshot, x, z float64) (float64, float64) {
	s := float64(r.CellPx) / snap.CellSize
	px := (x + float64(snap.Width)*snap.CellSize/2) * s
	py := (z + float64(snap.Height)*snap.CellSize/2) * s
	half := float64(r.CellPx) / 2
	return px + half, py + half
}

// drawBanner overlays the status banner on a band across the middle row
func (r *Image) drawBanner(dc *gg.Context, snap *game.GameSnapshot) {
	msg := Banner(snap)
	if msg == "" {
		return
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	band := float64(basicfont.Face7x13.Height) + 8

	dc.SetColor(rgbBannerBand)
	dc.DrawRectangle(0, (h-band)/2, w, band)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(rgbBanner)
	dc.DrawStringAnchored(msg, w/2, h/2, 0.5, 0.35)
}
