package game

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Garsondee/Tile-Stream/internal/stream"
	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

const hudLineHeight = 18

// loadFace loads Go Regular at the given size.
func loadFace(size float64) (text.Face, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return &text.GoTextFace{Source: src, Size: size}, nil
}

// hudState is everything the HUD shows, gathered once per frame.
type hudState struct {
	Tick     int
	Loaded   int
	Sprites  int
	Epoch    uint64
	Config   terrain.Config
	Borders  terrain.BorderState
	Camera   Camera
	Last     stream.TickReport
	Window   *stream.WindowReport
	Status   string
	ShowKeys bool
}

// hudLines renders the HUD text, one string per line.
func hudLines(s hudState) []string {
	chunk := terrain.FromWorld(s.Camera.X, s.Camera.Y, s.Config)
	lines := []string{
		fmt.Sprintf("tick %d  chunks %d  sprites %d  epoch %d", s.Tick, s.Loaded, s.Sprites, s.Epoch),
		fmt.Sprintf("seed %d  noise %s  borders %s", s.Config.Seed, s.Config.Noise, s.Borders),
		fmt.Sprintf("tile %gpx  chunk %d tiles (%gpx)", s.Config.TilePixelSize, s.Config.ChunkTileCount, s.Config.ChunkPixelSize()),
		fmt.Sprintf("camera (%.0f, %.0f) in chunk %v  zoom %.2fx", s.Camera.X, s.Camera.Y, chunk, s.Camera.Zoom),
	}
	if s.Last.Spawned > 0 || s.Last.Despawned > 0 {
		lines = append(lines, fmt.Sprintf("last tick: +%d -%d in %v",
			s.Last.Spawned, s.Last.Despawned, s.Last.GenDuration.Round(time.Microsecond)))
	}
	if s.Window != nil && s.Window.SampleCount > 0 {
		lines = append(lines, fmt.Sprintf("last %d ticks: +%d -%d  max batch %d  gen max %v",
			s.Window.SampleCount, s.Window.Spawned, s.Window.Despawned, s.Window.MaxBatch,
			s.Window.MaxGen.Round(time.Microsecond)))
	}
	if s.Status != "" {
		lines = append(lines, s.Status)
	}
	if s.ShowKeys {
		lines = append(lines,
			"WASD/arrows=pan  wheel or =/- = zoom  Home=recentre",
			"B=borders  R=reseed  N=noise  F5=reload  C=copy seed",
			"F1=panel  H=hide help",
		)
	}
	return lines
}

// drawHUD renders the HUD box in the bottom-left corner.
func drawHUD(screen *ebiten.Image, face text.Face, lines []string) {
	const padX, padY = 8, 6
	maxW := 0.0
	for _, l := range lines {
		w, _ := text.Measure(l, face, hudLineHeight)
		maxW = max(maxW, w)
	}
	boxW := float32(maxW + padX*2)
	boxH := float32(len(lines)*hudLineHeight + padY*2)
	bx := float32(6)
	by := float32(screen.Bounds().Dy()) - boxH - 6

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 70, G: 90, B: 130, A: 180}, false)

	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+padX, float64(by)+padY+float64(i*hudLineHeight))
		op.ColorScale.ScaleWithColor(color.RGBA{R: 220, G: 225, B: 235, A: 255})
		text.Draw(screen, l, face, op)
	}
}
