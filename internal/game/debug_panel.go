package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

const sliderDebounce = 150 * time.Millisecond

// debouncer fires once a burst of changes has been quiet for delay.
type debouncer struct {
	delay time.Duration
	dirty bool
	last  time.Time
}

func (d *debouncer) mark(now time.Time) {
	d.dirty = true
	d.last = now
}

// ready reports, once per burst, that the burst has settled.
func (d *debouncer) ready(now time.Time) bool {
	if !d.dirty || now.Sub(d.last) < d.delay {
		return false
	}
	d.dirty = false
	return true
}

// DebugPanel holds the map sliders. Slider moves are debounced and then
// handed to OnChange as a candidate tile size and chunk tile count.
type DebugPanel struct {
	ui       *ebitenui.UI
	visible  bool
	fontFace text.Face

	TileSize  int
	ChunkSize int
	OnChange  func(tileSize, chunkSize int)

	tileSlider  *widget.Slider
	chunkSlider *widget.Slider
	tileLabel   *widget.Text
	chunkLabel  *widget.Text
	infoLabel   *widget.Text

	changes debouncer
}

// NewDebugPanel builds the panel showing cfg.
func NewDebugPanel(face text.Face, cfg terrain.Config, onChange func(tileSize, chunkSize int)) *DebugPanel {
	d := &DebugPanel{
		visible:  true,
		fontFace: face,
		OnChange: onChange,
		changes:  debouncer{delay: sliderDebounce},
	}
	d.TileSize, d.ChunkSize = sliderValues(cfg)
	d.ui = d.buildUI()
	return d
}

// sliderValues maps a config onto the integer slider ranges.
func sliderValues(cfg terrain.Config) (tile, chunk int) {
	tile = min(max(int(cfg.TilePixelSize+0.5), terrain.MinTilePixelSize), terrain.MaxTilePixelSize)
	chunk = min(max(cfg.ChunkTileCount, terrain.MinChunkTileCount), terrain.MaxChunkTileCount)
	return tile, chunk
}

func (d *DebugPanel) buildUI() *ebitenui.UI {
	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(10)),
			widget.RowLayoutOpts.Spacing(8),
		)),
		widget.ContainerOpts.BackgroundImage(d.panelBackground()),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
				Padding:            widget.NewInsetsSimple(10),
			}),
			widget.WidgetOpts.MinSize(300, 0),
		),
	)

	panel.AddChild(d.label("MAP SETTINGS", color.RGBA{255, 220, 100, 255}))
	var tileRow, chunkRow *widget.Container
	tileRow, d.tileSlider, d.tileLabel = d.intSlider("Tile size", &d.TileSize,
		terrain.MinTilePixelSize, terrain.MaxTilePixelSize)
	chunkRow, d.chunkSlider, d.chunkLabel = d.intSlider("Chunk tiles", &d.ChunkSize,
		terrain.MinChunkTileCount, terrain.MaxChunkTileCount)
	panel.AddChild(tileRow)
	panel.AddChild(chunkRow)

	d.infoLabel = d.label("", color.RGBA{180, 180, 255, 255})
	panel.AddChild(d.infoLabel)
	panel.AddChild(d.label("Changes reload the map", color.RGBA{128, 128, 128, 255}))

	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}

func (d *DebugPanel) panelBackground() *image.NineSlice {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.RGBA{24, 28, 38, 230})
	return image.NewNineSliceSimple(img, 0, 0)
}

func (d *DebugPanel) label(s string, clr color.Color) *widget.Text {
	return widget.NewText(
		widget.TextOpts.Text(s, d.fontFace, clr),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true}),
		),
	)
}

func (d *DebugPanel) intSlider(name string, value *int, lo, hi int) (*widget.Container, *widget.Slider, *widget.Text) {
	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(10),
		)),
	)
	row.AddChild(widget.NewText(
		widget.TextOpts.Text(name, d.fontFace, color.RGBA{200, 200, 200, 255}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.MinSize(90, 0)),
	))

	valueLabel := widget.NewText(
		widget.TextOpts.Text(fmt.Sprintf("%d", *value), d.fontFace, color.RGBA{255, 255, 255, 255}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.MinSize(40, 0)),
	)

	slider := widget.NewSlider(
		widget.SliderOpts.Direction(widget.DirectionHorizontal),
		widget.SliderOpts.MinMax(lo, hi),
		widget.SliderOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(120, 24),
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
			}),
		),
		widget.SliderOpts.Images(d.trackImages(), d.handleImages()),
		widget.SliderOpts.PageSizeFunc(func() int { return 1 }),
		widget.SliderOpts.ChangedHandler(func(args *widget.SliderChangedEventArgs) {
			if *value == args.Current {
				return
			}
			*value = args.Current
			valueLabel.Label = fmt.Sprintf("%d", *value)
			d.changes.mark(time.Now())
		}),
	)
	slider.Current = *value

	row.AddChild(slider)
	row.AddChild(valueLabel)
	return row, slider, valueLabel
}

func (d *DebugPanel) trackImages() *widget.SliderTrackImage {
	idle := ebiten.NewImage(32, 8)
	idle.Fill(color.RGBA{80, 80, 100, 255})
	hover := ebiten.NewImage(32, 8)
	hover.Fill(color.RGBA{100, 100, 120, 255})
	return &widget.SliderTrackImage{
		Idle:  image.NewNineSliceSimple(idle, 4, 4),
		Hover: image.NewNineSliceSimple(hover, 4, 4),
	}
}

func (d *DebugPanel) handleImages() *widget.ButtonImage {
	idle := ebiten.NewImage(20, 20)
	idle.Fill(color.RGBA{150, 150, 180, 255})
	hover := ebiten.NewImage(20, 20)
	hover.Fill(color.RGBA{180, 180, 220, 255})
	pressed := ebiten.NewImage(20, 20)
	pressed.Fill(color.RGBA{200, 200, 255, 255})
	return &widget.ButtonImage{
		Idle:    image.NewNineSliceSimple(idle, 4, 4),
		Hover:   image.NewNineSliceSimple(hover, 4, 4),
		Pressed: image.NewNineSliceSimple(pressed, 4, 4),
	}
}

// Sync moves the sliders to cfg without firing OnChange.
func (d *DebugPanel) Sync(cfg terrain.Config) {
	d.TileSize, d.ChunkSize = sliderValues(cfg)
	d.tileSlider.Current = d.TileSize
	d.chunkSlider.Current = d.ChunkSize
	d.tileLabel.Label = fmt.Sprintf("%d", d.TileSize)
	d.chunkLabel.Label = fmt.Sprintf("%d", d.ChunkSize)
	d.changes.dirty = false
}

// SetInfo replaces the status line under the sliders.
func (d *DebugPanel) SetInfo(s string) { d.infoLabel.Label = s }

// Toggle shows or hides the panel.
func (d *DebugPanel) Toggle() { d.visible = !d.visible }

// IsVisible reports whether the panel is shown.
func (d *DebugPanel) IsVisible() bool { return d.visible }

// Update runs the widgets and fires OnChange once slider moves settle.
func (d *DebugPanel) Update() {
	if d.visible {
		d.ui.Update()
	}
	if d.changes.ready(time.Now()) && d.OnChange != nil {
		d.OnChange(d.TileSize, d.ChunkSize)
	}
}

// Draw draws the panel if visible.
func (d *DebugPanel) Draw(screen *ebiten.Image) {
	if d.visible {
		d.ui.Draw(screen)
	}
}
