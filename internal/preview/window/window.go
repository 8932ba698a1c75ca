// Package window runs the live preview in an ebiten window.
package window

import (
	"errors"
	"image/color"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/anthozoa/anthozoa/internal/field"
	"github.com/anthozoa/anthozoa/internal/preview"
)

var bindings = map[ebiten.Key]preview.Action{
	ebiten.KeySpace: preview.ToggleFrozen,
	ebiten.KeyC:     preview.ToggleDynamicColor,
	ebiten.KeyUp:    preview.SpacingUp,
	ebiten.KeyDown:  preview.SpacingDown,
	ebiten.KeyLeft:  preview.HueLeft,
	ebiten.KeyRight: preview.HueRight,
	ebiten.KeyF:     preview.ToggleFullscreen,
}

// Game draws one frame of the field per display refresh.
type Game struct {
	ctrl     *preview.Controller
	renderer *field.Renderer
	logger   *log.Logger
	start    time.Time

	ShowStatus bool
}

// New returns a game drawing with renderer from the controller's settings.
func New(ctrl *preview.Controller, renderer *field.Renderer, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default().WithPrefix("preview")
	}
	return &Game{
		ctrl:       ctrl,
		renderer:   renderer,
		logger:     logger,
		start:      time.Now(),
		ShowStatus: true,
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	for key, action := range bindings {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		g.ctrl.Do(action)
		g.logger.Debug("key", "action", action, "status", g.ctrl.Status())
		if action == preview.ToggleFullscreen {
			ebiten.SetFullscreen(g.ctrl.Fullscreen())
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	g.renderer.RenderFrame(
		screenCanvas{dst: screen},
		g.ctrl.Settings.Snapshot(),
		float64(b.Dx()), float64(b.Dy()),
		time.Since(g.start),
	)
	if g.ShowStatus {
		ebitenutil.DebugPrint(screen, g.ctrl.Status())
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ctrl.Size(outsideWidth, outsideHeight)
}

// Run opens a window of w x h and blocks until it is closed.
func Run(g *Game, title string, w, h int) error {
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(g.ctrl.Fullscreen())

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// screenCanvas draws field strokes onto an ebiten image.
type screenCanvas struct {
	dst *ebiten.Image
}

func (c screenCanvas) Background(col color.Color) {
	c.dst.Fill(col)
}

func (c screenCanvas) Line(x1, y1, x2, y2, weight float64, col color.Color) {
	if weight <= 0 {
		return
	}
	vector.StrokeLine(c.dst, float32(x1), float32(y1), float32(x2), float32(y2), float32(weight), col, true)
}
