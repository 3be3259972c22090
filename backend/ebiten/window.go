package ebiten

import (
	"context"
	"errors"
	"fmt"

	eb "github.com/hajimehoshi/ebiten/v2"

	"github.com/Nazariglez/nae"
)

// ErrTerminated is returned by Run when the window's context is done.
var ErrTerminated = errors.New("ebiten: window terminated")

// WindowConfig configures a Window.
type WindowConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	// Clear is the color each frame starts with; nil keeps the previous
	// frame.
	Clear *nae.Color
}

// DefaultWindowConfig returns an 800x600 resizable window cleared to
// black.
func DefaultWindowConfig() WindowConfig {
	black := nae.Black
	return WindowConfig{Title: "nae", Width: 800, Height: 600, Resizable: true, Clear: &black}
}

// Window runs a nae.Draw inside the Ebitengine game loop. Game returns the
// ebiten.Game that drives it.
type Window struct {
	config WindowConfig
	sink   *Sink
	draw   *nae.Draw
	ctx    context.Context

	// OnUpdate runs once per tick before drawing. A non-nil error stops
	// the game loop and is returned by Run.
	OnUpdate func() error
	// OnDraw records the frame. Begin and End are handled by the window.
	OnDraw func(d *nae.Draw)

	outW, outH int
}

// NewWindow creates a window and its sink. Extra draw options are applied
// after the size and device scale taken from the window.
func NewWindow(config WindowConfig, opts ...nae.DrawOption) (*Window, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("ebiten: window size %dx%d", config.Width, config.Height)
	}
	s := New()
	if err := s.Init(); err != nil {
		return nil, err
	}
	base := []nae.DrawOption{nae.WithSize(config.Width, config.Height)}
	return &Window{
		config: config,
		sink:   s,
		draw:   nae.NewDraw(s, append(base, opts...)...),
		ctx:    context.Background(),
	}, nil
}

// Draw returns the window's nae.Draw.
func (w *Window) Draw() *nae.Draw { return w.draw }

// Sink returns the window's sink.
func (w *Window) Sink() *Sink { return w.sink }

// SetContext stops the game loop once ctx is done.
func (w *Window) SetContext(ctx context.Context) { w.ctx = ctx }

// Update runs one tick.
func (w *Window) Update() error {
	select {
	case <-w.ctx.Done():
		return ErrTerminated
	default:
	}
	if w.OnUpdate != nil {
		return w.OnUpdate()
	}
	return nil
}

// DrawFrame records and submits one frame onto screen.
func (w *Window) DrawFrame(screen *eb.Image) {
	w.sink.SetScreen(screen)
	if err := w.draw.Begin(w.config.Clear); err != nil {
		nae.Logger().Warn("frame dropped", "err", err)
		return
	}
	if w.OnDraw != nil {
		if err := nae.Catch(func() { w.OnDraw(w.draw) }); err != nil {
			w.draw.Abort()
			nae.Logger().Warn("frame dropped", "err", err)
			return
		}
	}
	if err := w.draw.End(); err != nil {
		nae.Logger().Warn("frame dropped", "err", err)
	}
}

// Layout reports the screen size for an outside size. The logical size follows the outside
// size, and the draw target grows with the device scale.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != w.outW || outsideHeight != w.outH {
		w.outW, w.outH = outsideWidth, outsideHeight
		if w.config.Resizable {
			w.draw.SetSize(outsideWidth, outsideHeight)
		}
	}
	scale := eb.Monitor().DeviceScaleFactor()
	w.draw.SetDeviceScale(scale)
	lw, lh := w.draw.Size()
	return int(float64(lw) * scale), int(float64(lh) * scale)
}

// Game returns the ebiten.Game driving this window.
func (w *Window) Game() eb.Game { return game{w} }

// Run opens the window and blocks until it is closed. Closing the window
// is not an error.
func (w *Window) Run() error {
	eb.SetWindowSize(w.config.Width, w.config.Height)
	eb.SetWindowTitle(w.config.Title)
	if w.config.Resizable {
		eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
	}
	defer w.sink.Close()
	err := eb.RunGame(w.Game())
	if errors.Is(err, ErrTerminated) || errors.Is(err, eb.Termination) {
		return nil
	}
	return err
}

// game adapts Window to ebiten.Game; Window keeps Draw for the nae.Draw
// accessor.
type game struct{ w *Window }

func (g game) Update() error                { return g.w.Update() }
func (g game) Draw(screen *eb.Image)        { g.w.DrawFrame(screen) }
func (g game) Layout(ow, oh int) (int, int) { return g.w.Layout(ow, oh) }
