// Command naedemo renders a demo scene, or a Lua scene script, to a PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"math"
	"os"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/Nazariglez/nae"
	"github.com/Nazariglez/nae/backend"
	_ "github.com/Nazariglez/nae/backend/software"
	_ "github.com/Nazariglez/nae/backend/wgpu"
	"github.com/Nazariglez/nae/recording"
	"github.com/Nazariglez/nae/script"
	"github.com/Nazariglez/nae/text"
)

type pngEncoder interface {
	EncodePNG(w io.Writer) error
}

func main() {
	var (
		width   = flag.Int("width", 800, "image width")
		height  = flag.Int("height", 600, "image height")
		output  = flag.String("output", "demo.png", "output file")
		name    = flag.String("backend", backend.BackendSoftware, "backend: software or wgpu")
		luaPath = flag.String("script", "", "Lua scene script to render instead of the demo")
		frames  = flag.Int("frames", 1, "frames to render; the last one is saved")
		record  = flag.Bool("record", false, "print a summary of the recorded frames")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		nae.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	b := backend.Get(*name)
	if b == nil {
		log.Fatalf("Unknown backend %q (available: %v)", *name, backend.Available())
	}
	if err := b.Init(); err != nil {
		log.Fatalf("Failed to init %s: %v", *name, err)
	}
	defer b.Close()

	var sink nae.Sink = b
	var rec *recording.Recorder
	if *record {
		rec = recording.NewRecorder()
		sink = recording.Tee(b, rec)
	}
	d := nae.NewDraw(sink, nae.WithSize(*width, *height))

	scene, err := newScene(d, *luaPath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	for i := 0; i < max(*frames, 1); i++ {
		if err := d.Begin(&nae.Color{R: 0.05, G: 0.05, B: 0.08, A: 1}); err != nil {
			log.Fatalf("Begin: %v", err)
		}
		if err := scene(d); err != nil {
			d.Abort()
			log.Fatalf("Frame %d: %v", i, err)
		}
		if err := d.End(); err != nil {
			log.Fatalf("End: %v", err)
		}
	}

	enc, ok := b.(pngEncoder)
	if !ok {
		log.Fatalf("Backend %s cannot encode images", *name)
	}
	if err := savePNG(enc, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if rec != nil {
		fmt.Println(rec.FinishRecording())
	}

	st := d.Stats()
	log.Printf("Saved %s (%dx%d, %s, %d batches)\n", *output, *width, *height, *name, st.Batches)
}

func savePNG(enc pngEncoder, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return enc.EncodePNG(f)
}

// newScene returns the per-frame draw function: the Lua script when path
// is set, the built-in demo otherwise.
func newScene(d *nae.Draw, path string) (func(*nae.Draw) error, error) {
	font, err := text.Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		s := script.New(script.DefaultConfig())
		s.SetFont(font)
		if err := s.LoadFile(path); err != nil {
			return nil, err
		}
		return s.Draw, nil
	}

	checker := d.Textures().Add(checkerboard(16, 8))
	return func(d *nae.Draw) error {
		w, h := d.Size()
		drawBackground(d, w, h)
		drawShapes(d)
		drawTransforms(d)
		drawPaths(d)
		d.SetColor(nae.White)
		d.Pattern(checker, 560, 320, 180, 120, 0, 0, 1, 1)
		d.Text(font, "nae: immediate-mode 2D", 40, float64(h)-60, 28)
		return nil
	}, nil
}

func checkerboard(cells, size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, cells*size/4, cells*size/4))
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := nae.Hex("#2b2d42")
			if (x/size+y/size)%2 == 0 {
				c = nae.Hex("#edf2f4")
			}
			img.SetNRGBA(x, y, c.NRGBA())
		}
	}
	return img
}

func drawBackground(d *nae.Draw, w, h int) {
	steps := 100
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps)
		d.SetColor(nae.RGB(0.1+t*0.4, 0.2+t*0.3, 0.4+t*0.2))
		y := float64(h) * t
		d.Rect(0, y, float64(w), float64(h)/float64(steps)+1)
	}
}

func drawShapes(d *nae.Draw) {
	d.SetColor(nae.RGBA(1, 0.3, 0.3, 0.8))
	d.Circle(150, 150, 60)
	d.SetColor(nae.RGBA(0.3, 1, 0.3, 0.8))
	d.Circle(200, 150, 60)
	d.SetColor(nae.RGBA(0.3, 0.3, 1, 0.8))
	d.Circle(175, 200, 60)

	d.SetColor(nae.RGB(1, 0.8, 0))
	d.RoundedRect(350, 100, 120, 80, 15)
	d.SetColor(nae.White)
	d.StrokeRect(350, 100, 120, 80, 4)
}

func drawTransforms(d *nae.Draw) {
	for i := 0; i < 8; i++ {
		d.PushTranslation(600, 150)
		d.PushRotation(float64(i) * math.Pi / 4)
		d.SetColor(nae.HSL(float64(i)*45, 0.8, 0.6))
		d.Rect(-30, -30, 60, 60)
		d.Pop()
		d.Pop()
	}
}

func drawPaths(d *nae.Draw) {
	d.PushTranslation(150, 400)
	defer d.Pop()

	d.SetColor(nae.RGB(1, 0.5, 0))
	d.BeginPath(0, 0).
		CubicBezierTo(50, -50, 100, 50, 150, 0).
		CubicBezierTo(200, -30, 250, 30, 300, 0).
		End(false).
		Stroke(6)

	points := 5
	outerR, innerR := 60.0, 30.0
	star := make([]nae.Point, 0, points*2)
	for i := 0; i < points*2; i++ {
		angle := float64(i) * math.Pi / float64(points)
		r := outerR
		if i%2 == 1 {
			r = innerR
		}
		star = append(star, nae.Pt(400+r*math.Cos(angle-math.Pi/2), r*math.Sin(angle-math.Pi/2)))
	}
	d.SetColor(nae.RGB(1, 1, 0))
	d.Polygon(star)
}
