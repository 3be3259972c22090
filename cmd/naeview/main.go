// Command naeview opens a window and runs a Lua scene script in it,
// reloading the script whenever the file changes.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Nazariglez/nae"
	"github.com/Nazariglez/nae/backend/ebiten"
	"github.com/Nazariglez/nae/script"
	"github.com/Nazariglez/nae/text"
)

func main() {
	var (
		width   = flag.Int("width", 800, "window width")
		height  = flag.Int("height", 600, "window height")
		fontArg = flag.String("font", "", "TrueType/OpenType font for nae.text (default Go Regular)")
		watch   = flag.Bool("watch", true, "reload the script when it changes")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Usage = func() {
		log.Printf("usage: naeview [flags] scene.lua")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	nae.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	font, err := loadFont(*fontArg)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	s := script.New(script.DefaultConfig())
	defer s.Close()
	s.SetFont(font)
	if err := s.LoadFile(flag.Arg(0)); err != nil {
		log.Fatalf("Failed to load script: %v", err)
	}
	if *watch {
		w, err := s.Watch()
		if err != nil {
			log.Fatalf("Failed to watch script: %v", err)
		}
		defer w.Stop()
	}

	cfg := ebiten.DefaultWindowConfig()
	cfg.Title = "naeview: " + flag.Arg(0)
	cfg.Width, cfg.Height = *width, *height
	cfg.Resizable = true
	win, err := ebiten.NewWindow(cfg)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	win.SetContext(ctx)

	var last string
	win.OnDraw = func(d *nae.Draw) {
		err := s.Draw(d)
		switch {
		case err == nil:
			last = ""
		case err.Error() != last:
			// Log each distinct failure once rather than every frame.
			last = err.Error()
			nae.Logger().Warn("script draw failed", "err", err)
		}
	}

	if err := win.Run(); err != nil {
		log.Fatalf("Window: %v", err)
	}
}

func loadFont(path string) (*text.Font, error) {
	if path == "" {
		return text.Default()
	}
	return text.LoadFont(path)
}
