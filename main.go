package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"vulkan-sandbox/app"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg := app.DefaultConfig()

	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable Vulkan validation layers and debug logging")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Initial window width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Initial window height")
	flag.IntVar(&cfg.FramesInFlight, "frames", cfg.FramesInFlight, "Number of frames in flight")
	flag.DurationVar(&cfg.Throttle, "throttle", cfg.Throttle, "Minimum time between frames, 0 disables")
	flag.StringVar(&cfg.ShadersDir, "shaders-dir", cfg.ShadersDir, "Directory with compiled SPIR-V shaders")
	flag.StringVar(&cfg.ModelsDir, "models-dir", cfg.ModelsDir, "Directory with OBJ models")
	flag.StringVar(&cfg.TexturesDir, "textures-dir", cfg.TexturesDir, "Directory with textures")
	flag.StringVar(&cfg.VertexShader, "vert", cfg.VertexShader, "Vertex shader file name")
	flag.StringVar(&cfg.FragmentShader, "frag", cfg.FragmentShader, "Fragment shader file name")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "Model file name")
	flag.StringVar(&cfg.Texture, "texture", cfg.Texture, "Texture file name")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := app.New(cfg).Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}
