package app

import (
	"log/slog"
	"time"

	"vulkan-sandbox/assets"
	"vulkan-sandbox/render"
)

// Config holds everything the application can be told from the outside.
type Config struct {
	Title  string
	Width  int
	Height int

	// Debug enables the validation layers and debug logging of the renderer.
	Debug bool

	FramesInFlight int

	// Throttle is the shortest time between two drawn frames. Zero leaves
	// pacing to the present mode.
	Throttle time.Duration

	ShadersDir  string
	ModelsDir   string
	TexturesDir string

	VertexShader   string
	FragmentShader string
	Model          string
	Texture        string

	Logger *slog.Logger
}

// DefaultConfig returns the compile time defaults.
func DefaultConfig() Config {
	return Config{
		Title:          "Vulkan App",
		Width:          1280,
		Height:         1024,
		FramesInFlight: 2,

		ShadersDir:  assets.ShadersDir,
		ModelsDir:   assets.ModelsDir,
		TexturesDir: assets.TexturesDir,

		VertexShader:   "vert.spv",
		FragmentShader: "frag.spv",
		Model:          "chalet.obj",
		Texture:        "chalet.jpg",
	}
}

func (c Config) assetNames() assets.Names {
	return assets.Names{
		VertexShader:   c.VertexShader,
		FragmentShader: c.FragmentShader,
		Model:          c.Model,
		Texture:        c.Texture,
	}
}

func (c Config) renderConfig() render.Config {
	cfg := render.DefaultConfig()
	cfg.AppName = c.Title
	cfg.EnableValidation = c.Debug
	cfg.FramesInFlight = c.FramesInFlight
	cfg.Throttle = c.Throttle
	cfg.Logger = c.Logger
	return cfg
}
