// Package app ties the window, the assets and the renderer together and runs
// the main loop.
package app

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/assets"
	"vulkan-sandbox/render"
)

// Backend is what the main loop needs from a renderer.
type Backend interface {
	Bootstrap() error
	Teardown()
	DrawFrame() error
	WaitIdle() error
	NotifyResized()
}

// Events is the window event source driving the loop.
type Events interface {
	ShouldClose() bool
	PollEvents()
}

// App is the sandbox application.
type App struct {
	cfg    Config
	logger *slog.Logger
}

// New returns an App. Nothing is opened before Run.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run loads the assets, opens the window, renders until the window is closed
// and releases everything again. It must be called from the main thread.
func (a *App) Run(ctx context.Context) error {
	loader := assets.NewLoader(a.cfg.ShadersDir, a.cfg.ModelsDir, a.cfg.TexturesDir)
	loader.Logger = a.logger
	bundle, err := assets.LoadBundle(ctx, loader, a.cfg.assetNames())
	if err != nil {
		return err
	}

	window, err := openWindow(a.cfg)
	if err != nil {
		return errors.Wrap(err, "initWindow")
	}
	defer closeWindow(window)

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "failed to init Vulkan Go")
	}

	renderCfg := a.cfg.renderConfig()
	renderCfg.Logger = a.logger

	engine, err := render.New(glfwWindow{w: window}, bundle, renderCfg)
	if err != nil {
		return errors.Wrap(err, "creating render engine")
	}

	// The callback only flags the engine. The engine itself is owned here and
	// torn down before the window goes away.
	window.SetFramebufferSizeCallback(func(*glfw.Window, int, int) {
		engine.NotifyResized()
	})

	return a.run(glfwWindow{w: window}, engine)
}

func (a *App) run(events Events, backend Backend) error {
	if err := backend.Bootstrap(); err != nil {
		return errors.Wrap(err, "bootstrap")
	}
	defer backend.Teardown()

	a.logger.Info("main loop started")

	var frames uint64
	for !events.ShouldClose() {
		events.PollEvents()

		if err := backend.DrawFrame(); err != nil {
			return errors.Wrap(err, "error drawing a frame")
		}
		frames++
	}

	a.logger.Info("main loop finished", "frames", frames)

	return backend.WaitIdle()
}
