package app

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// glfwWindow presents a GLFW window to the renderer.
type glfwWindow struct {
	w *glfw.Window
}

func (g glfwWindow) RequiredInstanceExtensions() []string {
	return g.w.GetRequiredInstanceExtensions()
}

func (g glfwWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfacePtr, err := g.w.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "creating GLFW window surface")
	}

	return vk.SurfaceFromPointer(surfacePtr), nil
}

func (g glfwWindow) FramebufferSize() (int, int) {
	return g.w.GetFramebufferSize()
}

func (g glfwWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (g glfwWindow) ShouldClose() bool {
	return g.w.ShouldClose()
}

func (g glfwWindow) PollEvents() {
	glfw.PollEvents()
}

func openWindow(cfg Config) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw.Init")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "creating window")
	}

	return window, nil
}

func closeWindow(window *glfw.Window) {
	window.Destroy()
	glfw.Terminate()
}
