package render

import vk "github.com/vulkan-go/vulkan"

// Window is the part of the window system the engine needs.
type Window interface {
	// RequiredInstanceExtensions returns the NUL terminated instance
	// extensions needed for presenting to the window.
	RequiredInstanceExtensions() []string

	// CreateSurface binds the window to instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// FramebufferSize returns the size of the window in pixels.
	FramebufferSize() (width, height int)

	// WaitEvents blocks until the window system has events.
	WaitEvents()
}
