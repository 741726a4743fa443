package app

import "vulkan-sandbox/render"

// RunLoop exposes the main loop to the external tests.
func (a *App) RunLoop(events Events, backend Backend) error {
	return a.run(events, backend)
}

func (c Config) RenderConfig() render.Config {
	return c.renderConfig()
}
