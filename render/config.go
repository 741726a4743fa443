package render

import (
	"log/slog"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// DebugMessage is a report from the validation layers.
type DebugMessage struct {
	Flags   vk.DebugReportFlags
	Layer   string
	Code    int32
	Message string
}

// Config is used for creating an Engine.
type Config struct {
	// AppName is reported to the driver in the application info.
	AppName string

	// EnableValidation turns on ValidationLayers and the debug report callback.
	// Bootstrap fails with ErrValidationUnavailable when a layer is missing.
	EnableValidation bool

	// ValidationLayers are NUL terminated layer names.
	ValidationLayers []string

	// DebugHook receives every validation message. When nil the messages are
	// written to Logger.
	DebugHook func(DebugMessage)

	// DeviceExtensions are NUL terminated extension names the physical device
	// must support.
	DeviceExtensions []string

	// FramesInFlight is the size of the frame in flight ring.
	FramesInFlight int

	// ClearColor is the RGBA color the color attachment is cleared with.
	ClearColor [4]float32

	// Throttle, when positive, drops frames drawn faster than once per
	// Throttle.
	Throttle time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used unless the caller overrides
// something.
func DefaultConfig() Config {
	return Config{
		AppName: "Vulkan Sandbox",
		ValidationLayers: []string{
			"VK_LAYER_KHRONOS_validation\x00",
		},
		DeviceExtensions: []string{
			vk.KhrSwapchainExtensionName + "\x00",
		},
		FramesInFlight: 2,
		ClearColor:     [4]float32{0.7, 0.76, 0.8, 0.95},
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
