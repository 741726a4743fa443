package swapchain

import (
	"cmp"

	vk "github.com/vulkan-go/vulkan"
)

// ChooseSurfaceFormat picks PreferredFormat when it is available. A surface
// which reports a single undefined format has no preference, so
// PreferredFormat is used as well. Otherwise the first listed format wins.
func ChooseSurfaceFormat(available []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(available) == 0 {
		return vk.SurfaceFormat{}, ErrNoSurfaceFormats
	}

	if len(available) == 1 && available[0].Format == vk.FormatUndefined {
		return PreferredFormat, nil
	}

	for _, format := range available {
		if format.Format == PreferredFormat.Format &&
			format.ColorSpace == PreferredFormat.ColorSpace {
			return format, nil
		}
	}

	return available[0], nil
}

// ChoosePresentMode prefers mailbox, then immediate. FIFO is always
// supported and is returned when neither is available.
func ChoosePresentMode(available []vk.PresentMode) vk.PresentMode {
	best := vk.PresentModeFifo

	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
		if mode == vk.PresentModeImmediate {
			best = mode
		}
	}

	return best
}

// ChooseExtent returns the surface's current extent unless the surface leaves
// it to the swap chain. In that case the framebuffer size is clamped into the
// allowed range.
func ChooseExtent(
	capabilities vk.SurfaceCapabilities,
	framebufferWidth int,
	framebufferHeight int,
) vk.Extent2D {
	if capabilities.CurrentExtent.Width != AnyExtent {
		return capabilities.CurrentExtent
	}

	return vk.Extent2D{
		Width: clamp(
			uint32(max(framebufferWidth, 0)),
			capabilities.MinImageExtent.Width,
			capabilities.MaxImageExtent.Width,
		),
		Height: clamp(
			uint32(max(framebufferHeight, 0)),
			capabilities.MinImageExtent.Height,
			capabilities.MaxImageExtent.Height,
		),
	}
}

// ImageCount requests one image above the minimum, so the driver never has to
// be waited on before another image can be acquired. A MaxImageCount of zero
// means there is no upper limit.
func ImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	return val
}
