// Package swapchain holds the policy used to build a swap chain for a
// particular physical device and surface: which surface format, which present
// mode, how big the images are and how many of them to request.
package swapchain

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrNoSurfaceFormats is returned when a surface reports no formats at all.
var ErrNoSurfaceFormats = errors.New("surface reports no formats")

// AnyExtent is the value of SurfaceCapabilities.CurrentExtent.Width which
// means the surface size is determined by the extent of the swap chain.
const AnyExtent = math.MaxUint32

// PreferredFormat is the surface format used whenever the device supports it.
var PreferredFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Unorm,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// SupportDetails describes a present surface. The type is suitable for
// passing around many details of the service between functions.
type SupportDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate returns true if a swap chain can be created at all.
func (d SupportDetails) Adequate() bool {
	return len(d.Formats) > 0 && len(d.PresentModes) > 0
}

// QuerySupport reads the surface capabilities, formats and present modes
// device supports for surface.
func QuerySupport(device vk.PhysicalDevice, surface vk.Surface) (SupportDetails, error) {
	details := SupportDetails{}

	var capabilities vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &capabilities)
	if err := vk.Error(res); err != nil {
		return details, errors.Wrap(err, "querying surface capabilities")
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	details.Capabilities = capabilities

	var formatCount uint32
	res = vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil)
	if err := vk.Error(res); err != nil {
		return details, errors.Wrap(err, "querying surface formats count")
	}

	if formatCount != 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		res = vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, formats)
		if err := vk.Error(res); err != nil {
			return details, errors.Wrap(err, "querying surface formats")
		}
		for _, format := range formats[:formatCount] {
			format.Deref()
			details.Formats = append(details.Formats, format)
		}
	}

	var presentModeCount uint32
	res = vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentModeCount, nil)
	if err := vk.Error(res); err != nil {
		return details, errors.Wrap(err, "querying present modes count")
	}

	if presentModeCount != 0 {
		presentModes := make([]vk.PresentMode, presentModeCount)
		res = vk.GetPhysicalDeviceSurfacePresentModes(
			device, surface, &presentModeCount, presentModes,
		)
		if err := vk.Error(res); err != nil {
			return details, errors.Wrap(err, "querying present modes")
		}
		details.PresentModes = presentModes[:presentModeCount]
	}

	return details, nil
}
