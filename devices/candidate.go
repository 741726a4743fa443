// Package devices picks the physical device the renderer runs on.
//
// Every physical device is first turned into a Candidate which holds the
// capability data the selection needs. Scoring and filtering only look at
// candidates, never at the Vulkan API, so the policy can be exercised without
// a GPU.
package devices

import (
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/queues"
	"vulkan-sandbox/swapchain"
)

// Candidate is a physical device together with the queried capability data.
// It is transient and is queried fresh on every selection pass.
type Candidate struct {
	Handle vk.PhysicalDevice
	Name   string
	Type   vk.PhysicalDeviceType

	// MaxImageDimension2D is the largest supported 2D image side.
	MaxImageDimension2D uint32

	GeometryShader    bool
	SamplerAnisotropy bool

	Families queues.FamilyIndices

	// Extensions is the set of supported device extension names, without
	// NUL terminators.
	Extensions map[string]struct{}

	Support swapchain.SupportDetails
}

// Requirements lists what a device must offer to pass the hard filter.
type Requirements struct {
	// Extensions are device extension names. A trailing NUL terminator, as
	// Vulkan create infos need, is ignored.
	Extensions []string
}
