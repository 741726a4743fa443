package queues

import (
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// Families reads the queue family table of device together with the present
// support of each family for surface. Failed support queries are logged and
// count as no support.
func Families(device vk.PhysicalDevice, surface vk.Surface, logger *slog.Logger) []Family {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	properties := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, properties)

	families := make([]Family, 0, queueFamilyCount)
	for i, family := range properties {
		family.Deref()

		var hasPresent vk.Bool32
		err := vk.Error(
			vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &hasPresent),
		)
		if err != nil {
			logger.Warn("querying surface support",
				slog.Int("family", i),
				slog.Any("error", err),
			)
		}

		families = append(families, Family{
			Flags:   family.QueueFlags,
			Present: err == nil && hasPresent.B(),
		})
	}

	return families
}

// Find returns a FamilyIndices populated with the Vulkan queue families needed
// by the program.
func Find(device vk.PhysicalDevice, surface vk.Surface, logger *slog.Logger) FamilyIndices {
	return Resolve(Families(device, surface, logger))
}
