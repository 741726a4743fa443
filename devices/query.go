package devices

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/queues"
	"vulkan-sandbox/swapchain"
)

// Enumerate returns all physical devices of instance.
func Enumerate(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get the number of physical devices")
	}
	if deviceCount == 0 {
		return nil, ErrNoDevices
	}

	pDevices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, pDevices))
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate the physical devices")
	}

	return pDevices[:deviceCount], nil
}

// Query collects the capability data of device with regard to surface.
func Query(device vk.PhysicalDevice, surface vk.Surface, logger *slog.Logger) (Candidate, error) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	properties.Limits.Deref()

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()

	c := Candidate{
		Handle:              device,
		Name:                vk.ToString(properties.DeviceName[:]),
		Type:                properties.DeviceType,
		MaxImageDimension2D: properties.Limits.MaxImageDimension2D,
		GeometryShader:      features.GeometryShader.B(),
		SamplerAnisotropy:   features.SamplerAnisotropy.B(),
		Families:            queues.Find(device, surface, logger),
	}

	extensions, err := extensionNames(device)
	if err != nil {
		return c, errors.Wrapf(err, "device %s", c.Name)
	}
	c.Extensions = extensions

	// Without the swap chain extension the surface queries are meaningless.
	if _, ok := extensions[vk.KhrSwapchainExtensionName]; ok {
		support, err := swapchain.QuerySupport(device, surface)
		if err != nil {
			return c, errors.Wrapf(err, "device %s", c.Name)
		}
		c.Support = support
	}

	return c, nil
}

func extensionNames(device vk.PhysicalDevice) (map[string]struct{}, error) {
	var extensionsCount uint32
	res := vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount, nil)
	if err := vk.Error(res); err != nil {
		return nil, errors.Wrap(err, "enumerating device extension properties count")
	}

	availableExtensions := make([]vk.ExtensionProperties, extensionsCount)
	res = vk.EnumerateDeviceExtensionProperties(device, "", &extensionsCount,
		availableExtensions)
	if err := vk.Error(res); err != nil {
		return nil, errors.Wrap(err, "getting device extension properties")
	}

	names := make(map[string]struct{}, extensionsCount)
	for _, extension := range availableExtensions[:extensionsCount] {
		extension.Deref()
		names[vk.ToString(extension.ExtensionName[:])] = struct{}{}
	}

	return names, nil
}
