package render

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/devices"
)

const maxSamplerAnisotropy = 16

func (e *Engine) pickPhysicalDevice() error {
	physicalDevices, err := devices.Enumerate(e.instance)
	if err != nil {
		return err
	}

	candidates := make([]devices.Candidate, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		candidate, err := devices.Query(device, e.surface, e.logger)
		if err != nil {
			return errors.Wrap(err, "querying physical device")
		}
		candidates = append(candidates, candidate)
	}

	req := devices.Requirements{
		Extensions: e.cfg.DeviceExtensions,
	}

	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("physical devices\n" + devices.Report(candidates, req))
	}

	selected, err := devices.Select(candidates, req)
	if err != nil {
		return err
	}

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(selected.Handle, &properties)
	properties.Deref()
	properties.Limits.Deref()

	e.physicalDevice = selected.Handle
	e.families = selected.Families
	e.maxAnisotropy = min(properties.Limits.MaxSamplerAnisotropy, maxSamplerAnisotropy)

	e.logger.Info("selected physical device",
		"name", selected.Name,
		"score", devices.Score(selected),
	)
	return nil
}

func (e *Engine) createLogicalDevice() error {
	if !e.families.IsComplete() {
		return errors.New("createLogicalDevice called for physical device which does " +
			"not have all the queues required by the program")
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{}

	for _, familyIndex := range e.families.Unique() {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	deviceFeatures := []vk.PhysicalDeviceFeatures{{
		SamplerAnisotropy: vk.True,
	}}

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount:   uint32(len(e.cfg.DeviceExtensions)),
		PpEnabledExtensionNames: e.cfg.DeviceExtensions,
	}

	if e.cfg.EnableValidation {
		createInfo.PpEnabledLayerNames = e.cfg.ValidationLayers
		createInfo.EnabledLayerCount = uint32(len(e.cfg.ValidationLayers))
	}

	var device vk.Device
	res := vk.CreateDevice(e.physicalDevice, &createInfo, nil, &device)
	if err := check(res, "create logical device"); err != nil {
		return err
	}
	e.device = device

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(e.device, e.families.Graphics.Get(), 0, &graphicsQueue)
	e.graphicsQueue = graphicsQueue

	var presentQueue vk.Queue
	vk.GetDeviceQueue(e.device, e.families.Present.Get(), 0, &presentQueue)
	e.presentQueue = presentQueue

	return nil
}
