package devices_test

import (
	vk "github.com/vulkan-go/vulkan"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"vulkan-sandbox/devices"
	"vulkan-sandbox/optional"
	"vulkan-sandbox/queues"
	"vulkan-sandbox/swapchain"
)

var requirements = devices.Requirements{
	Extensions: []string{vk.KhrSwapchainExtensionName + "\x00"},
}

func candidate(name string, t vk.PhysicalDeviceType, maxDim uint32) devices.Candidate {
	return devices.Candidate{
		Name:                name,
		Type:                t,
		MaxImageDimension2D: maxDim,
		GeometryShader:      true,
		SamplerAnisotropy:   true,
		Families: queues.FamilyIndices{
			Graphics: optional.Of[uint32](0),
			Present:  optional.Of[uint32](0),
		},
		Extensions: map[string]struct{}{
			vk.KhrSwapchainExtensionName: {},
		},
		Support: swapchain.SupportDetails{
			Formats:      []vk.SurfaceFormat{swapchain.PreferredFormat},
			PresentModes: []vk.PresentMode{vk.PresentModeFifo},
		},
	}
}

var _ = Describe("Score", func() {
	table.DescribeTable("values",
		func(c devices.Candidate, expected uint32) {
			Expect(devices.Score(c)).To(Equal(expected))
		},
		table.Entry("discrete",
			candidate("d", vk.PhysicalDeviceTypeDiscreteGpu, 8192), uint32(9192)),
		table.Entry("integrated",
			candidate("i", vk.PhysicalDeviceTypeIntegratedGpu, 16384), uint32(16384)),
		table.Entry("cpu", candidate("c", vk.PhysicalDeviceTypeCpu, 4096), uint32(4096)),
	)

	It("is zero without geometry shaders", func() {
		c := candidate("d", vk.PhysicalDeviceTypeDiscreteGpu, 16384)
		c.GeometryShader = false
		Expect(devices.Score(c)).To(BeZero())
	})
})

var _ = Describe("Suitable", func() {
	It("accepts a complete candidate", func() {
		c := candidate("d", vk.PhysicalDeviceTypeDiscreteGpu, 4096)
		Expect(devices.Suitable(c, requirements)).To(BeTrue())
	})

	table.DescribeTable("rejections",
		func(mutate func(*devices.Candidate)) {
			c := candidate("d", vk.PhysicalDeviceTypeDiscreteGpu, 4096)
			mutate(&c)
			Expect(devices.Suitable(c, requirements)).To(BeFalse())
		},
		table.Entry("no present family", func(c *devices.Candidate) {
			c.Families.Present.Reset()
		}),
		table.Entry("missing extension", func(c *devices.Candidate) {
			c.Extensions = map[string]struct{}{}
		}),
		table.Entry("no present modes", func(c *devices.Candidate) {
			c.Support.PresentModes = nil
		}),
		table.Entry("no surface formats", func(c *devices.Candidate) {
			c.Support.Formats = nil
		}),
		table.Entry("no anisotropy", func(c *devices.Candidate) {
			c.SamplerAnisotropy = false
		}),
	)
})

var _ = Describe("Select", func() {
	It("fails without devices", func() {
		_, err := devices.Select(nil, requirements)
		Expect(err).To(MatchError(devices.ErrNoDevices))
	})

	table.DescribeTable("weighs the device type against the texture limit",
		func(integratedDim, discreteDim uint32, expected string) {
			integrated := candidate("integrated", vk.PhysicalDeviceTypeIntegratedGpu, integratedDim)
			discrete := candidate("discrete", vk.PhysicalDeviceTypeDiscreteGpu, discreteDim)

			chosen, err := devices.Select(
				[]devices.Candidate{integrated, discrete}, requirements,
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(chosen.Name).To(Equal(expected))
		},
		table.Entry("discrete with the larger limit", uint32(4096), uint32(8192), "discrete"),
		table.Entry("discrete within the type bonus", uint32(4096), uint32(3500), "discrete"),
		table.Entry("integrated far ahead on the limit", uint32(8192), uint32(4096), "integrated"),
	)

	It("keeps the first of equally scored devices", func() {
		first := candidate("first", vk.PhysicalDeviceTypeIntegratedGpu, 4096)
		second := candidate("second", vk.PhysicalDeviceTypeIntegratedGpu, 4096)

		chosen, err := devices.Select(
			[]devices.Candidate{first, second}, requirements,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(chosen.Name).To(Equal("first"))
	})

	It("skips unsuitable devices even when they score higher", func() {
		big := candidate("big", vk.PhysicalDeviceTypeDiscreteGpu, 16384)
		big.Extensions = nil
		small := candidate("small", vk.PhysicalDeviceTypeIntegratedGpu, 1024)

		chosen, err := devices.Select(
			[]devices.Candidate{big, small}, requirements,
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(chosen.Name).To(Equal("small"))
	})

	It("fails when only zero score devices are suitable", func() {
		c := candidate("d", vk.PhysicalDeviceTypeDiscreteGpu, 16384)
		c.GeometryShader = false

		_, err := devices.Select([]devices.Candidate{c}, requirements)
		Expect(err).To(MatchError(devices.ErrNoSuitableDevice))
	})
})

var _ = Describe("Report", func() {
	It("lists every candidate", func() {
		report := devices.Report([]devices.Candidate{
			candidate("alpha", vk.PhysicalDeviceTypeDiscreteGpu, 4096),
			candidate("beta", vk.PhysicalDeviceTypeCpu, 1024),
		}, requirements)

		Expect(report).To(ContainSubstring("alpha"))
		Expect(report).To(ContainSubstring("beta"))
		Expect(report).To(ContainSubstring("discrete"))
	})
})
