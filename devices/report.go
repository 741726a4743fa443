package devices

import (
	"github.com/xlab/tablewriter"
	vk "github.com/vulkan-go/vulkan"
)

// Report renders a table of the candidates with their score and whether they
// pass the filter for req.
func Report(candidates []Candidate, req Requirements) string {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("PHYSICAL DEVICES")
	table.AddHeaders("Name", "Type", "Max 2D image", "Score", "Suitable")

	for _, c := range candidates {
		table.AddRow(
			c.Name,
			typeName(c.Type),
			c.MaxImageDimension2D,
			Score(c),
			Suitable(c, req),
		)
	}

	return table.Render()
}

func typeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}
