// Package mesh holds the vertex layout used by the graphics pipeline and turns
// model files into deduplicated, indexed geometry.
package mesh

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"
)

// Vertex is a single vertex as the vertex shader sees it. It is comparable so
// that structurally equal vertices can be found with a map lookup.
type Vertex struct {
	Pos      linmath.Vec3
	Color    linmath.Vec3
	TexCoord linmath.Vec2
}

// VertexSize is the stride of Vertex in a vertex buffer.
func VertexSize() uint32 {
	return uint32(unsafe.Sizeof(Vertex{}))
}

// BindingDescription describes the single per-vertex binding.
func BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    VertexSize(),
		InputRate: vk.VertexInputRateVertex,
	}
}

// AttributeDescriptions returns position, color and texture coordinate
// attributes at locations 0, 1 and 2.
func AttributeDescriptions() [3]vk.VertexInputAttributeDescription {
	return [3]vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.TexCoord)),
		},
	}
}
