package queues

import (
	vk "github.com/vulkan-go/vulkan"

	"vulkan-sandbox/optional"
)

// FamilyIndices holds the indexes of Vulkan queue families needed by the programs.
type FamilyIndices struct {

	// Graphics is the index of the graphics queue family.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting to the drawing
	// surface.
	Present optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}

// Unique returns the distinct family indexes which are set, graphics first.
// Graphics and present may alias the same family, in which case one index is
// returned.
func (f *FamilyIndices) Unique() []uint32 {
	var out []uint32
	if f.Graphics.HasValue() {
		out = append(out, f.Graphics.Get())
	}
	if f.Present.HasValue() && (len(out) == 0 || out[0] != f.Present.Get()) {
		out = append(out, f.Present.Get())
	}
	return out
}

// Family is what the resolver needs to know about one entry of a physical
// device's queue family table.
type Family struct {
	Flags vk.QueueFlags

	// Present is true if the family can present to the bound surface.
	Present bool
}

// Resolve returns the first family index which offers both graphics
// capability and presentation support. The result is incomplete when no such
// family exists.
func Resolve(families []Family) FamilyIndices {
	indices := FamilyIndices{}

	for i, family := range families {
		if family.Flags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 || !family.Present {
			continue
		}

		indices.Graphics.Set(uint32(i))
		indices.Present.Set(uint32(i))
		break
	}

	return indices
}
