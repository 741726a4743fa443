package devices

import (
	"strings"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrNoDevices is returned when the instance reports no physical devices.
	ErrNoDevices = errors.New("failed to find GPUs with Vulkan support")

	// ErrNoSuitableDevice is returned when no device passes the filter.
	ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")
)

const discreteBonus = 1000

// Score returns how suitable is this device for the current program.
// Bigger score means better. Zero means the device cannot be used.
func Score(c Candidate) uint32 {
	if !c.GeometryShader {
		return 0
	}

	var score uint32
	if c.Type == vk.PhysicalDeviceTypeDiscreteGpu {
		score += discreteBonus
	}

	// Maximum possible size of textures affects graphics quality.
	score += c.MaxImageDimension2D

	return score
}

// Suitable reports whether c passes the hard filter: a graphics and present
// capable queue family, every required extension, at least one surface format
// and present mode, and anisotropic sampling.
func Suitable(c Candidate, req Requirements) bool {
	if !c.Families.IsComplete() {
		return false
	}

	for _, name := range req.Extensions {
		if _, ok := c.Extensions[strings.TrimRight(name, "\x00")]; !ok {
			return false
		}
	}

	return c.Support.Adequate() && c.SamplerAnisotropy
}

// Select returns the highest scoring candidate among those which pass the
// hard filter. The first one wins a tie.
func Select(candidates []Candidate, req Requirements) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoDevices
	}

	var (
		selected Candidate
		best     uint32
	)

	for _, c := range candidates {
		if !Suitable(c, req) {
			continue
		}

		if score := Score(c); score > best {
			selected = c
			best = score
		}
	}

	if best == 0 {
		return Candidate{}, ErrNoSuitableDevice
	}

	return selected, nil
}
