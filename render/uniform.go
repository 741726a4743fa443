package render

import (
	"math"
	"time"

	"github.com/xlab/linmath"
)

const (
	rotationDegreesPerSecond = 45
	fieldOfViewDegrees       = 45
	nearPlane                = 0.01
	farPlane                 = 2000
)

var (
	eye    = linmath.Vec3{2, 2, 2}
	center = linmath.Vec3{0, 0, 0}
	up     = linmath.Vec3{0, 0, 1}
)

// UniformBufferObject is the layout of the uniform buffer the vertex shader
// reads.
type UniformBufferObject struct {
	Model linmath.Mat4x4
	View  linmath.Mat4x4
	Proj  linmath.Mat4x4
}

// ComputeUniforms returns the transformation matrices at elapsed time since
// the start for a width by height target. The model spins around Z.
func ComputeUniforms(elapsed time.Duration, width, height uint32) UniformBufferObject {
	ubo := UniformBufferObject{}

	angle := radians(float32(elapsed.Seconds()) * rotationDegreesPerSecond)

	var identity linmath.Mat4x4
	identity.Identity()
	ubo.Model.RotateZ(&identity, angle)

	eye, center, up := eye, center, up
	ubo.View.LookAt(&eye, &center, &up)

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	ubo.Proj.Perspective(radians(fieldOfViewDegrees), aspect, nearPlane, farPlane)

	// Vulkan clip space has Y pointing down.
	ubo.Proj[1][1] *= -1

	return ubo
}

func radians(degrees float32) float32 {
	return degrees * math.Pi / 180
}
