package render_test

import (
	"math"
	"time"
	"unsafe"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"vulkan-sandbox/render"
)

var _ = Describe("ComputeUniforms", func() {
	const epsilon = 1e-5

	It("starts without rotation", func() {
		ubo := render.ComputeUniforms(0, 800, 600)
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				expected := 0.0
				if col == row {
					expected = 1
				}
				Expect(ubo.Model[col][row]).To(BeNumerically("~", expected, epsilon))
			}
		}
	})

	It("turns a quarter around Z in two seconds", func() {
		ubo := render.ComputeUniforms(2*time.Second, 800, 600)

		Expect(ubo.Model[0][0]).To(BeNumerically("~", 0, epsilon))
		Expect(ubo.Model[0][1]).To(BeNumerically("~", 1, epsilon))
		Expect(ubo.Model[1][0]).To(BeNumerically("~", -1, epsilon))
		Expect(ubo.Model[2][2]).To(BeNumerically("~", 1, epsilon))
	})

	It("flips the Y axis of the projection", func() {
		ubo := render.ComputeUniforms(0, 800, 600)

		f := 1 / math.Tan(45*math.Pi/180/2)
		Expect(ubo.Proj[1][1]).To(BeNumerically("~", -f, epsilon))
		Expect(ubo.Proj[0][0]).To(BeNumerically("~", f/(800.0/600.0), epsilon))
	})

	It("stays finite for an empty extent", func() {
		ubo := render.ComputeUniforms(time.Second, 0, 0)
		for _, col := range ubo.Proj {
			for _, v := range col {
				Expect(math.IsNaN(float64(v))).To(BeFalse())
				Expect(math.IsInf(float64(v), 0)).To(BeFalse())
			}
		}
	})

	It("matches the shader side layout of three matrices", func() {
		Expect(unsafe.Sizeof(render.UniformBufferObject{})).To(BeEquivalentTo(3 * 16 * 4))
	})
})
