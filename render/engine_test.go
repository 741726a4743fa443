package render_test

import (
	"bytes"
	"image"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"vulkan-sandbox/assets"
	"vulkan-sandbox/mesh"
	"vulkan-sandbox/render"
)

type stubWindow struct{}

func (stubWindow) RequiredInstanceExtensions() []string { return nil }

func (stubWindow) CreateSurface(vk.Instance) (vk.Surface, error) {
	return vk.NullSurface, nil
}

func (stubWindow) FramebufferSize() (int, int) { return 800, 600 }

func (stubWindow) WaitEvents() {}

func bundle() *assets.Bundle {
	b := mesh.NewBuilder()
	b.Add(mesh.Vertex{})

	return &assets.Bundle{
		VertexShader:   []byte{0, 0, 0, 0},
		FragmentShader: []byte{0, 0, 0, 0},
		Geometry:       b.Geometry(),
		Texture:        image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
}

var _ = Describe("Engine", func() {
	It("has sane defaults", func() {
		cfg := render.DefaultConfig()
		Expect(cfg.FramesInFlight).To(Equal(2))
		Expect(cfg.ValidationLayers).To(ConsistOf("VK_LAYER_KHRONOS_validation\x00"))
		Expect(cfg.DeviceExtensions).To(ConsistOf(vk.KhrSwapchainExtensionName + "\x00"))
		Expect(cfg.ClearColor).To(Equal([4]float32{0.7, 0.76, 0.8, 0.95}))
	})

	table.DescribeTable("New rejects",
		func(window render.Window, b *assets.Bundle, framesInFlight int) {
			cfg := render.DefaultConfig()
			cfg.FramesInFlight = framesInFlight

			_, err := render.New(window, b, cfg)
			Expect(err).To(HaveOccurred())
		},
		table.Entry("missing window", nil, bundle(), 2),
		table.Entry("missing bundle", stubWindow{}, nil, 2),
		table.Entry("empty geometry", stubWindow{}, &assets.Bundle{
			Texture: image.NewRGBA(image.Rect(0, 0, 1, 1)),
		}, 2),
		table.Entry("empty ring", stubWindow{}, bundle(), 0),
	)

	It("does not draw before bootstrap", func() {
		e, err := render.New(stubWindow{}, bundle(), render.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		Expect(e.DrawFrame()).To(MatchError(render.ErrNotBootstrapped))
		Expect(e.WaitIdle()).To(Succeed())

		// Neither touches the driver when nothing was created.
		e.NotifyResized()
		e.Teardown()
	})
})

var _ = Describe("LogDebugMessage", func() {
	table.DescribeTable("levels",
		func(flags vk.DebugReportFlagBits, level string) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))

			render.LogDebugMessage(logger, render.DebugMessage{
				Flags:   vk.DebugReportFlags(flags),
				Layer:   "Validation",
				Code:    7,
				Message: "bad things",
			})

			Expect(buf.String()).To(ContainSubstring("level=" + level))
			Expect(buf.String()).To(ContainSubstring(`message="bad things"`))
		},
		table.Entry("error", vk.DebugReportErrorBit, "ERROR"),
		table.Entry("warning", vk.DebugReportWarningBit, "WARN"),
		table.Entry("performance", vk.DebugReportPerformanceWarningBit, "WARN"),
		table.Entry("information", vk.DebugReportInformationBit, "DEBUG"),
	)
})
