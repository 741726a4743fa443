package assets_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"log/slog"
	"testing/fstest"

	"github.com/xlab/linmath"
	"golang.org/x/image/bmp"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"vulkan-sandbox/assets"
)

const triangle = `o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func encodedImage(encode func(*bytes.Buffer, image.Image) error) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	draw.Draw(img, img.Bounds(), image.Opaque, image.Point{}, draw.Src)
	img.Set(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	Expect(encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

func pngBytes() []byte {
	return encodedImage(func(b *bytes.Buffer, img image.Image) error {
		return png.Encode(b, img)
	})
}

func bmpBytes() []byte {
	return encodedImage(func(b *bytes.Buffer, img image.Image) error {
		return bmp.Encode(b, img)
	})
}

func newLoader() *assets.Loader {
	return &assets.Loader{
		Shaders: fstest.MapFS{
			"vert.spv": {Data: []byte{1, 2, 3, 4, 5}},
			"frag.spv": {Data: []byte{1, 2, 3, 4}},
			"empty":    {Data: nil},
		},
		Models: fstest.MapFS{
			"tri.obj": {Data: []byte(triangle)},
		},
		Textures: fstest.MapFS{
			"tex.png": {Data: pngBytes()},
			"tex.bmp": {Data: bmpBytes()},
			"tex.txt": {Data: []byte("not an image")},
		},
		Tint: linmath.Vec3{1, 1, 1},
	}
}

var _ = Describe("PadShader", func() {
	table.DescribeTable("lengths",
		func(size, expected int) {
			code := bytes.Repeat([]byte{0xff}, size)
			padded := assets.PadShader(code)
			Expect(padded).To(HaveLen(expected))
			Expect(padded[:size]).To(Equal(code))
			for _, b := range padded[size:] {
				Expect(b).To(BeZero())
			}
		},
		table.Entry("aligned", 8, 8),
		table.Entry("one over", 9, 12),
		table.Entry("three over", 11, 12),
		table.Entry("empty", 0, 0),
	)
})

var _ = Describe("Loader", func() {
	var l *assets.Loader

	BeforeEach(func() {
		l = newLoader()
	})

	It("pads shader bytecode", func() {
		code, err := l.ReadShader("vert.spv")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal([]byte{1, 2, 3, 4, 5, 0, 0, 0}))
	})

	It("fails on missing and empty shaders", func() {
		_, err := l.ReadShader("missing.spv")
		Expect(err).To(MatchError(fs.ErrNotExist))

		_, err = l.ReadShader("empty")
		Expect(err).To(HaveOccurred())
	})

	It("loads a model with the tint", func() {
		l.Tint = linmath.Vec3{0.5, 0.5, 0.5}
		g, err := l.LoadModel("tri.obj")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Indices).To(Equal([]uint32{0, 1, 2}))
		Expect(g.Vertices[1].Color).To(Equal(l.Tint))
	})

	table.DescribeTable("textures",
		func(name string) {
			rgba, err := l.LoadTexture(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(rgba.Bounds()).To(Equal(image.Rect(0, 0, 2, 3)))
			Expect(rgba.Pix).To(HaveLen(2 * 3 * 4))
			Expect(rgba.RGBAAt(1, 2)).To(Equal(color.RGBA{R: 10, G: 20, B: 30, A: 255}))
		},
		table.Entry("png", "tex.png"),
		table.Entry("bmp", "tex.bmp"),
	)

	It("rejects unknown image formats", func() {
		_, err := l.LoadTexture("tex.txt")
		Expect(err).To(MatchError(assets.ErrUnsupportedImage))
	})
})

var _ = Describe("LoadBundle", func() {
	names := assets.Names{
		VertexShader:   "vert.spv",
		FragmentShader: "frag.spv",
		Model:          "tri.obj",
		Texture:        "tex.png",
	}

	It("loads everything", func() {
		b, err := assets.LoadBundle(context.Background(), newLoader(), names)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.VertexShader).To(HaveLen(8))
		Expect(b.FragmentShader).To(HaveLen(4))
		Expect(b.Geometry.Vertices).To(HaveLen(3))
		Expect(b.Texture.Bounds().Dx()).To(Equal(2))
	})

	It("reports the first failure", func() {
		broken := names
		broken.Texture = "missing.png"

		_, err := assets.LoadBundle(context.Background(), newLoader(), broken)
		Expect(err).To(MatchError(fs.ErrNotExist))
	})

	It("stops before decoding when the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := assets.LoadBundle(ctx, newLoader(), names)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("logs to the loader's logger", func() {
		var out bytes.Buffer
		l := newLoader()
		l.Logger = slog.New(slog.NewTextHandler(&out,
			&slog.HandlerOptions{Level: slog.LevelDebug}))

		_, err := assets.LoadBundle(context.Background(), l, names)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("assets loaded"))
		Expect(out.String()).To(ContainSubstring("vertices=3"))
	})
})
