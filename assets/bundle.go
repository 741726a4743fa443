package assets

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"vulkan-sandbox/mesh"
)

// Names selects the files of a Bundle.
type Names struct {
	VertexShader   string
	FragmentShader string
	Model          string
	Texture        string
}

// Bundle is everything read from disk before any GPU object is created.
type Bundle struct {
	VertexShader   []byte
	FragmentShader []byte
	Geometry       mesh.Geometry
	Texture        *image.RGBA
}

// LoadBundle reads and decodes all files named in names concurrently. The
// first failure, or ctx being done, stops the model and texture decoders once
// their files are read.
func LoadBundle(ctx context.Context, l *Loader, names Names) (*Bundle, error) {
	var b Bundle

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		code, err := l.ReadShader(names.VertexShader)
		b.VertexShader = code
		return err
	})
	g.Go(func() error {
		code, err := l.ReadShader(names.FragmentShader)
		b.FragmentShader = code
		return err
	})
	g.Go(func() error {
		geometry, err := l.loadModel(ctx, names.Model)
		b.Geometry = geometry
		return err
	})
	g.Go(func() error {
		texture, err := l.loadTexture(ctx, names.Texture)
		b.Texture = texture
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "loading assets")
	}

	l.logger().Debug("assets loaded",
		"vertices", len(b.Geometry.Vertices),
		"indices", len(b.Geometry.Indices),
		"texture", b.Texture.Bounds().Size(),
		"vertShaderSize", len(b.VertexShader),
		"fragShaderSize", len(b.FragmentShader),
	)

	return &b, nil
}
