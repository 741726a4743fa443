// Package assets reads the files the renderer needs: compiled shaders, the
// OBJ model and the texture image. Each kind lives under its own root.
package assets

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/xlab/linmath"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"vulkan-sandbox/mesh"
)

// ErrUnsupportedImage is returned when a texture file is in a format none of
// the registered decoders understand.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Default roots, relative to the working directory.
const (
	ShadersDir  = "../Shaders"
	ModelsDir   = "../Assets/Models"
	TexturesDir = "../Assets/Textures"
)

// Loader reads assets from three file systems.
type Loader struct {
	Shaders  fs.FS
	Models   fs.FS
	Textures fs.FS

	// Tint is the color given to every model vertex.
	Tint linmath.Vec3

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// NewLoader returns a Loader reading from directories on disk.
func NewLoader(shadersDir, modelsDir, texturesDir string) *Loader {
	return &Loader{
		Shaders:  os.DirFS(shadersDir),
		Models:   os.DirFS(modelsDir),
		Textures: os.DirFS(texturesDir),
		Tint:     linmath.Vec3{1, 1, 1},
	}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// DefaultLoader reads from ShadersDir, ModelsDir and TexturesDir.
func DefaultLoader() *Loader {
	return NewLoader(ShadersDir, ModelsDir, TexturesDir)
}

// ReadShader returns the bytecode of the named shader padded with zeros up to
// a multiple of four bytes.
func (l *Loader) ReadShader(name string) ([]byte, error) {
	code, err := fs.ReadFile(l.Shaders, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", name)
	}
	if len(code) == 0 {
		return nil, errors.Newf("shader %s is empty", name)
	}

	return PadShader(code), nil
}

// LoadModel decodes the named OBJ model.
func (l *Loader) LoadModel(name string) (mesh.Geometry, error) {
	return l.loadModel(context.Background(), name)
}

func (l *Loader) loadModel(ctx context.Context, name string) (mesh.Geometry, error) {
	data, err := fs.ReadFile(l.Models, name)
	if err != nil {
		return mesh.Geometry{}, errors.Wrapf(err, "reading model %s", name)
	}
	if err := ctx.Err(); err != nil {
		return mesh.Geometry{}, err
	}

	geometry, err := mesh.Decode(bytes.NewReader(data), l.Tint)
	if err != nil {
		return mesh.Geometry{}, errors.Wrapf(err, "model %s", name)
	}

	return geometry, nil
}

// LoadTexture decodes the named image into tightly packed RGBA pixels.
func (l *Loader) LoadTexture(name string) (*image.RGBA, error) {
	return l.loadTexture(context.Background(), name)
}

func (l *Loader) loadTexture(ctx context.Context, name string) (*image.RGBA, error) {
	data, err := fs.ReadFile(l.Textures, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading texture %s", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rgba, err := DecodeRGBA(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s", name)
	}

	return rgba, nil
}

// DecodeRGBA decodes any registered image format and converts it to RGBA
// with the origin at (0, 0).
func DecodeRGBA(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupportedImage
	}
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("image has no pixels")
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return rgba, nil
}

// PadShader returns code extended with zero bytes to a multiple of four.
// Already aligned code is returned as is.
func PadShader(code []byte) []byte {
	rem := len(code) % 4
	if rem == 0 {
		return code
	}

	padded := make([]byte, len(code)+4-rem)
	copy(padded, code)
	return padded
}
