package mesh

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/mokiat/go-data-front/decoder/obj"
	"github.com/xlab/linmath"
)

// Decode reads a Wavefront OBJ model from r. Positions and texture
// coordinates come from the file and every vertex gets the color tint.
// Polygons with more than three corners are split into a triangle fan.
func Decode(r io.Reader, tint linmath.Vec3) (Geometry, error) {
	decoder := obj.NewDecoder(obj.DefaultLimits())
	model, err := decoder.Decode(r)
	if err != nil {
		return Geometry{}, errors.Wrap(err, "decoding OBJ model")
	}

	b := NewBuilder()
	for _, object := range model.Objects {
		for _, m := range object.Meshes {
			for _, face := range m.Faces {
				refs := face.References
				for i := 2; i < len(refs); i++ {
					b.Add(vertexFromReference(model, refs[0], tint))
					b.Add(vertexFromReference(model, refs[i-1], tint))
					b.Add(vertexFromReference(model, refs[i], tint))
				}
			}
		}
	}

	geometry := b.Geometry()
	if len(geometry.Indices) == 0 {
		return geometry, errors.New("model has no triangles")
	}

	return geometry, nil
}

func vertexFromReference(model *obj.Model, ref obj.Reference, tint linmath.Vec3) Vertex {
	pos := model.GetVertexFromReference(ref)
	v := Vertex{
		Pos: linmath.Vec3{
			float32(pos.X),
			float32(pos.Y),
			float32(pos.Z),
		},
		Color: tint,
	}

	if ref.HasTexCoord() {
		texCoord := model.GetTexCoordFromReference(ref)

		// OBJ puts the origin of the texture space in the bottom-left corner
		// while Vulkan samples from the top-left one.
		v.TexCoord = linmath.Vec2{
			float32(texCoord.U),
			1 - float32(texCoord.V),
		}
	}

	return v
}
