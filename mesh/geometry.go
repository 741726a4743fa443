package mesh

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Builder collects vertices and assigns each structurally unique vertex a
// stable index. Repeated vertices only add an index.
type Builder struct {
	unique   map[Vertex]uint32
	vertices []Vertex
	indices  []uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		unique: make(map[Vertex]uint32),
	}
}

// Add appends v to the index list and returns the index it was given.
func (b *Builder) Add(v Vertex) uint32 {
	if b.unique == nil {
		b.unique = make(map[Vertex]uint32)
	}

	index, ok := b.unique[v]
	if !ok {
		index = uint32(len(b.vertices))
		b.unique[v] = index
		b.vertices = append(b.vertices, v)
	}

	b.indices = append(b.indices, index)
	return index
}

// Geometry returns what was collected so far.
func (b *Builder) Geometry() Geometry {
	return Geometry{
		Vertices: b.vertices,
		Indices:  b.indices,
	}
}
