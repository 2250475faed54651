package schem

// Vertex is a mesh corner carrying the block id of its face.
type Vertex struct {
	Position [3]float32
	Block    uint8
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

type faceDir struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var faceDirs = []faceDir{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

func (m *Mesh) addQuad(dir faceDir, perp int, start [3]int, w, h int, block uint8) {
	base := [3]float32{}
	base[perp] = float32(start[0])
	if dir.normal[perp] > 0 {
		base[perp]++
	}
	base[dir.u] = float32(start[1])
	base[dir.v] = float32(start[2])

	offset := func(a, b int) [3]float32 {
		var p [3]float32
		for i := range p {
			p[i] = base[i] + float32(dir.du[i]*a+dir.dv[i]*b)
		}
		return p
	}
	verts := [4]Vertex{
		{Position: base, Block: block},
		{Position: offset(h, 0), Block: block},
		{Position: offset(h, w), Block: block},
		{Position: offset(0, w), Block: block},
	}
	// keep counter-clockwise winding seen from outside
	if (dir.normal[perp] < 0) != (perp == 1) {
		verts[1], verts[3] = verts[3], verts[1]
	}

	first := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, verts[:]...)
	m.Indices = append(m.Indices, first, first+1, first+2, first, first+2, first+3)
}

// GenerateMesh builds a greedy-merged surface mesh of grid. Only faces
// between a block and air are emitted; coplanar faces of the same block
// merge into rectangles.
func GenerateMesh(grid *VoxelGrid) *Mesh {
	mesh := &Mesh{}
	dims := [3]int{grid.SizeX, grid.SizeY, grid.SizeZ}

	for _, dir := range faceDirs {
		perp := 3 - dir.u - dir.v
		nu, nv := dims[dir.u], dims[dir.v]
		mask := make([]uint8, nu*nv)
		visited := make([]bool, nu*nv)

		for p := 0; p < dims[perp]; p++ {
			for i := range mask {
				mask[i] = Air
				visited[i] = false
			}
			for u := 0; u < nu; u++ {
				for v := 0; v < nv; v++ {
					var pos [3]int
					pos[dir.u], pos[dir.v], pos[perp] = u, v, p
					block := grid.At(pos[0], pos[1], pos[2])
					if block == Air {
						continue
					}
					adj := pos
					if dir.normal[perp] < 0 {
						adj[perp]--
					} else {
						adj[perp]++
					}
					if grid.At(adj[0], adj[1], adj[2]) == Air {
						mask[u*nv+v] = block
					}
				}
			}

			for u := 0; u < nu; u++ {
				for v := 0; v < nv; {
					block := mask[u*nv+v]
					if block == Air || visited[u*nv+v] {
						v++
						continue
					}
					width := 1
					for v+width < nv && mask[u*nv+v+width] == block && !visited[u*nv+v+width] {
						width++
					}
					height := 1
				grow:
					for u+height < nu {
						row := (u + height) * nv
						for k := v; k < v+width; k++ {
							if mask[row+k] != block || visited[row+k] {
								break grow
							}
						}
						height++
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu*nv+hv] = true
						}
					}
					mesh.addQuad(dir, perp, [3]int{p, u, v}, width, height, block)
					v += width
				}
			}
		}
	}
	return mesh
}
