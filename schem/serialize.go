package schem

const (
	// FormatVersion is the container version understood by the game client.
	FormatVersion = 4
	// DefaultLabel names models converted without an explicit label.
	DefaultLabel = "FromImage"
)

// Serialize writes grid as a complete schematic file.
//
// Chunks are emitted with cx outermost and cz innermost, and each chunk is
// linearised with lx outermost and lz innermost (index lx*1024 + ly*32 + lz).
// The client reads both orders positionally, so neither may change.
func Serialize(grid *VoxelGrid, label string) ([]byte, error) {
	if err := grid.valid(); err != nil {
		return nil, err
	}
	w := NewWriter()

	w.U8(FormatVersion)
	w.U8(0)
	w.U8(0)
	w.U8(0)
	w.Str(label)

	// offset
	w.Zigzag(0)
	w.Zigzag(0)
	w.Zigzag(0)

	w.Zigzag(int32(grid.SizeX))
	w.Zigzag(int32(grid.SizeY))
	w.Zigzag(int32(grid.SizeZ))

	cx, cy, cz := grid.ChunkCounts()
	w.Zigzag(int32(cx * cy * cz))

	raw := make([]uint8, ChunkVolume)
	for x := 0; x < cx; x++ {
		for y := 0; y < cy; y++ {
			for z := 0; z < cz; z++ {
				w.Zigzag(int32(x))
				w.Zigzag(int32(y))
				w.Zigzag(int32(z))
				fillChunk(grid, x, y, z, raw)
				w.Bytes(EncodeRLE(raw))
			}
		}
	}

	w.Zigzag(0) // end of chunks
	w.Zigzag(0) // block data section
	w.Zigzag(0) // global position
	w.Zigzag(0)
	w.Zigzag(0)
	w.U8(0)
	w.U8(0)
	return w.Finalize(), nil
}

// fillChunk copies chunk (cx,cy,cz) of grid into raw, padding with Air
// past the grid edge.
func fillChunk(grid *VoxelGrid, cx, cy, cz int, raw []uint8) {
	i := 0
	for lx := 0; lx < ChunkSize; lx++ {
		gx := cx*ChunkSize + lx
		for ly := 0; ly < ChunkSize; ly++ {
			gy := cy*ChunkSize + ly
			for lz := 0; lz < ChunkSize; lz++ {
				raw[i] = grid.At(gx, gy, cz*ChunkSize+lz)
				i++
			}
		}
	}
}

// ChunkIndex returns the position of local cell (lx,ly,lz) in a chunk's
// linear block array.
func ChunkIndex(lx, ly, lz int) int {
	return lx*ChunkSize*ChunkSize + ly*ChunkSize + lz
}
