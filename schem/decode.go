package schem

import "fmt"

// MaxGridVolume bounds the grids Decode is willing to allocate.
const MaxGridVolume = 1 << 28

// Schematic is a decoded schematic file.
type Schematic struct {
	Version  uint8
	Label    string
	Offset   [3]int32
	Grid     *VoxelGrid
	Position [3]int32
}

// Decode parses a schematic produced by Serialize.
func Decode(data []byte) (*Schematic, error) {
	r := NewReader(data)
	s := &Schematic{}

	var err error
	if s.Version, err = r.U8(); err != nil {
		return nil, err
	}
	if s.Version != FormatVersion {
		return nil, fmt.Errorf("version %d: %w", s.Version, ErrMalformed)
	}
	reserved, err := r.Raw(3)
	if err != nil {
		return nil, err
	}
	if reserved[0]|reserved[1]|reserved[2] != 0 {
		return nil, fmt.Errorf("reserved header bytes %v: %w", reserved, ErrMalformed)
	}
	if s.Label, err = r.Str(); err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	if err := readTriple(r, &s.Offset); err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}
	var dims [3]int32
	if err := readTriple(r, &dims); err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return nil, fmt.Errorf("size %v: %w", dims, ErrMalformed)
	}
	if int64(dims[0])*int64(dims[1])*int64(dims[2]) > MaxGridVolume {
		return nil, fmt.Errorf("size %v exceeds %d cells: %w", dims, MaxGridVolume, ErrMalformed)
	}
	s.Grid = NewVoxelGrid(int(dims[0]), int(dims[1]), int(dims[2]))

	cx, cy, cz := s.Grid.ChunkCounts()
	count, err := r.Zigzag()
	if err != nil {
		return nil, fmt.Errorf("chunk count: %w", err)
	}
	if int(count) != cx*cy*cz {
		return nil, fmt.Errorf("chunk count %d, want %d: %w", count, cx*cy*cz, ErrMalformed)
	}

	seen := make([]bool, cx*cy*cz)
	for i := 0; i < int(count); i++ {
		var pos [3]int32
		if err := readTriple(r, &pos); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if pos[0] < 0 || int(pos[0]) >= cx || pos[1] < 0 || int(pos[1]) >= cy || pos[2] < 0 || int(pos[2]) >= cz {
			return nil, fmt.Errorf("chunk %d at %v outside %dx%dx%d: %w", i, pos, cx, cy, cz, ErrMalformed)
		}
		slot := (int(pos[0])*cy+int(pos[1]))*cz + int(pos[2])
		if seen[slot] {
			return nil, fmt.Errorf("chunk %d at %v repeated: %w", i, pos, ErrMalformed)
		}
		seen[slot] = true
		payload, err := r.Bytes()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		raw, err := DecodeRLEN(payload, ChunkVolume)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		placeChunk(s.Grid, int(pos[0]), int(pos[1]), int(pos[2]), raw)
	}

	end, err := r.Zigzag()
	if err != nil {
		return nil, fmt.Errorf("end of chunks: %w", err)
	}
	if end != 0 {
		return nil, fmt.Errorf("end of chunks marker %d: %w", end, ErrMalformed)
	}
	// The block data section is unused; skip whatever it carries.
	if _, err := r.Bytes(); err != nil {
		return nil, fmt.Errorf("block data: %w", err)
	}
	if err := readTriple(r, &s.Position); err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	eof, err := r.Raw(2)
	if err != nil {
		return nil, fmt.Errorf("end of file: %w", err)
	}
	if eof[0] != 0 || eof[1] != 0 {
		return nil, fmt.Errorf("end of file marker %v: %w", eof, ErrMalformed)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", r.Remaining(), ErrMalformed)
	}
	return s, nil
}

func readTriple(r *Reader, dst *[3]int32) error {
	for i := range dst {
		v, err := r.Zigzag()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func placeChunk(grid *VoxelGrid, cx, cy, cz int, raw []uint8) {
	for lx := 0; lx < ChunkSize; lx++ {
		for ly := 0; ly < ChunkSize; ly++ {
			for lz := 0; lz < ChunkSize; lz++ {
				id := raw[ChunkIndex(lx, ly, lz)]
				if id == Air {
					continue
				}
				// cells past the grid edge are padding
				_ = grid.Set(cx*ChunkSize+lx, cy*ChunkSize+ly, cz*ChunkSize+lz, id)
			}
		}
	}
}
