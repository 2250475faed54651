package schem

import (
	"fmt"
	"math"
	"strings"
)

const (
	// ChunkSize is the edge length of a schematic chunk.
	ChunkSize = 32
	// ChunkVolume is the number of block ids stored per chunk.
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
	// Thickness is the depth of the extruded image, in blocks.
	Thickness = 2
)

// Orientation selects how the image plane is placed in the world.
type Orientation uint8

const (
	// Wall stands the image up: width along X, thickness along Z.
	Wall Orientation = iota
	// Floor turns the image sideways: width along Z, thickness along X.
	Floor
)

func (o Orientation) String() string {
	switch o {
	case Wall:
		return "wall"
	case Floor:
		return "floor"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// ParseOrientation accepts "wall"/"z" and "floor"/"x", case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wall", "z":
		return Wall, nil
	case "floor", "x":
		return Floor, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidOrientation)
}

// VoxelGrid is a dense block-id volume stored as a flat slice.
// Cell (x,y,z) lives at ((y*SizeZ)+z)*SizeX+x.
type VoxelGrid struct {
	SizeX, SizeY, SizeZ int
	Blocks              []uint8
}

func NewVoxelGrid(sizeX, sizeY, sizeZ int) *VoxelGrid {
	return &VoxelGrid{
		SizeX:  sizeX,
		SizeY:  sizeY,
		SizeZ:  sizeZ,
		Blocks: make([]uint8, sizeX*sizeY*sizeZ),
	}
}

func (g *VoxelGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.SizeX && y >= 0 && y < g.SizeY && z >= 0 && z < g.SizeZ
}

func (g *VoxelGrid) index(x, y, z int) int {
	return ((y*g.SizeZ)+z)*g.SizeX + x
}

// At returns the block at (x,y,z), or Air outside the grid.
func (g *VoxelGrid) At(x, y, z int) uint8 {
	if !g.InBounds(x, y, z) {
		return Air
	}
	return g.Blocks[g.index(x, y, z)]
}

func (g *VoxelGrid) Set(x, y, z int, id uint8) error {
	if !g.InBounds(x, y, z) {
		return fmt.Errorf("cell (%d,%d,%d) outside %dx%dx%d grid: %w", x, y, z, g.SizeX, g.SizeY, g.SizeZ, ErrEncoding)
	}
	g.Blocks[g.index(x, y, z)] = id
	return nil
}

// ChunkCounts returns the number of chunks along each axis.
func (g *VoxelGrid) ChunkCounts() (cx, cy, cz int) {
	return chunksFor(g.SizeX), chunksFor(g.SizeY), chunksFor(g.SizeZ)
}

// CountSolid returns the number of non-air cells.
func (g *VoxelGrid) CountSolid() int {
	n := 0
	for _, b := range g.Blocks {
		if b != Air {
			n++
		}
	}
	return n
}

func (g *VoxelGrid) valid() error {
	if g == nil {
		return fmt.Errorf("nil grid: %w", ErrEncoding)
	}
	if g.SizeX <= 0 || g.SizeY <= 0 || g.SizeZ <= 0 {
		return fmt.Errorf("grid size %dx%dx%d: %w", g.SizeX, g.SizeY, g.SizeZ, ErrEncoding)
	}
	if len(g.Blocks) != g.SizeX*g.SizeY*g.SizeZ {
		return fmt.Errorf("grid holds %d cells, want %d: %w", len(g.Blocks), g.SizeX*g.SizeY*g.SizeZ, ErrEncoding)
	}
	return nil
}

func chunksFor(size int) int {
	return (size + ChunkSize - 1) / ChunkSize
}

// BuildGrid quantizes a row-major RGBA buffer and extrudes it Thickness
// blocks deep. Image row 0 ends up at the highest Y layer.
func BuildGrid(pix []byte, width, height int, o Orientation) (*VoxelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if width > math.MaxInt/4/height || len(pix) != width*height*4 {
		return nil, fmt.Errorf("got %d bytes for %dx%d image: %w", len(pix), width, height, ErrEmptyPixelBuffer)
	}

	var grid *VoxelGrid
	switch o {
	case Wall:
		grid = NewVoxelGrid(width, height, Thickness)
	case Floor:
		grid = NewVoxelGrid(Thickness, height, width)
	default:
		return nil, fmt.Errorf("%v: %w", o, ErrInvalidOrientation)
	}

	for y := 0; y < height; y++ {
		by := height - 1 - y
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			id := NearestBlock(pix[i], pix[i+1], pix[i+2], pix[i+3])
			if id == Air {
				continue
			}
			for t := 0; t < Thickness; t++ {
				var err error
				if o == Wall {
					err = grid.Set(x, by, t, id)
				} else {
					err = grid.Set(t, by, x, id)
				}
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return grid, nil
}
