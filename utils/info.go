package utils

import (
	"fmt"
	"io"
	"os"
	"sort"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/fatih/color"

	"github.com/voxelsplace/bloxdschem/schem"
)

// RunInfo prints a summary of the schematic at path to w.
func RunInfo(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := schem.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	g := s.Grid
	cx, cy, cz := g.ChunkCounts()
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  label:    %q\n", s.Label)
	fmt.Fprintf(w, "  version:  %d\n", s.Version)
	fmt.Fprintf(w, "  size:     %d x %d x %d\n", g.SizeX, g.SizeY, g.SizeZ)
	fmt.Fprintf(w, "  chunks:   %d (%d x %d x %d)\n", cx*cy*cz, cx, cy, cz)
	fmt.Fprintf(w, "  blocks:   %d solid\n", g.CountSolid())
	fmt.Fprintf(w, "  xxhash64: %016x\n", xxhash.Sum64(data))

	for _, c := range BlockHistogram(g) {
		name := "unknown"
		if e, ok := schem.LookupBlock(c.ID); ok {
			name = e.Name
		}
		fmt.Fprintf(w, "  %3d %-20s %d\n", c.ID, name, c.Count)
	}
	return nil
}

// BlockCount is one row of BlockHistogram.
type BlockCount struct {
	ID    uint8
	Count int
}

// BlockHistogram counts solid blocks per id, most frequent first.
func BlockHistogram(g *schem.VoxelGrid) []BlockCount {
	var counts [256]int
	for _, b := range g.Blocks {
		counts[b]++
	}
	var out []BlockCount
	for id, n := range counts {
		if id == int(schem.Air) || n == 0 {
			continue
		}
		out = append(out, BlockCount{ID: uint8(id), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RunPalette lists the block palette.
func RunPalette(w io.Writer) {
	for _, p := range schem.Palette() {
		fmt.Fprintf(w, "%3d  %s  %s\n", p.ID, p.Color().Hex(), p.Name)
	}
}
