package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/voxelsplace/bloxdschem/schem"
)

// noiseImage returns a width x height RGBA buffer where roughly percentage
// of the pixels are opaque palette colours and the rest are transparent.
func noiseImage(width, height int, percentage float64, r *rand.Rand) []byte {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	total := width * height
	want := int(float64(total)*(percentage/100.0) + 0.5)

	// partial Fisher-Yates over pixel positions
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	pal := schem.Palette()
	pix := make([]byte, total*4)
	for _, p := range idx[:want] {
		c := pal[r.Intn(len(pal))].RGB
		copy(pix[p*4:], []byte{c[0], c[1], c[2], 0xFF})
	}
	return pix
}

// RunGenerateNoise writes amount random schematics of width x height pixels
// into outDir, each with a fill percentage drawn from [minP, maxP].
func RunGenerateNoise(width, height int, minP, maxP float64, amount int, outDir string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, schem.ErrInvalidDimensions)
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if maxP < minP {
		minP, maxP = maxP, minP
	}

	baseSeed := uint64(time.Now().UnixNano())
	for i := 0; i < amount; i++ {
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := minP
		if maxP > minP {
			perc = minP + r.Float64()*(maxP-minP)
		}
		o := schem.Wall
		if r.Intn(2) == 1 {
			o = schem.Floor
		}
		out, err := schem.ConvertLabeled(noiseImage(width, height, perc, r), width, height, o, fmt.Sprintf("noise-%d", i))
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.bloxdschem", i))
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	return nil
}
