package schem

import "github.com/lucasb-eyer/go-colorful"

// Air is the block id for an empty cell. It is never a palette member.
const Air uint8 = 0

// alphaCutoff is the lowest alpha that still produces a block.
const alphaCutoff = 128

// PaletteEntry is one placeable block and the colour it stands for.
type PaletteEntry struct {
	ID   uint8
	RGB  [3]uint8
	Name string
}

// Color returns the entry colour for previews.
func (p PaletteEntry) Color() colorful.Color {
	return colorful.Color{
		R: float64(p.RGB[0]) / 255,
		G: float64(p.RGB[1]) / 255,
		B: float64(p.RGB[2]) / 255,
	}
}

// Wool and concrete blocks. Declaration order decides distance ties.
var palette = [...]PaletteEntry{
	{ID: 51, RGB: [3]uint8{233, 236, 236}, Name: "White Wool"},
	{ID: 52, RGB: [3]uint8{240, 118, 19}, Name: "Orange Wool"},
	{ID: 53, RGB: [3]uint8{189, 68, 179}, Name: "Magenta Wool"},
	{ID: 54, RGB: [3]uint8{58, 175, 217}, Name: "Light Blue Wool"},
	{ID: 55, RGB: [3]uint8{248, 197, 39}, Name: "Yellow Wool"},
	{ID: 56, RGB: [3]uint8{112, 185, 25}, Name: "Lime Wool"},
	{ID: 57, RGB: [3]uint8{237, 141, 172}, Name: "Pink Wool"},
	{ID: 58, RGB: [3]uint8{62, 68, 71}, Name: "Gray Wool"},
	{ID: 59, RGB: [3]uint8{142, 142, 134}, Name: "Light Gray Wool"},
	{ID: 60, RGB: [3]uint8{21, 137, 145}, Name: "Cyan Wool"},
	{ID: 61, RGB: [3]uint8{121, 42, 172}, Name: "Purple Wool"},
	{ID: 62, RGB: [3]uint8{53, 57, 157}, Name: "Blue Wool"},
	{ID: 63, RGB: [3]uint8{114, 71, 40}, Name: "Brown Wool"},
	{ID: 64, RGB: [3]uint8{84, 109, 27}, Name: "Green Wool"},
	{ID: 65, RGB: [3]uint8{160, 39, 34}, Name: "Red Wool"},
	{ID: 66, RGB: [3]uint8{20, 21, 25}, Name: "Black Wool"},
	{ID: 97, RGB: [3]uint8{207, 213, 214}, Name: "White Concrete"},
	{ID: 93, RGB: [3]uint8{224, 97, 0}, Name: "Orange Concrete"},
	{ID: 92, RGB: [3]uint8{169, 48, 159}, Name: "Magenta Concrete"},
	{ID: 90, RGB: [3]uint8{35, 137, 198}, Name: "Light Blue Concrete"},
	{ID: 99, RGB: [3]uint8{240, 175, 21}, Name: "Yellow Concrete"},
	{ID: 91, RGB: [3]uint8{94, 169, 24}, Name: "Lime Concrete"},
	{ID: 94, RGB: [3]uint8{213, 101, 142}, Name: "Pink Concrete"},
	{ID: 84, RGB: [3]uint8{54, 57, 61}, Name: "Gray Concrete"},
	{ID: 85, RGB: [3]uint8{125, 125, 115}, Name: "Light Gray Concrete"},
	{ID: 89, RGB: [3]uint8{21, 119, 136}, Name: "Cyan Concrete"},
	{ID: 95, RGB: [3]uint8{100, 31, 156}, Name: "Purple Concrete"},
	{ID: 87, RGB: [3]uint8{44, 46, 143}, Name: "Blue Concrete"},
	{ID: 88, RGB: [3]uint8{96, 59, 31}, Name: "Brown Concrete"},
	{ID: 98, RGB: [3]uint8{73, 91, 36}, Name: "Green Concrete"},
	{ID: 96, RGB: [3]uint8{142, 32, 32}, Name: "Red Concrete"},
	{ID: 86, RGB: [3]uint8{8, 10, 15}, Name: "Black Concrete"},
}

var paletteByID [256]int16

func init() {
	for i := range paletteByID {
		paletteByID[i] = -1
	}
	for i, p := range palette {
		paletteByID[p.ID] = int16(i)
	}
}

// Palette returns a copy of the block palette in declaration order.
func Palette() []PaletteEntry {
	out := make([]PaletteEntry, len(palette))
	copy(out, palette[:])
	return out
}

// LookupBlock returns the palette entry for id.
func LookupBlock(id uint8) (PaletteEntry, bool) {
	i := paletteByID[id]
	if i < 0 {
		return PaletteEntry{}, false
	}
	return palette[i], true
}

// NearestBlock maps an RGBA sample to the closest palette block by squared
// RGB distance. Samples with alpha below 128 become Air.
func NearestBlock(r, g, b, a uint8) uint8 {
	if a < alphaCutoff {
		return Air
	}
	best := Air
	bestDist := int(^uint(0) >> 1)
	for _, p := range palette {
		dr := int(r) - int(p.RGB[0])
		dg := int(g) - int(p.RGB[1])
		db := int(b) - int(p.RGB[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = p.ID
		}
	}
	return best
}
