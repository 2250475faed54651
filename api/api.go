package api

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	_ "golang.org/x/image/webp"

	"github.com/voxelsplace/bloxdschem/schem"
)

// ConvertOptions controls ImageToSchematic.
type ConvertOptions struct {
	Orientation schem.Orientation
	Label       string
	// Height resizes the image to this many blocks tall before conversion,
	// scaling the width to keep the aspect ratio. Small images are scaled
	// up. Zero keeps the source size.
	Height int
	// MaxWidth and MaxHeight bound the image size in blocks. Larger images are
	// decimated with nearest-neighbour sampling, keeping the aspect ratio.
	// Zero means no limit.
	MaxWidth  int
	MaxHeight int
}

// DefaultConvertOptions returns a wall conversion with the default label.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{Orientation: schem.Wall, Label: schem.DefaultLabel}
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP bytes, applying
// EXIF orientation.
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Pixels returns img as a row-major, non-premultiplied RGBA buffer.
func Pixels(img image.Image) (pix []byte, width, height int) {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return nrgba.Pix, b.Dx(), b.Dy()
}

// Decimate shrinks img to fit inside maxW x maxH using nearest-neighbour
// sampling. Images already inside the bounds are returned unchanged.
func Decimate(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.NearestNeighbor)
}

// Resize scales img to height pixels with nearest-neighbour sampling. The
// width follows the aspect ratio, rounded to the nearest pixel.
func Resize(img image.Image, height int) image.Image {
	if height <= 0 || img.Bounds().Dy() == height {
		return img
	}
	return imaging.Resize(img, 0, height, imaging.NearestNeighbor)
}

// ImageToSchematic converts encoded image bytes to schematic bytes.
func ImageToSchematic(imgBytes []byte, opts ConvertOptions) ([]byte, error) {
	img, err := DecodeImage(imgBytes)
	if err != nil {
		return nil, err
	}
	return FromImage(img, opts)
}

// FromImage converts a decoded image to schematic bytes.
func FromImage(img image.Image, opts ConvertOptions) ([]byte, error) {
	if opts.Height < 0 || opts.MaxWidth < 0 || opts.MaxHeight < 0 {
		return nil, fmt.Errorf("negative size limit: %w", schem.ErrInvalidDimensions)
	}
	img = Resize(img, opts.Height)
	img = Decimate(img, opts.MaxWidth, opts.MaxHeight)
	pix, w, h := Pixels(img)
	label := opts.Label
	if label == "" {
		label = schem.DefaultLabel
	}
	out, err := schem.ConvertLabeled(pix, w, h, opts.Orientation, label)
	if err != nil {
		return nil, fmt.Errorf("convert %dx%d image: %w", w, h, err)
	}
	return out, nil
}

// PixelsToSchematic converts a raw row-major RGBA buffer, as found in a
// browser ImageData, applying the resize options of opts.
func PixelsToSchematic(pix []byte, width, height int, opts ConvertOptions) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", width, height, schem.ErrInvalidDimensions)
	}
	if width > math.MaxInt/4/height || len(pix) != width*height*4 {
		return nil, fmt.Errorf("got %d bytes for %dx%d image: %w", len(pix), width, height, schem.ErrEmptyPixelBuffer)
	}
	img := &image.NRGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return FromImage(img, opts)
}

// GridToGLBDocument builds a glTF document holding a greedy mesh of grid,
// coloured from the block palette.
func GridToGLBDocument(grid *schem.VoxelGrid, name string) (*gltf.Document, error) {
	mesh := schem.GenerateMesh(grid)
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("%s: model has no solid blocks", name)
	}

	positions := make([][3]float32, len(mesh.Vertices))
	colors := make([][4]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = v.Position
		entry, ok := schem.LookupBlock(v.Block)
		if !ok {
			return nil, fmt.Errorf("%s: block id %d is not in the palette", name, v.Block)
		}
		r, g, b := entry.Color().LinearRgb()
		colors[i] = [4]float32{float32(r), float32(g), float32(b), 1}
	}
	indices := make([]uint32, len(mesh.Indices))
	copy(indices, mesh.Indices)
	normals := flatNormals(positions, indices)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "bloxdschem"
	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

func flatNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		a := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		b := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := [3]float32{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		}
		if l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))); l > 0 {
			n[0] /= l
			n[1] /= l
			n[2] /= l
		}
		normals[v0], normals[v1], normals[v2] = n, n, n
	}
	return normals
}

// SchematicToGLB decodes schematic bytes and returns a binary glTF preview.
func SchematicToGLB(data []byte) ([]byte, error) {
	s, err := schem.Decode(data)
	if err != nil {
		return nil, err
	}
	doc, err := GridToGLBDocument(s.Grid, s.Label)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// PackSchematics bundles schematic files, keyed by name, into a pack.
// Every file must decode as a schematic. Entries are stored in name order.
func PackSchematics(files map[string][]byte, layout schem.PackLayout, comp schem.PackCompression) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	pack := &schem.Pack{Entries: make([]schem.PackEntry, 0, len(names))}
	for _, name := range names {
		if _, err := schem.Decode(files[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		pack.Entries = append(pack.Entries, schem.PackEntry{Name: name, Data: files[name]})
	}
	return pack.MarshalEx(layout, comp)
}

// UnpackSchematics returns name -> schematic bytes from a pack.
func UnpackSchematics(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := schem.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		out[e.Name] = e.Data
	}
	return out, nil
}
