package api

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/voxelsplace/bloxdschem/schem"
)

func encodePNG(t *testing.T, w, h int, fill func(x, y int) color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func checker(x, y int) color.NRGBA {
	if (x+y)%2 == 0 {
		return color.NRGBA{R: 0xE9, G: 0xEC, B: 0xEC, A: 0xFF}
	}
	return color.NRGBA{}
}

func TestImageToSchematic(t *testing.T) {
	src := encodePNG(t, 5, 3, checker)
	out, err := ImageToSchematic(src, ConvertOptions{Orientation: schem.Floor, Label: "chk"})
	if err != nil {
		t.Fatalf("ImageToSchematic: %v", err)
	}
	s, err := schem.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Label != "chk" {
		t.Fatalf("label %q", s.Label)
	}
	g := s.Grid
	if g.SizeX != 2 || g.SizeY != 3 || g.SizeZ != 5 {
		t.Fatalf("size %dx%dx%d", g.SizeX, g.SizeY, g.SizeZ)
	}
	// pixel (0,0) is white wool at the top row
	if got := g.At(0, 2, 0); got != 51 {
		t.Fatalf("top-left block %d, want 51", got)
	}
	if got := g.At(1, 2, 1); got != schem.Air {
		t.Fatalf("transparent pixel became %d", got)
	}
	if got := g.CountSolid(); got != 8*2 {
		t.Fatalf("solid %d, want 16", got)
	}
}

func TestImageToSchematic_DefaultLabel(t *testing.T) {
	out, err := ImageToSchematic(encodePNG(t, 2, 2, checker), ConvertOptions{})
	if err != nil {
		t.Fatalf("ImageToSchematic: %v", err)
	}
	s, err := schem.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Label != schem.DefaultLabel {
		t.Fatalf("label %q", s.Label)
	}
}

func TestImageToSchematic_BadImage(t *testing.T) {
	if _, err := ImageToSchematic([]byte("not an image"), DefaultConvertOptions()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDecimate(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	got := Decimate(img, 10, 0).Bounds()
	if got.Dx() != 10 || got.Dy() != 5 {
		t.Fatalf("decimated to %v", got)
	}
	if Decimate(img, 0, 0) != image.Image(img) {
		t.Fatalf("unbounded decimation must return the source image")
	}
}

func TestPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	pix, w, h := Pixels(img)
	if w != 2 || h != 1 {
		t.Fatalf("size %dx%d", w, h)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0, 1, 2, 3, 4}, pix); diff != "" {
		t.Fatalf("pixels (-want +got):\n%s", diff)
	}
}

func TestSchematicToGLB(t *testing.T) {
	out, err := ImageToSchematic(encodePNG(t, 4, 4, checker), DefaultConvertOptions())
	if err != nil {
		t.Fatalf("ImageToSchematic: %v", err)
	}
	glb, err := SchematicToGLB(out)
	if err != nil {
		t.Fatalf("SchematicToGLB: %v", err)
	}
	if len(glb) < 12 || string(glb[:4]) != "glTF" {
		t.Fatalf("output is not a GLB")
	}
}

func TestSchematicToGLB_Empty(t *testing.T) {
	out, err := schem.Convert(make([]byte, 4), 1, 1, schem.Wall)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if _, err := SchematicToGLB(out); err == nil {
		t.Fatalf("expected error for a model without blocks")
	}
}

func TestPackSchematics(t *testing.T) {
	a, err := ImageToSchematic(encodePNG(t, 3, 3, checker), DefaultConvertOptions())
	if err != nil {
		t.Fatalf("ImageToSchematic: %v", err)
	}
	b, err := ImageToSchematic(encodePNG(t, 6, 2, checker), ConvertOptions{Orientation: schem.Floor})
	if err != nil {
		t.Fatalf("ImageToSchematic: %v", err)
	}
	files := map[string][]byte{"a.bloxdschem": a, "b.bloxdschem": b}
	packed, err := PackSchematics(files, schem.LayoutCDC, schem.PackCompZstd)
	if err != nil {
		t.Fatalf("PackSchematics: %v", err)
	}
	got, err := UnpackSchematics(packed)
	if err != nil {
		t.Fatalf("UnpackSchematics: %v", err)
	}
	if diff := cmp.Diff(files, got); diff != "" {
		t.Fatalf("unpacked (-want +got):\n%s", diff)
	}

	if _, err := PackSchematics(nil, schem.LayoutRaw, schem.PackCompNone); err == nil {
		t.Fatalf("empty input must fail")
	}
	files["junk"] = []byte{1, 2, 3}
	if _, err := PackSchematics(files, schem.LayoutRaw, schem.PackCompNone); err == nil {
		t.Fatalf("non-schematic entry must fail")
	}
}

func TestFromImage_Height(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, checker(x, y))
		}
	}
	out, err := FromImage(img, ConvertOptions{Orientation: schem.Wall, Height: 4})
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	s, err := schem.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g := s.Grid; g.SizeX != 8 || g.SizeY != 4 || g.SizeZ != 2 {
		t.Fatalf("size %dx%dx%d, want 8x4x2", g.SizeX, g.SizeY, g.SizeZ)
	}
	// each source pixel becomes a 2x2 block patch; (0,0) is opaque
	for _, p := range [][2]int{{0, 3}, {1, 3}, {0, 2}, {1, 2}} {
		if got := s.Grid.At(p[0], p[1], 0); got != 51 {
			t.Fatalf("block at x=%d y=%d is %d, want 51", p[0], p[1], got)
		}
	}
	if got := s.Grid.At(2, 3, 0); got != schem.Air {
		t.Fatalf("block at x=2 y=3 is %d, want air", got)
	}
}

func TestResize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 7))
	if got := Resize(img, 2).Bounds(); got.Dx() != 1 || got.Dy() != 2 {
		t.Fatalf("resized to %v", got)
	}
	if got := Resize(img, 14).Bounds(); got.Dx() != 6 || got.Dy() != 14 {
		t.Fatalf("resized to %v", got)
	}
	if Resize(img, 0) != image.Image(img) {
		t.Fatalf("zero height must keep the source image")
	}
}

func TestFromImage_NegativeLimits(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for _, opts := range []ConvertOptions{{Height: -1}, {MaxWidth: -1}, {MaxHeight: -3}} {
		if _, err := FromImage(img, opts); !errors.Is(err, schem.ErrInvalidDimensions) {
			t.Fatalf("%+v: %v", opts, err)
		}
	}
}

func TestPixelsToSchematic(t *testing.T) {
	pix := make([]byte, 3*2*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:], []byte{0xE9, 0xEC, 0xEC, 0xFF})
	}
	out, err := PixelsToSchematic(pix, 3, 2, ConvertOptions{Orientation: schem.Floor, Height: 4})
	if err != nil {
		t.Fatalf("PixelsToSchematic: %v", err)
	}
	s, err := schem.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g := s.Grid; g.SizeX != 2 || g.SizeY != 4 || g.SizeZ != 6 || g.CountSolid() != 2*4*6 {
		t.Fatalf("size %dx%dx%d with %d solid", g.SizeX, g.SizeY, g.SizeZ, g.CountSolid())
	}

	if _, err := PixelsToSchematic(pix, 0, 2, DefaultConvertOptions()); !errors.Is(err, schem.ErrInvalidDimensions) {
		t.Fatalf("zero width: %v", err)
	}
	if _, err := PixelsToSchematic(pix, 4, 2, DefaultConvertOptions()); !errors.Is(err, schem.ErrEmptyPixelBuffer) {
		t.Fatalf("short buffer: %v", err)
	}
	if _, err := PixelsToSchematic(nil, math.MaxInt/2+1, 4, DefaultConvertOptions()); !errors.Is(err, schem.ErrEmptyPixelBuffer) {
		t.Fatalf("overflowing size: %v", err)
	}
}
