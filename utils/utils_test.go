package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/voxelsplace/bloxdschem/schem"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetNRGBA(x, y, color.NRGBA{R: 8, G: 10, B: 15, A: 0xFF})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("orientation: floor\nheight: 48\nmax_width: 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := ConvertConfig{Orientation: "floor", Label: schem.DefaultLabel, Height: 48, MaxWidth: 64}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Orientation != schem.Floor || opts.Height != 48 || opts.MaxWidth != 64 || opts.MaxHeight != 0 {
		t.Fatalf("options %+v", opts)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"orientation": "orientation: ceiling\n",
		"negative":    "max_height: -1\n",
		"height":      "height: -8\n",
		"syntax":      "orientation: [wall\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("missing file: expected error")
	}
}

func TestRunImageToSchematicAndInfo(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.bloxdschem")
	writePNG(t, in, 8, 4)

	cfg := DefaultConfig()
	cfg.Label = "half"
	if err := RunImageToSchematic(in, out, cfg); err != nil {
		t.Fatalf("RunImageToSchematic: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	s, err := schem.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := BlockHistogram(s.Grid); !cmp.Equal(got, []BlockCount{{ID: 86, Count: 4 * 4 * 2}}) {
		t.Fatalf("histogram %v", got)
	}

	var buf bytes.Buffer
	if err := RunInfo(out, &buf); err != nil {
		t.Fatalf("RunInfo: %v", err)
	}
	for _, want := range []string{`"half"`, "8 x 4 x 2", "32 solid", "Black Concrete"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("info output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestBlockHistogram_Order(t *testing.T) {
	g := schem.NewVoxelGrid(4, 1, 1)
	g.Blocks = []uint8{60, 55, 0, 55}
	want := []BlockCount{{ID: 55, Count: 2}, {ID: 60, Count: 1}}
	if diff := cmp.Diff(want, BlockHistogram(g)); diff != "" {
		t.Fatalf("histogram (-want +got):\n%s", diff)
	}
}

func TestRunPalette(t *testing.T) {
	var buf bytes.Buffer
	RunPalette(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 32 {
		t.Fatalf("%d palette lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], " 51  #e9ecec") {
		t.Fatalf("first line %q", lines[0])
	}
}

func TestPackRoundtrip(t *testing.T) {
	dir := t.TempDir()
	if err := RunGenerateNoise(12, 9, 20, 60, 3, dir); err != nil {
		t.Fatalf("RunGenerateNoise: %v", err)
	}
	var inputs []string
	want := map[string][]byte{}
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, []string{"0", "1", "2"}[i]+".bloxdschem")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("noise output: %v", err)
		}
		if _, err := schem.Decode(data); err != nil {
			t.Fatalf("noise output %s: %v", path, err)
		}
		inputs = append(inputs, path)
		want[filepath.Base(path)] = data
	}

	packPath := filepath.Join(dir, "all.schempack")
	if err := CreatePack(inputs, packPath); err != nil {
		t.Fatalf("CreatePack: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	if err := UnpackToDir(packPath, outDir); err != nil {
		t.Fatalf("UnpackToDir: %v", err)
	}
	for name, data := range want {
		got, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("unpacked %s: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("%s differs after unpack", name)
		}
	}
}

func TestCreatePack_RejectsNonSchematic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.bloxdschem")
	if err := os.WriteFile(path, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CreatePack([]string{path}, filepath.Join(dir, "p")); err == nil {
		t.Fatalf("expected error")
	}
	if err := CreatePack(nil, filepath.Join(dir, "p")); err == nil {
		t.Fatalf("expected error for no inputs")
	}
}

func TestNoiseImage(t *testing.T) {
	pix := noiseImage(10, 10, 25, rand.New(rand.NewSource(1)))
	opaque := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] == 0xFF {
			opaque++
		}
	}
	if opaque != 25 {
		t.Fatalf("%d opaque pixels, want 25", opaque)
	}
}

func TestUnpackToDir_RejectsCollidingNames(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]schem.PackEntry{
		"same base": {{Name: "a/x.bloxdschem", Data: []byte{1}}, {Name: "b/x.bloxdschem", Data: []byte{2}}},
		"parent":    {{Name: "..", Data: []byte{1}}},
		"root":      {{Name: "/", Data: []byte{1}}},
	}
	for name, entries := range cases {
		data, err := (&schem.Pack{Entries: entries}).Marshal(schem.PackCompNone)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", name, err)
		}
		packPath := filepath.Join(dir, "bad.schempack")
		if err := os.WriteFile(packPath, data, 0o644); err != nil {
			t.Fatal(err)
		}
		if err := UnpackToDir(packPath, filepath.Join(dir, "out")); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
