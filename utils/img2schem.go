package utils

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/voxelsplace/bloxdschem/api"
)

// RunImageToSchematic converts the image at inPath and writes the schematic to outPath.
func RunImageToSchematic(inPath, outPath string, cfg ConvertConfig) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	out, err := api.ImageToSchematic(data, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write schematic: %w", err)
	}
	color.Green("schematic saved: %s (%d bytes, %s)", outPath, len(out), opts.Orientation)
	return nil
}
