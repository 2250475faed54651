package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/bloxdschem/api"
	"github.com/voxelsplace/bloxdschem/schem"
)

// RunSchematicToGLB writes a greedy-meshed GLB preview of a schematic file.
func RunSchematicToGLB(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	s, err := schem.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	name := s.Label
	if name == "" {
		name = filepath.Base(inPath)
	}
	doc, err := api.GridToGLBDocument(s.Grid, name)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(doc, outPath)
}
