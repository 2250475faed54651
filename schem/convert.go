package schem

// Convert turns a row-major RGBA buffer into a schematic labelled DefaultLabel.
func Convert(pix []byte, width, height int, o Orientation) ([]byte, error) {
	return ConvertLabeled(pix, width, height, o, DefaultLabel)
}

// ConvertLabeled is Convert with a caller-chosen model label.
func ConvertLabeled(pix []byte, width, height int, o Orientation, label string) ([]byte, error) {
	grid, err := BuildGrid(pix, width, height, o)
	if err != nil {
		return nil, err
	}
	return Serialize(grid, label)
}
