package schem

import "errors"

var (
	// ErrInvalidDimensions is returned when the image width or height is not positive.
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	// ErrEmptyPixelBuffer is returned when the pixel buffer is not width*height*4 bytes.
	ErrEmptyPixelBuffer = errors.New("pixel buffer does not match dimensions")
	// ErrInvalidOrientation is returned for an Orientation outside Wall/Floor.
	ErrInvalidOrientation = errors.New("invalid orientation")
	// ErrEncoding marks a broken internal invariant while building or
	// serializing a grid. It indicates a defect, not bad input.
	ErrEncoding = errors.New("schematic encoding failure")
	// ErrMalformed is returned by the decoders for input that does not follow the format.
	ErrMalformed = errors.New("malformed schematic data")
)
