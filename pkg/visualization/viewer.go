package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"fptools/internal/models"
)

// Viewer renders planes of a data-cube as 16-bit grayscale images. Sample
// values are stretched linearly between the cube minimum and maximum; NaN
// samples are drawn black.
type Viewer struct {
	cube *models.Cube

	// display range
	min, max float64
}

// NewViewer creates a viewer stretched to the finite range of cube
func NewViewer(cube *models.Cube) *Viewer {
	lo, hi := finiteRange(cube.Data)
	return NewViewerWithRange(cube, lo, hi)
}

// NewViewerWithRange creates a viewer with an explicit display range
func NewViewerWithRange(cube *models.Cube, min, max float64) *Viewer {
	return &Viewer{cube: cube, min: min, max: max}
}

func finiteRange(data []float64) (float64, float64) {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 1
	}
	return floats.Min(finite), floats.Max(finite)
}

// gray maps a sample onto the display range
func (v *Viewer) gray(value float64) color.Gray16 {
	if math.IsNaN(value) {
		return color.Gray16{}
	}
	span := v.max - v.min
	if span <= 0 {
		return color.Gray16{Y: 32768}
	}
	t := (value - v.min) / span
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, t*65535)))}
}

// ExtractSlice extracts a 2D plane from the cube along the specified axis.
// Axis "z" yields a channel map (x right, y up as in FITS viewers), "x" a
// y-z plane and "y" an x-z plane.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	c := v.cube
	var img *image.Gray16

	switch axis {
	case "x", "X":
		if position >= c.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, c.Width)
		}
		img = image.NewGray16(image.Rect(0, 0, c.Depth, c.Height))
		for y := 0; y < c.Height; y++ {
			for z := 0; z < c.Depth; z++ {
				img.SetGray16(z, c.Height-1-y, v.gray(c.At(z, y, position)))
			}
		}

	case "y", "Y":
		if position >= c.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, c.Height)
		}
		img = image.NewGray16(image.Rect(0, 0, c.Width, c.Depth))
		for z := 0; z < c.Depth; z++ {
			for x := 0; x < c.Width; x++ {
				img.SetGray16(x, z, v.gray(c.At(z, position, x)))
			}
		}

	case "z", "Z":
		if position >= c.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, c.Depth)
		}
		img = image.NewGray16(image.Rect(0, 0, c.Width, c.Height))
		for y := 0; y < c.Height; y++ {
			for x := 0; x < c.Width; x++ {
				img.SetGray16(x, c.Height-1-y, v.gray(c.At(position, y, x)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted plane as a PNG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence extracts and saves every plane along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.cube.Width
	case "y", "Y":
		maxPos = v.cube.Height
	case "z", "Z":
		maxPos = v.cube.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
