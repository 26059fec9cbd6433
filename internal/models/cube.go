package models

import "fmt"

// Cube represents a spectral data-cube held in memory
type Cube struct {
	// Data is the 3D cube data as a 1D array in row-major order,
	// index z*Width*Height + y*Width + x (FITS NAXIS1 varies fastest)
	Data []float64

	// Width is the number of columns (NAXIS1)
	Width int

	// Height is the number of rows (NAXIS2)
	Height int

	// Depth is the number of spectral channels (NAXIS3)
	Depth int
}

// NewCube allocates a zero-filled cube with the given dimensions
func NewCube(depth, height, width int) *Cube {
	if depth < 0 {
		depth = 0
	}
	return &Cube{
		Data:   make([]float64, depth*height*width),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// NewCubeFromData wraps an existing flat array. The length of data must
// equal depth*height*width.
func NewCubeFromData(data []float64, depth, height, width int) (*Cube, error) {
	if len(data) != depth*height*width {
		return nil, fmt.Errorf("data length %d does not match shape (%d, %d, %d)",
			len(data), depth, height, width)
	}
	return &Cube{Data: data, Width: width, Height: height, Depth: depth}, nil
}

// Shape returns the (depth, height, width) triple
func (c *Cube) Shape() (int, int, int) {
	return c.Depth, c.Height, c.Width
}

// PlaneSize is the number of samples in one spectral channel
func (c *Cube) PlaneSize() int {
	return c.Width * c.Height
}

func (c *Cube) index(z, y, x int) int {
	return z*c.Width*c.Height + y*c.Width + x
}

// At returns the sample at (z, y, x)
func (c *Cube) At(z, y, x int) float64 {
	return c.Data[c.index(z, y, x)]
}

// Set stores v at (z, y, x)
func (c *Cube) Set(z, y, x int, v float64) {
	c.Data[c.index(z, y, x)] = v
}

// Spectrum copies the z profile of pixel (x, y) into a new slice
func (c *Cube) Spectrum(x, y int) []float64 {
	s := make([]float64, c.Depth)
	for z := range s {
		s[z] = c.Data[c.index(z, y, x)]
	}
	return s
}

// SetSpectrum writes s along the z axis of pixel (x, y). Only the first
// min(len(s), Depth) channels are written.
func (c *Cube) SetSpectrum(x, y int, s []float64) {
	n := len(s)
	if n > c.Depth {
		n = c.Depth
	}
	for z := 0; z < n; z++ {
		c.Data[c.index(z, y, x)] = s[z]
	}
}

// Plane returns the samples of channel z. The returned slice aliases the
// cube data.
func (c *Cube) Plane(z int) []float64 {
	size := c.PlaneSize()
	return c.Data[z*size : (z+1)*size]
}

// SliceZ returns a copy of channels [begin, end). Bounds must already be
// normalized to 0 <= begin <= end <= Depth.
func (c *Cube) SliceZ(begin, end int) *Cube {
	size := c.PlaneSize()
	out := NewCube(end-begin, c.Height, c.Width)
	copy(out.Data, c.Data[begin*size:end*size])
	return out
}

// Clone returns a deep copy of the cube
func (c *Cube) Clone() *Cube {
	out := NewCube(c.Depth, c.Height, c.Width)
	copy(out.Data, c.Data)
	return out
}
