package models

import (
	"errors"
	"testing"
)

// createRampCube fills a cube with value z*100 + y*10 + x
func createRampCube(depth, height, width int) *Cube {
	c := NewCube(depth, height, width)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c.Set(z, y, x, float64(z*100+y*10+x))
			}
		}
	}
	return c
}

func TestNewCube(t *testing.T) {
	c := NewCube(4, 3, 2)
	d, h, w := c.Shape()
	if d != 4 || h != 3 || w != 2 {
		t.Errorf("Expected shape (4, 3, 2), got (%d, %d, %d)", d, h, w)
	}
	if len(c.Data) != 24 {
		t.Errorf("Expected 24 samples, got %d", len(c.Data))
	}

	if _, err := NewCubeFromData(make([]float64, 5), 2, 2, 2); err == nil {
		t.Error("Expected error for mismatched data length, got nil")
	}
}

func TestCubeLayout(t *testing.T) {
	c := createRampCube(3, 2, 4)

	// x varies fastest, then y, then z
	if c.Data[1] != 1 {
		t.Errorf("Expected Data[1] to be (z=0,y=0,x=1), got %f", c.Data[1])
	}
	if c.Data[4] != 10 {
		t.Errorf("Expected Data[4] to be (z=0,y=1,x=0), got %f", c.Data[4])
	}
	if c.Data[8] != 100 {
		t.Errorf("Expected Data[8] to be (z=1,y=0,x=0), got %f", c.Data[8])
	}

	plane := c.Plane(2)
	if len(plane) != 8 || plane[0] != 200 || plane[7] != 213 {
		t.Errorf("Unexpected plane 2: %v", plane)
	}
}

func TestSpectrum(t *testing.T) {
	c := createRampCube(5, 2, 3)

	s := c.Spectrum(2, 1)
	for z, v := range s {
		if want := float64(z*100 + 12); v != want {
			t.Errorf("Spectrum[%d]: expected %f, got %f", z, want, v)
		}
	}

	c.SetSpectrum(0, 0, []float64{-1, -2, -3, -4, -5, -6})
	for z := 0; z < 5; z++ {
		if got := c.At(z, 0, 0); got != float64(-(z + 1)) {
			t.Errorf("SetSpectrum z=%d: got %f", z, got)
		}
	}
}

func TestSliceZAndClone(t *testing.T) {
	c := createRampCube(6, 2, 2)

	sub := c.SliceZ(2, 5)
	if sub.Depth != 3 {
		t.Fatalf("Expected depth 3, got %d", sub.Depth)
	}
	if sub.At(0, 1, 1) != c.At(2, 1, 1) {
		t.Errorf("SliceZ mismatch: %f vs %f", sub.At(0, 1, 1), c.At(2, 1, 1))
	}

	sub.Set(0, 0, 0, -1)
	if c.At(2, 0, 0) == -1 {
		t.Error("SliceZ must not alias the source cube")
	}

	empty := c.SliceZ(3, 3)
	if empty.Depth != 0 || len(empty.Data) != 0 {
		t.Errorf("Expected empty cube, got depth %d", empty.Depth)
	}

	cl := c.Clone()
	if cl.Width != c.Width || cl.Height != c.Height || cl.Depth != c.Depth {
		t.Error("Clone changed shape")
	}
	cl.Data[0] = 42
	if c.Data[0] == 42 {
		t.Error("Clone must not alias the source cube")
	}
}

func TestHeaderOrderAndReplace(t *testing.T) {
	h := NewHeader(
		Card{Name: "OBJECT", Value: "M51"},
		Card{Name: "crpix3", Value: 12.0},
		Card{Name: "CDELT3", Value: 0.5, Comment: "step"},
	)

	h.Set(KeyCRPIX3, 10.0)
	h.Append(Card{Name: "OBJECT", Value: "M82"})
	h.AddHistory("first")
	h.AddHistory("second %d", 2)

	cards := h.Cards()
	if len(cards) != 5 {
		t.Fatalf("Expected 5 cards, got %d", len(cards))
	}
	if cards[0].Value != "M82" {
		t.Errorf("Expected OBJECT replaced in place, got %v", cards[0].Value)
	}
	if cards[1].Name != KeyCRPIX3 || cards[1].Value != 10.0 {
		t.Errorf("Expected CRPIX3=10 at index 1, got %v", cards[1])
	}

	h.Set(KeyCDELT3, 0.25)
	c, _ := h.Get(KeyCDELT3)
	if c.Comment != "step" {
		t.Errorf("Set should keep the comment, got %q", c.Comment)
	}

	hist := h.History()
	if len(hist) != 2 || hist[1] != "second 2" {
		t.Errorf("Unexpected history: %v", hist)
	}
}

func TestHeaderFloat(t *testing.T) {
	h := NewHeader(
		Card{Name: "NAXIS3", Value: 48},
		Card{Name: "CDELT3", Value: 0.125},
		Card{Name: "CTYPE3", Value: "WAVE"},
	)

	if v, err := h.Float("NAXIS3"); err != nil || v != 48 {
		t.Errorf("Expected 48, got %f (%v)", v, err)
	}
	if v, err := h.Float("cdelt3"); err != nil || v != 0.125 {
		t.Errorf("Expected 0.125, got %f (%v)", v, err)
	}
	if _, err := h.Float("CTYPE3"); err == nil {
		t.Error("Expected error for string value")
	}

	_, err := h.Float("PHMSAMP")
	var missing *MissingKeyError
	if !errors.As(err, &missing) || missing.Key != "PHMSAMP" {
		t.Errorf("Expected MissingKeyError for PHMSAMP, got %v", err)
	}
}

func TestHeaderCloneAndDelete(t *testing.T) {
	h := NewHeader(Card{Name: "A", Value: 1}, Card{Name: "B", Value: 2})
	cl := h.Clone()
	cl.Set("A", 3)
	cl.Delete("B")

	if v, _ := h.Float("A"); v != 1 {
		t.Errorf("Clone must not alias the source header, got A=%f", v)
	}
	if !h.Has("B") || cl.Has("B") {
		t.Error("Delete affected the wrong header")
	}
	if cl.Len() != 1 {
		t.Errorf("Expected 1 card after delete, got %d", cl.Len())
	}
}
