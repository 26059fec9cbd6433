package spectral

import "fptools/internal/models"

// normalizeIndex maps i onto [0, n] with slice semantics: negative values
// count from the end and out-of-range values are clamped.
func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
		return i
	}
	if i > n {
		return n
	}
	return i
}

// CutBounds resolves optional begin/end channel indices against depth.
// A nil begin means 0 and a nil end means depth. The result always
// satisfies 0 <= b <= e <= depth.
func CutBounds(depth int, begin, end *int) (b, e int) {
	b, e = 0, depth
	if begin != nil {
		b = normalizeIndex(*begin, depth)
	}
	if end != nil {
		e = normalizeIndex(*end, depth)
	}
	if e < b {
		e = b
	}
	return b, e
}

// Cut keeps channels [begin, end) of cube. CRPIX3 is reduced by the
// resolved begin index so the calibration of retained channels holds.
func Cut(cube *models.Cube, hdr *models.Header, begin, end *int) (*models.Cube, *models.Header) {
	b, e := CutBounds(cube.Depth, begin, end)

	out := cube.SliceZ(b, e)
	outHdr := hdr.Clone()

	if begin != nil {
		shiftReference(outHdr, -float64(b))
	}
	outHdr.AddHistory("Cube cut from z = %d to z = %d", b, e)

	return out, outHdr
}
