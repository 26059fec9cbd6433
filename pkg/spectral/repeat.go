package spectral

import "fptools/internal/models"

// Repeat concatenates before copies of cube, the cube itself and after
// copies along the spectral axis. Negative counts are treated as zero.
// CRPIX3 moves by before*depth so it still points at the original
// reference channel.
func Repeat(cube *models.Cube, hdr *models.Header, before, after int) (*models.Cube, *models.Header) {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	copies := 1 + before + after
	out := models.NewCube(cube.Depth*copies, cube.Height, cube.Width)
	block := len(cube.Data)
	for i := 0; i < copies; i++ {
		copy(out.Data[i*block:(i+1)*block], cube.Data)
	}

	outHdr := hdr.Clone()
	if before > 0 {
		shiftReference(outHdr, float64(before*cube.Depth))
		outHdr.AddHistory("Added %d cube copies at the beginning.", before)
	}
	if after > 0 {
		outHdr.AddHistory("Added %d cube copies at the end.", after)
	}

	return out, outHdr
}
