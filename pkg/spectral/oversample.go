package spectral

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"gonum.org/v1/gonum/interp"

	"fptools/internal/models"
)

// ErrInvalidFactor is returned for an oversample factor below one
var ErrInvalidFactor = errors.New("oversample factor must be at least 1")

// Grid selects where the oversampled channels fall on the original axis
type Grid int

const (
	// GridCalibrated places new channel k at original index k/factor, which
	// matches the rescaled CDELT3 exactly.
	GridCalibrated Grid = iota

	// GridSpan spreads the new channels evenly over [0, depth], endpoints
	// included.
	GridSpan
)

// ParseGrid converts a configuration name into a Grid
func ParseGrid(name string) (Grid, error) {
	switch name {
	case "", "calibrated":
		return GridCalibrated, nil
	case "span":
		return GridSpan, nil
	}
	return 0, fmt.Errorf("unknown sampling grid %q", name)
}

func (g Grid) String() string {
	if g == GridSpan {
		return "span"
	}
	return "calibrated"
}

// OversampleParams holds the oversampling configuration
type OversampleParams struct {
	// Factor is the number of output channels per input channel
	Factor int

	// Workers is the number of goroutines resampling pixels. Values below
	// one fall back to a single worker.
	Workers int

	// Grid selects the sampling positions
	Grid Grid

	// Progress, when set, is called from the collecting goroutine after
	// each pixel completes
	Progress func(done, total int)
}

// SamplePositions returns the depth*factor positions, in units of original
// channel index, at which an oversampled spectrum is evaluated.
func SamplePositions(depth, factor int, grid Grid) []float64 {
	n := depth * factor
	pos := make([]float64, n)
	switch grid {
	case GridSpan:
		if n == 1 {
			return pos
		}
		step := float64(depth) / float64(n-1)
		for k := range pos {
			pos[k] = float64(k) * step
		}
	default:
		for k := range pos {
			pos[k] = float64(k) / float64(factor)
		}
	}
	return pos
}

// resampler evaluates spectra at fixed positions. Each worker owns one.
type resampler struct {
	xs        []float64
	positions []float64
	pl        interp.PiecewiseLinear
}

func newResampler(depth int, positions []float64) *resampler {
	xs := make([]float64, depth)
	for i := range xs {
		xs[i] = float64(i)
	}
	return &resampler{xs: xs, positions: positions}
}

// resample interpolates s at the resampler positions. Positions outside
// [0, len(s)-1] take the nearest endpoint value.
func (r *resampler) resample(s []float64) ([]float64, error) {
	out := make([]float64, len(r.positions))
	switch len(s) {
	case 0:
		return out, nil
	case 1:
		for k := range out {
			out[k] = s[0]
		}
		return out, nil
	}

	if err := r.pl.Fit(r.xs, s); err != nil {
		return nil, err
	}
	for k, x := range r.positions {
		out[k] = r.pl.Predict(x)
	}
	return out, nil
}

// Resample interpolates one spectrum at the given positions
func Resample(s, positions []float64) ([]float64, error) {
	return newResampler(len(s), positions).resample(s)
}

// Oversample interpolates every pixel spectrum of cube onto depth*factor
// channels. Pixels are spread across a fixed pool of workers and the
// results are placed back by submission index, so the output layout does
// not depend on completion order.
//
// Cancelling ctx stops dispatch and returns ctx.Err() without a result.
func Oversample(ctx context.Context, cube *models.Cube, hdr *models.Header, params OversampleParams) (*models.Cube, *models.Header, error) {
	if params.Factor < 1 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidFactor, params.Factor)
	}
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}

	depth, height, width := cube.Shape()
	newDepth := depth * params.Factor
	positions := SamplePositions(depth, params.Factor, params.Grid)

	type pixelJob struct {
		index int
		x, y  int
	}
	type pixelResult struct {
		index    int
		spectrum []float64
		err      error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan pixelJob, workers*2)
	results := make(chan pixelResult, workers*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := newResampler(depth, positions)
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					s, err := r.resample(cube.Spectrum(j.x, j.y))
					select {
					case results <- pixelResult{index: j.index, spectrum: s, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Dispatch in (x, y) order, x outermost
	go func() {
		defer close(jobs)
		index := 0
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				select {
				case jobs <- pixelJob{index: index, x: x, y: y}:
				case <-ctx.Done():
					return
				}
				index++
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect
	total := width * height
	spectra := make([][]float64, total)
	completed := 0
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("pixel %d: %w", res.index, res.err)
				cancel()
			}
			continue
		}
		spectra[res.index] = res.spectrum
		completed++
		if params.Progress != nil {
			params.Progress(completed, total)
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	if completed < total {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("oversample: collected %d of %d pixels", completed, total)
	}

	// Reassemble into (z, y, x)
	out := models.NewCube(newDepth, height, width)
	for index, s := range spectra {
		out.SetSpectrum(index/height, index%height, s)
	}

	outHdr := hdr.Clone()
	for _, key := range FixOversampleHeader(outHdr, params.Factor) {
		log.Printf(" %s key is not present in the header.", key)
	}
	outHdr.AddHistory("Cube oversampled by a factor of %d (%s grid)", params.Factor, params.Grid)

	return out, outHdr, nil
}
