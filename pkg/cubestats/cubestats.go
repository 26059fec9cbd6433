// Package cubestats summarizes the sample distribution of a data-cube.
package cubestats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fptools/internal/models"
)

// Summary holds statistics over the finite samples of a cube
type Summary struct {
	Depth, Height, Width int

	// Count is the number of finite samples, Blank the number of NaN or
	// infinite ones
	Count int
	Blank int

	Min, Max float64
	Mean     float64
	StdDev   float64
	Median   float64
}

// Summarize computes the statistics of cube. A cube without finite samples
// yields NaN for every moment.
func Summarize(cube *models.Cube) Summary {
	s := Summary{Depth: cube.Depth, Height: cube.Height, Width: cube.Width}

	finite := make([]float64, 0, len(cube.Data))
	for _, v := range cube.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.Blank++
			continue
		}
		finite = append(finite, v)
	}
	s.Count = len(finite)

	if s.Count == 0 {
		nan := math.NaN()
		s.Min, s.Max, s.Mean, s.StdDev, s.Median = nan, nan, nan, nan, nan
		return s
	}

	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	if s.Count == 1 {
		s.Mean, s.StdDev = finite[0], 0
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	}

	sort.Float64s(finite)
	s.Median = stat.Quantile(0.5, stat.Empirical, finite, nil)

	return s
}

// ChannelMeans returns the mean of each channel, skipping non-finite samples
func ChannelMeans(cube *models.Cube) []float64 {
	means := make([]float64, cube.Depth)
	for z := range means {
		plane := cube.Plane(z)
		finite := make([]float64, 0, len(plane))
		for _, v := range plane {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				finite = append(finite, v)
			}
		}
		if len(finite) == 0 {
			means[z] = math.NaN()
			continue
		}
		means[z] = stat.Mean(finite, nil)
	}
	return means
}

func (s Summary) String() string {
	return fmt.Sprintf("shape=(%d, %d, %d) finite=%d blank=%d min=%.6g max=%.6g mean=%.6g std=%.6g median=%.6g",
		s.Depth, s.Height, s.Width, s.Count, s.Blank, s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}
