package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fptools/internal/appshell"
	"fptools/internal/models"
	"fptools/pkg/cubeio"
)

func writeCube(t *testing.T, path string, depth, height, width int) *models.Cube {
	t.Helper()
	cube := models.NewCube(depth, height, width)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				cube.Set(z, y, x, float64(z*z)+float64(x-y))
			}
		}
	}
	hdr := models.NewHeader(
		models.Card{Name: models.KeyCRPIX3, Value: 3.0},
		models.Card{Name: models.KeyCDELT3, Value: 0.6},
		models.Card{Name: models.KeyPHMSAMP, Value: 1.2},
	)
	ds := &cubeio.Dataset{Cube: cube, Header: hdr, Bitpix: -64}
	require.NoError(t, cubeio.Write(path, ds, cubeio.Options{Overwrite: true}))
	return cube
}

func headerFloat(t *testing.T, h *models.Header, key string) float64 {
	t.Helper()
	v, err := h.Float(key)
	require.NoError(t, err)
	return v
}

func TestRunOversample(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fits")
	out := filepath.Join(dir, "out.fits")
	cube := writeCube(t, in, 10, 2, 2)

	var stdout, stderr bytes.Buffer
	argv := []string{"-input", in, "-output", out, "-factor", "2", "-workers", "3", "-quiet"}
	code := run(context.Background(), argv, &stdout, &stderr)
	require.Equal(t, appshell.ExitOK, code, stderr.String())

	ds, err := cubeio.Read(out)
	require.NoError(t, err)
	d, h, w := ds.Cube.Shape()
	assert.Equal(t, [3]int{20, 2, 2}, [3]int{d, h, w})

	for z := 0; z < 10; z++ {
		assert.InDelta(t, cube.At(z, 1, 0), ds.Cube.At(2*z, 1, 0), 1e-9)
	}
	// midpoint between z=2 (4) and z=3 (9) for pixel x=y
	assert.InDelta(t, 6.5, ds.Cube.At(5, 0, 0), 1e-9)

	assert.Equal(t, 6.0, headerFloat(t, ds.Header, models.KeyCRPIX3))
	assert.InDelta(t, 0.3, headerFloat(t, ds.Header, models.KeyCDELT3), 1e-12)
	assert.InDelta(t, 0.6, headerFloat(t, ds.Header, models.KeyPHMSAMP), 1e-12)
	assert.False(t, ds.Header.Has(models.KeyC3_3))
}

func TestRunOversampleInterrupted(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fits")
	out := filepath.Join(dir, "out.fits")
	writeCube(t, in, 8, 64, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-i", in, "-o", out, "-factor", "3"}, &stdout, &stderr)
	assert.Equal(t, appshell.ExitInterrupted, code)
	assert.Contains(t, stderr.String(), "You pressed Ctrl+C!")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunOversampleUsage(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"missing factor", []string{"-i", "a.fits", "-o", "b.fits"}},
		{"zero factor", []string{"-i", "a.fits", "-o", "b.fits", "-factor", "0"}},
		{"zero workers", []string{"-i", "a.fits", "-o", "b.fits", "-factor", "2", "-workers", "0"}},
		{"bad grid", []string{"-i", "a.fits", "-o", "b.fits", "-factor", "2", "-grid", "cubic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := run(context.Background(), tt.argv, &bytes.Buffer{}, &bytes.Buffer{})
			assert.Equal(t, appshell.ExitUsage, code)
		})
	}
}

func TestRunOversampleConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fits")
	out := filepath.Join(dir, "out.fits")
	cfgPath := filepath.Join(dir, "fptools.yaml")
	writeCube(t, in, 5, 1, 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte("processing:\n  workers: 2\n  grid: span\noutput:\n  verbose: false\n"), 0644))

	code := run(context.Background(), []string{"-i", in, "-o", out, "-factor", "2", "-config", cfgPath}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Equal(t, appshell.ExitOK, code)

	ds, err := cubeio.Read(out)
	require.NoError(t, err)
	require.Equal(t, 10, ds.Cube.Depth)
	// the span grid ends on the last original channel value
	assert.InDelta(t, 16.0, ds.Cube.At(9, 0, 0), 1e-9)
	assert.Contains(t, ds.Header.History(), "Cube oversampled by a factor of 2 (span grid)")
}
