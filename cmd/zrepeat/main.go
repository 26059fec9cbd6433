// Command zrepeat tiles a FITS data-cube along the spectral axis, adding
// whole copies of the cube before and after it. It is used to extend a
// Fabry-Perot cube that covers exactly one free spectral range.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"fptools/internal/appshell"
	"fptools/pkg/cubeio"
	"fptools/pkg/spectral"
	"fptools/pkg/spectrumplot"
)

func main() {
	appshell.Main(run)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("zrepeat", flag.ContinueOnError)

	var common appshell.Common
	appshell.Register(fs, &common)

	before := fs.Int("before", 0, "copies added at the beginning of the cube")
	after := fs.Int("after", 0, "copies added at the end of the cube")

	if code, ok := appshell.Parse(fs, argv, &common, stderr); !ok {
		return code
	}

	cfg, err := appshell.LoadConfig(&common)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return appshell.ExitUsage
	}
	appshell.SetupLogging("zrepeat", cfg, stderr)

	if cfg.Output.Verbose {
		fmt.Fprintf(stdout, "Add %d FSR at the beginning of the cube\n", *before)
		fmt.Fprintf(stdout, "Add %d FSR at the end of the cube\n", *after)
	}

	job := appshell.Job{
		Name: "repeat",
		Transform: func(ctx context.Context, in *cubeio.Dataset) (*appshell.Result, error) {
			cube, hdr := spectral.Repeat(in.Cube, in.Header, *before, *after)
			n := *before
			if n < 0 {
				n = 0
			}
			return &appshell.Result{
				Cube:    cube,
				Header:  hdr,
				OutputX: spectrumplot.Channels(cube.Depth, -float64(n*in.Cube.Depth)),
			}, nil
		},
	}

	return appshell.Execute(ctx, job, &common, cfg, stdout, stderr)
}
