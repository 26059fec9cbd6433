// Command zcut extracts a range of channels from a FITS data-cube, keeping
// every spatial pixel and the spectral calibration.
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
	fs := flag.NewFlagSet("zcut", flag.ContinueOnError)

	var common appshell.Common
	appshell.Register(fs, &common)

	var begin, end appshell.OptionalInt
	fs.Var(&begin, "begin", "first channel kept, inclusive (default: 0)")
	fs.Var(&end, "end", "last channel kept, exclusive (default: depth)")

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
	appshell.SetupLogging("zcut", cfg, stderr)

	job := appshell.Job{
		Name: "cut",
		Transform: func(ctx context.Context, in *cubeio.Dataset) (*appshell.Result, error) {
			b, _ := spectral.CutBounds(in.Cube.Depth, begin.Ptr(), end.Ptr())
			cube, hdr := spectral.Cut(in.Cube, in.Header, begin.Ptr(), end.Ptr())
			return &appshell.Result{
				Cube:    cube,
				Header:  hdr,
				OutputX: spectrumplot.Channels(cube.Depth, float64(b)),
			}, nil
		},
	}

	return appshell.Execute(ctx, job, &common, cfg, stdout, stderr)
}
