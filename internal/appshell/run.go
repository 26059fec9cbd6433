package appshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"fptools/internal/models"
	"fptools/pkg/config"
	"fptools/pkg/cubeio"
	"fptools/pkg/cubestats"
	"fptools/pkg/progress"
	"fptools/pkg/spectrumplot"
	"fptools/pkg/visualization"
)

// Result is the outcome of a Transform
type Result struct {
	Cube   *models.Cube
	Header *models.Header

	// OutputX places every output channel on the input channel axis; it
	// is used to overlay input and output spectra in plots.
	OutputX []float64
}

// Transform turns an input dataset into a new cube and header
type Transform func(ctx context.Context, in *cubeio.Dataset) (*Result, error)

// Job describes one command invocation
type Job struct {
	Name      string
	Transform Transform

	// Spinner shows the keep-alive indicator while Transform runs
	Spinner bool
}

// LoadConfig reads the configuration named by -config and applies the
// shared flag overrides.
func LoadConfig(c *Common) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if c.Quiet {
		cfg.Output.Verbose = false
	}
	if c.NoClobber {
		cfg.Output.Overwrite = false
	}
	if c.Stats {
		cfg.Output.Stats = true
	}
	if c.ChannelMaps != "" {
		cfg.Preview.ChannelMapsDir = c.ChannelMaps
	}
	return cfg, nil
}

// SetupLogging routes diagnostics to stderr, or discards them when verbose
// output is disabled.
func SetupLogging(name string, cfg *config.Config, stderr io.Writer) {
	log.SetFlags(0)
	log.SetPrefix(name + ": ")
	if cfg.Output.Verbose {
		log.SetOutput(stderr)
	} else {
		log.SetOutput(io.Discard)
	}
}

// Execute reads the input cube, runs the job, and writes the output cube.
// Previews and statistics are produced only after a successful write. When
// ctx is cancelled before the write no output file is written and
// ExitInterrupted is returned; once the file is written the run succeeds
// whatever happens to ctx.
func Execute(ctx context.Context, job Job, c *Common, cfg *config.Config, stdout, stderr io.Writer) int {
	if cfg.Output.Verbose {
		fmt.Fprintf(stdout, "Read data from: %s\n", c.Input)
	}

	in, err := cubeio.Read(c.Input)
	if err != nil {
		log.Printf("%v", err)
		return ExitFailure
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(stdout, "Input cube: %d channels of %dx%d pixels\n", in.Cube.Depth, in.Cube.Width, in.Cube.Height)
	}

	spinner := progress.NewSpinner(stderr, progress.DefaultInterval, job.Spinner && cfg.Output.Verbose)
	spinner.Start(ctx)
	startTime := time.Now()
	res, err := job.Transform(ctx, in)
	spinner.Stop()

	if err == nil {
		// Transforms that never look at ctx still honor an interrupt
		// received before the output is written.
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "\n\nYou pressed Ctrl+C!")
			fmt.Fprintln(stderr, "Leaving now, no output written.")
			return ExitInterrupted
		}
		log.Printf("%s failed: %v", job.Name, err)
		return ExitFailure
	}

	// the samples changed, so any stored checksums are stale
	res.Header.Delete(models.KeyChecksum)
	res.Header.Delete(models.KeyDatasum)

	out := &cubeio.Dataset{Cube: res.Cube, Header: res.Header, Bitpix: in.Bitpix}
	if err := cubeio.Write(c.Output, out, cubeio.Options{Overwrite: cfg.Output.Overwrite}); err != nil {
		log.Printf("%v", err)
		return ExitFailure
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(stdout, "Write file to: %s (%d channels, %.2f s)\n", c.Output, res.Cube.Depth, time.Since(startTime).Seconds())
	}

	if err := writePreviews(in, res, c, cfg, stdout); err != nil {
		log.Printf("Warning: %v", err)
	}

	if cfg.Output.Stats {
		fmt.Fprintf(stdout, "Output statistics: %s\n", cubestats.Summarize(res.Cube))
	}

	return ExitOK
}

func writePreviews(in *cubeio.Dataset, res *Result, c *Common, cfg *config.Config, stdout io.Writer) error {
	if dir := cfg.Preview.ChannelMapsDir; dir != "" {
		viewer := visualization.NewViewer(res.Cube)
		if err := viewer.SaveSliceSequence("z", dir); err != nil {
			return fmt.Errorf("failed to save channel maps: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(stdout, "Channel maps saved to: %s\n", dir)
		}
	}

	if c.PlotFile == "" {
		return nil
	}

	var inY, outY []float64
	title := "Mean spectrum"
	if c.PlotPixel.IsSet() {
		x, y := c.PlotPixel.X, c.PlotPixel.Y
		if x < 0 || y < 0 || x >= in.Cube.Width || y >= in.Cube.Height {
			return fmt.Errorf("plot pixel %s outside %dx%d image", c.PlotPixel.String(), in.Cube.Width, in.Cube.Height)
		}
		inY, outY = in.Cube.Spectrum(x, y), res.Cube.Spectrum(x, y)
		title = fmt.Sprintf("Pixel (%d, %d)", x, y)
	} else {
		inY, outY = cubestats.ChannelMeans(in.Cube), cubestats.ChannelMeans(res.Cube)
	}

	outX := res.OutputX
	if len(outX) != len(outY) {
		outX = spectrumplot.Channels(len(outY), 0)
	}

	err := spectrumplot.Save(c.PlotFile,
		spectrumplot.Options{Title: title, Width: cfg.Preview.PlotWidth, Height: cfg.Preview.PlotHeight},
		spectrumplot.Series{Label: "input", X: spectrumplot.Channels(len(inY), 0), Y: inY, Points: true},
		spectrumplot.Series{Label: "output", X: outX, Y: outY},
	)
	if err != nil {
		return err
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(stdout, "Spectrum plot saved to: %s\n", c.PlotFile)
	}
	return nil
}
