package appshell

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fptools/pkg/config"
)

// Common holds the flags shared by every command
type Common struct {
	// Input/output
	Input  string
	Output string

	// Configuration
	ConfigPath string
	InitConfig string
	Quiet      bool
	NoClobber  bool

	// Previews
	ChannelMaps string
	PlotPixel   Pixel
	PlotFile    string
	Stats       bool

	set map[string]bool
}

// Register wires the shared flags onto fs
func Register(fs *flag.FlagSet, c *Common) {
	fs.StringVar(&c.Input, "input", "", "input FITS cube")
	fs.StringVar(&c.Output, "output", "", "output FITS cube")
	fs.StringVar(&c.Input, "i", "", "alias of -input")
	fs.StringVar(&c.Output, "o", "", "alias of -output")
	fs.StringVar(&c.ConfigPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.InitConfig, "init-config", "", "write a default configuration file to this path and exit")
	fs.BoolVar(&c.Quiet, "quiet", false, "suppress diagnostics and the progress spinner")
	fs.BoolVar(&c.NoClobber, "no-clobber", false, "refuse to overwrite an existing output file")
	fs.StringVar(&c.ChannelMaps, "channel-maps", "", "directory receiving one PNG per output channel")
	fs.Var(&c.PlotPixel, "plot-pixel", "pixel x,y whose spectrum is plotted (default: mean spectrum)")
	fs.StringVar(&c.PlotFile, "plot-file", "", "write an input/output spectrum plot to this file")
	fs.BoolVar(&c.Stats, "stats", false, "print statistics of the output cube")
}

// IsSet reports whether the named flag was given on the command line
func (c *Common) IsSet(name string) bool {
	return c.set[name]
}

// Parse parses argv and validates the shared flags. On failure it prints
// the problem and usage to stderr and returns the exit code with ok=false.
func Parse(fs *flag.FlagSet, argv []string, c *Common, stderr io.Writer) (code int, ok bool) {
	fs.SetOutput(stderr)
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK, false
		}
		return ExitUsage, false
	}

	c.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })

	if c.InitConfig != "" {
		if err := config.CreateDefaultConfigFile(c.InitConfig); err != nil {
			fmt.Fprintln(stderr, err)
			return ExitFailure, false
		}
		fmt.Fprintf(stderr, "Default configuration written to %s\n", c.InitConfig)
		return ExitOK, false
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return ExitUsage, false
	}
	if c.Input == "" || c.Output == "" {
		fmt.Fprintln(stderr, "both -input and -output are required")
		fs.Usage()
		return ExitUsage, false
	}
	return ExitOK, true
}

// OptionalInt is an int flag that remembers whether it was given
type OptionalInt struct {
	value int
	set   bool
}

func (o *OptionalInt) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.Itoa(o.value)
}

func (o *OptionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	o.value, o.set = v, true
	return nil
}

// Ptr returns nil when the flag was not given
func (o *OptionalInt) Ptr() *int {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// Pixel is an "x,y" flag value
type Pixel struct {
	X, Y int
	set  bool
}

func (p *Pixel) String() string {
	if p == nil || !p.set {
		return ""
	}
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

func (p *Pixel) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fmt.Errorf("pixel must be x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid pixel x %q", parts[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid pixel y %q", parts[1])
	}
	p.X, p.Y, p.set = x, y, true
	return nil
}

// IsSet reports whether a pixel was given
func (p *Pixel) IsSet() bool {
	return p.set
}
