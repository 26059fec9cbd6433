// Package cubeio reads and writes spectral cubes stored in the primary HDU of
// a FITS file.
package cubeio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"

	"fptools/internal/models"
)

var (
	// ErrNotCube is returned when the primary HDU does not hold a 3D image
	ErrNotCube = errors.New("primary HDU is not a 3D image")

	// ErrExists is returned when the destination exists and overwriting is disabled
	ErrExists = errors.New("output file already exists")
)

// Dataset is a cube together with its calibration header
type Dataset struct {
	Cube   *models.Cube
	Header *models.Header

	// Bitpix is the BITPIX of the file the dataset was read from
	Bitpix int
}

// Options controls Write
type Options struct {
	// Overwrite replaces an existing destination file
	Overwrite bool

	// Bitpix forces the output sample type (-32 or -64). Zero selects -64
	// for datasets read as -64 and -32 otherwise.
	Bitpix int
}

// Keys owned by the FITS encoder or consumed while scaling samples
var structuralKeys = map[string]bool{
	"SIMPLE":   true,
	"BITPIX":   true,
	"NAXIS":    true,
	"EXTEND":   true,
	"BSCALE":   true,
	"BZERO":    true,
	"BLANK":    true,
	"END":      true,
	"XTENSION": true,
	"PCOUNT":   true,
	"GCOUNT":   true,
}

func isStructural(name string) bool {
	if structuralKeys[name] {
		return true
	}
	return strings.HasPrefix(name, "NAXIS")
}

const (
	blockSize  = 2880
	recordSize = 80
)

// Read loads the primary HDU of a FITS file. BSCALE and BZERO are applied so
// the returned samples are physical values, and BLANK integer samples become
// NaN. HISTORY and COMMENT cards are kept in file order.
func Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := headerRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer fits.Close()

	img, ok := fits.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotCube)
	}
	hdr := img.Header()

	width, height, depth, err := cubeShape(hdr.Axes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	raw, err := readSamples(img, hdr.Bitpix(), width*height*depth)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from %s: %w", path, err)
	}

	if hdr.Bitpix() > 0 {
		if v, ok := cardFloat(hdr, "BLANK"); ok {
			for i, s := range raw {
				if s == v {
					raw[i] = math.NaN()
				}
			}
		}
	}

	bscale, bzero := 1.0, 0.0
	if v, ok := cardFloat(hdr, "BSCALE"); ok {
		bscale = v
	}
	if v, ok := cardFloat(hdr, "BZERO"); ok {
		bzero = v
	}
	if bscale != 1 || bzero != 0 {
		for i, v := range raw {
			raw[i] = bzero + bscale*v
		}
	}

	cube, err := models.NewCubeFromData(raw, depth, height, width)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	header := models.NewHeader(headerCards(records, hdr)...)
	return &Dataset{Cube: cube, Header: header, Bitpix: hdr.Bitpix()}, nil
}

// headerRecords returns the 80-byte records of the primary header that
// precede END.
func headerRecords(r io.Reader) ([]string, error) {
	var records []string
	block := make([]byte, blockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("truncated primary header: %w", err)
		}
		for i := 0; i < blockSize; i += recordSize {
			rec := string(block[i : i+recordSize])
			if strings.TrimRight(rec, " ") == "END" {
				return records, nil
			}
			records = append(records, rec)
		}
	}
}

// headerCards rebuilds the header in file order. fitsio does not list
// commentary cards among its keys, so their text is taken from the records
// while every other value comes from the decoded header.
func headerCards(records []string, hdr *fitsio.Header) []models.Card {
	var cards []models.Card
	for _, rec := range records {
		name := strings.TrimSpace(rec[:8])
		switch name {
		case models.KeyHistory, models.KeyComment:
			cards = append(cards, models.Card{Name: name, Comment: strings.TrimRight(rec[8:], " ")})
			continue
		case "", "CONTINUE":
			continue
		case "HIERARCH":
			idx := strings.Index(rec, "=")
			if idx < 0 {
				continue
			}
			name = strings.TrimSpace(rec[len("HIERARCH "):idx])
		}
		if isStructural(name) {
			continue
		}
		card := hdr.Get(name)
		if card == nil {
			continue
		}
		cards = append(cards, models.Card{Name: card.Name, Value: card.Value, Comment: card.Comment})
	}
	return cards
}

type sample interface {
	~uint8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// readSamples decodes n samples of the image's native type as float64
func readSamples(img fitsio.Image, bitpix, n int) ([]float64, error) {
	switch bitpix {
	case 8:
		return readAs[uint8](img, n)
	case 16:
		return readAs[int16](img, n)
	case 32:
		return readAs[int32](img, n)
	case 64:
		return readAs[int64](img, n)
	case -32:
		return readAs[float32](img, n)
	case -64:
		out := make([]float64, n)
		if err := img.Read(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
}

func readAs[T sample](img fitsio.Image, n int) ([]float64, error) {
	buf := make([]T, n)
	if err := img.Read(&buf); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, v := range buf {
		out[i] = float64(v)
	}
	return out, nil
}

// cubeShape accepts NAXIS=3, or more axes when every axis past the third
// is degenerate.
func cubeShape(axes []int) (width, height, depth int, err error) {
	if len(axes) < 3 {
		return 0, 0, 0, fmt.Errorf("%w: NAXIS=%d", ErrNotCube, len(axes))
	}
	for _, n := range axes[3:] {
		if n != 1 {
			return 0, 0, 0, fmt.Errorf("%w: axes %v", ErrNotCube, axes)
		}
	}
	return axes[0], axes[1], axes[2], nil
}

func cardFloat(hdr *fitsio.Header, name string) (float64, bool) {
	card := hdr.Get(name)
	if card == nil {
		return 0, false
	}
	switch n := card.Value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Write stores ds at path. The data is first written to a temporary file in
// the destination directory and renamed into place, so path never holds a
// partial cube.
func Write(path string, ds *Dataset, opts Options) error {
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	bitpix := opts.Bitpix
	if bitpix == 0 {
		bitpix = -32
		if ds.Bitpix == -64 {
			bitpix = -64
		}
	}
	if bitpix != -32 && bitpix != -64 {
		return fmt.Errorf("unsupported output BITPIX %d", bitpix)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := encode(tmp, ds, bitpix); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	committed = true
	return nil
}

func encode(w *os.File, ds *Dataset, bitpix int) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	c := ds.Cube
	im := fitsio.NewImage(bitpix, []int{c.Width, c.Height, c.Depth})
	defer im.Close()

	var cards []fitsio.Card
	for _, card := range ds.Header.Cards() {
		if isStructural(card.Name) {
			continue
		}
		cards = append(cards, fitsio.Card{Name: card.Name, Value: card.Value, Comment: card.Comment})
	}
	if err := im.Header().Append(cards...); err != nil {
		return err
	}

	switch bitpix {
	case -64:
		err = im.Write(c.Data)
	default:
		buf := make([]float32, len(c.Data))
		for i, v := range c.Data {
			buf[i] = float32(v)
		}
		err = im.Write(buf)
	}
	if err != nil {
		return err
	}

	return fits.Write(im)
}
