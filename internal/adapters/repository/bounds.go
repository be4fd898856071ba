package repository

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/touchgest/internal/domain/model"
)

// ParseBounds reads the two-line calibration format:
//
//	<min x> <max x>  # X dimensions
//	<min y> <max y>  # Y dimensions
//
// Anything after '#' is ignored. Bounds that are not a proper rectangle are
// reported as ErrMalformed.
func ParseBounds(r io.Reader) (model.Bounds, error) {
	var axes [2][2]float64

	sc := bufio.NewScanner(r)
	for i := range axes {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return model.Bounds{}, err
			}
			return model.Bounds{}, fmt.Errorf("%w: expected 2 lines, got %d", ErrMalformed, i)
		}
		line, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return model.Bounds{}, fmt.Errorf("%w: line %d: expected 2 numbers", ErrMalformed, i+1)
		}
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return model.Bounds{}, fmt.Errorf("%w: line %d: %w", ErrMalformed, i+1, err)
			}
			axes[i][j] = v
		}
	}

	b := model.Bounds{
		Min: model.Point{X: axes[0][0], Y: axes[1][0]},
		Max: model.Point{X: axes[0][1], Y: axes[1][1]},
	}
	if !b.Valid() {
		return model.Bounds{}, fmt.Errorf("%w: %w", ErrMalformed, ErrInvalidBounds)
	}
	return b, nil
}

// FormatBounds writes b in the format read by ParseBounds.
func FormatBounds(w io.Writer, b model.Bounds) error {
	_, err := fmt.Fprintf(w, "%s %s  # X dimensions\n%s %s  # Y dimensions\n",
		formatFloat(b.Min.X), formatFloat(b.Max.X),
		formatFloat(b.Min.Y), formatFloat(b.Max.Y))
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
