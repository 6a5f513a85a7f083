// Package report writes detected pool polygons as a plain-text coordinate
// listing.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ironsheep/pool-detect/internal/detection"
)

const (
	// Title is the first line of every report.
	Title = "Detected Swimming Pool Boundary Coordinates"
	// NoPools replaces the pool sections when nothing was detected.
	NoPools = "No pools detected."
)

// Format writes the report for polygons to w. Pools are numbered from 1 in
// the order given; each section lists one "x, y" pair per line and is
// followed by a blank line.
func Format(w io.Writer, polygons []detection.Polygon) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, Title)
	fmt.Fprintln(bw, strings.Repeat("=", 42))
	fmt.Fprintln(bw)

	if len(polygons) == 0 {
		fmt.Fprintln(bw, NoPools)
	}
	for i, p := range polygons {
		fmt.Fprintf(bw, "--- Pool %d  (%d points) ---\n", i+1, len(p))
		for _, pt := range p {
			fmt.Fprintf(bw, "%d, %d\n", pt.X, pt.Y)
		}
		fmt.Fprintln(bw)
	}

	// bufio.Writer keeps the first write error and reports it here.
	return errors.Wrap(bw.Flush(), "failed to write coordinates")
}

// WriteCoordinates writes the report to path, creating parent directories
// as needed and replacing any existing file.
func WriteCoordinates(path string, polygons []detection.Polygon) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	return Format(f, polygons)
}
