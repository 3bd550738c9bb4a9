// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/scattermul/matrix"
	"github.com/muesli/termenv"
)

// Printer renders matrices as a "<name> (<rows>x<cols>):" header followed by
// one line of space-separated entries per row. The header is bold when the
// output supports it and plain otherwise.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter returns a Printer writing to w. The terminal profile is detected
// from w unless overridden with termenv.WithProfile.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w, opts...)}
}

// Print writes m under the given name.
func (p *Printer) Print(name string, m *matrix.Dense) error {
	if m == nil {
		return fmt.Errorf("Print(%s): %w", name, matrix.ErrNilMatrix)
	}

	header := fmt.Sprintf("%s (%dx%d):", name, m.Rows(), m.Cols())
	if _, err := fmt.Fprintln(p.w, p.out.String(header).Bold()); err != nil {
		return err
	}

	var sb strings.Builder
	vals := m.Values()
	for i := 0; i < m.Rows(); i++ {
		sb.Reset()
		for j, v := range vals[i*m.Cols() : (i+1)*m.Cols()] {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(p.w, sb.String()); err != nil {
			return err
		}
	}

	return nil
}

// Print is a convenience wrapper for NewPrinter(w).Print(name, m).
func Print(w io.Writer, name string, m *matrix.Dense) error {
	return NewPrinter(w).Print(name, m)
}
