package driver_test

import (
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/katalvlaran/scattermul/matrix"
	"github.com/stretchr/testify/require"
)

var headerRE = regexp.MustCompile(`^(.+) \((\d+)x(\d+)\):$`)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parsePrinted reads back the matrices written by a Printer, keyed by name.
func parsePrinted(t *testing.T, out string) map[string]*matrix.Dense {
	t.Helper()
	got := make(map[string]*matrix.Dense)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for i := 0; i < len(lines); {
		m := headerRE.FindStringSubmatch(lines[i])
		require.NotNil(t, m, "line %d is not a header: %q", i, lines[i])
		rows, _ := strconv.Atoi(m[2])
		cols, _ := strconv.Atoi(m[3])
		require.LessOrEqual(t, i+1+rows, len(lines), "%s is truncated", m[1])

		vals := make([]int, 0, rows*cols)
		for _, line := range lines[i+1 : i+1+rows] {
			fields := strings.Fields(line)
			require.Len(t, fields, cols, "%s row %q", m[1], line)
			for _, f := range fields {
				v, err := strconv.Atoi(f)
				require.NoError(t, err)
				vals = append(vals, v)
			}
		}
		d, err := matrix.NewDenseFrom(rows, cols, vals)
		require.NoError(t, err)
		got[m[1]] = d
		i += 1 + rows
	}

	return got
}
