package evaluation

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatResult renders r as a report block:
//
//	Results for DistilBert:
//	  Accuracy: 0.9
//	  ...
//	  Speed: 12.3
//
// followed by a blank line.
func FormatResult(r Result) string {
	values := r.Values()

	var b strings.Builder
	fmt.Fprintf(&b, "Results for %s:\n", r.Model)
	for _, name := range MetricNames {
		fmt.Fprintf(&b, "  %s: %s\n", name, formatFloat(values[name]))
	}
	b.WriteString("\n")
	return b.String()
}

// WriteResult writes the report block for r to w.
func WriteResult(w io.Writer, r Result) error {
	_, err := io.WriteString(w, FormatResult(r))
	return err
}

// AppendReport appends the report block for r to path, creating the file
// and its directory when missing. Existing content is never truncated.
func AppendReport(path string, r Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report: %w", err)
	}

	if err := WriteResult(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}

// formatFloat prints the shortest round-tripping decimal, always with a
// fractional part ("1.0", "0.8888888888888888"). Very large or small
// magnitudes use exponent form ("1e-05").
func formatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}
