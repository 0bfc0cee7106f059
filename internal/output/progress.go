package output

import (
	"fmt"
	"io"
)

// ProgressReporter prints completion counts while a run is in flight. It is
// purely observational; the summary counts come from the aggregator.
type ProgressReporter struct {
	writer io.Writer
}

func NewProgressReporter(w io.Writer) *ProgressReporter {
	return &ProgressReporter{writer: w}
}

// Report renders one progress line, e.g. "Scanned 3/10 repositories (30%)".
func (p *ProgressReporter) Report(processed, total int, label string) {
	if p == nil || p.writer == nil || total <= 0 {
		return
	}
	pct := processed * 100 / total
	fmt.Fprintf(p.writer, "Scanned %d/%d %s (%d%%)\n", processed, total, label, pct)
}
