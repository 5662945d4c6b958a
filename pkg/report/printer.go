package report

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

const (
	zeroBarWidth = 20
	notAvailable = "n/a"
	missingCell  = "NaN"
	listBullet   = " - "
	ellipsis     = "..."
)

// Console messages.
const (
	MsgFoundFiles    = "Found raw CSVs:"
	MsgZeroShares    = "% zeros per trend:"
	MsgNotContinuous = "WARNING: Time index is not perfectly monthly 'MS' continuous (missing months or different anchor)."
	MsgMissingMonths = "Missing months:"
	MsgEmptyMerge    = "WARNING: merged table has no rows; the inputs share no common timestamp. Continuity check skipped."
	MsgSaved         = "Saved:"
	MsgPreview       = "Preview:"
	MsgColumns       = "Columns:"
	MsgChart         = "Chart:"
)

// Printer writes diagnostics to a writer. Write errors are ignored; the
// console is best effort.
type Printer struct {
	w      io.Writer
	warn   *color.Color
	header *color.Color
	good   *color.Color
}

// NewPrinter returns a printer writing to w. With noColor set no escape
// sequences are emitted.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:      w,
		warn:   color.New(color.FgYellow),
		header: color.New(color.Bold),
		good:   color.New(color.FgGreen),
	}

	if noColor {
		p.warn.DisableColor()
		p.header.DisableColor()
		p.good.DisableColor()
	}

	return p
}

// Files lists the discovered exports by base name.
func (p *Printer) Files(paths []string) {
	p.header.Fprintln(p.w, MsgFoundFiles)

	for _, path := range paths {
		fmt.Fprintln(p.w, listBullet+filepath.Base(path))
	}
}

// Continuity prints the continuity warning when the axis has gaps, listing
// at most limit missing months. It prints nothing for a continuous axis.
func (p *Printer) Continuity(c align.Continuity, limit int) {
	if c.Empty {
		p.warn.Fprintln(p.w, MsgEmptyMerge)

		return
	}

	if c.Continuous {
		return
	}

	p.warn.Fprintln(p.w, MsgNotContinuous)

	labels, truncated := c.MissingLabels(limit)
	if len(labels) == 0 {
		return
	}

	line := MsgMissingMonths + " " + strings.Join(labels, ", ")
	if truncated {
		line += " " + ellipsis
	}

	fmt.Fprintln(p.w, line)
}

// ZeroShares prints one line per metric with its zero share at one decimal.
func (p *Printer) ZeroShares(shares []ZeroShare) {
	fmt.Fprintln(p.w)
	p.header.Fprintln(p.w, MsgZeroShares)

	tbl := newTable()

	for _, s := range shares {
		if !s.Valid {
			tbl.AppendRow(table.Row{s.Metric + ":", notAvailable, ""})

			continue
		}

		tbl.AppendRow(table.Row{
			s.Metric + ":",
			strconv.FormatFloat(s.Percent, 'f', 1, 64) + "%",
			Bar(s.Percent, zeroBarWidth),
		})
	}

	fmt.Fprintln(p.w, tbl.Render())
}

// Chart reports where the chart was written.
func (p *Printer) Chart(path string) {
	fmt.Fprintln(p.w)
	p.good.Fprintln(p.w, MsgChart, path)
}

// Saved lists written outputs.
func (p *Printer) Saved(paths ...string) {
	fmt.Fprintln(p.w)
	p.good.Fprintln(p.w, MsgSaved)

	for _, path := range paths {
		fmt.Fprintln(p.w, listBullet+path)
	}
}

// Preview prints the first n rows of t followed by its column list.
func (p *Printer) Preview(t *align.Table, n int, timeLayout string) {
	head := t.Head(n)

	fmt.Fprintln(p.w)
	p.header.Fprintln(p.w, MsgPreview)

	header := make(table.Row, 0, len(head.Metrics)+1)
	header = append(header, series.TimeColumn)

	for _, m := range head.Metrics {
		header = append(header, m)
	}

	tbl := newTable()
	tbl.AppendHeader(header)

	for row, ts := range head.Times {
		r := make(table.Row, 0, len(header))
		r = append(r, ts.Format(timeLayout))

		for _, v := range head.Row(row) {
			r = append(r, formatCell(v))
		}

		tbl.AppendRow(r)
	}

	fmt.Fprintln(p.w, tbl.Render())

	columns := append([]string{series.TimeColumn}, t.Metrics...)

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, MsgColumns, "["+strings.Join(quoteAll(columns), ", ")+"]")
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	return tbl
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return missingCell
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "'" + v + "'"
	}

	return out
}
