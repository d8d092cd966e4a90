// Package report renders experiment results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bellsim/internal/experiment"
)

// Title names a result the way the report headers show it.
func Title(r *experiment.Result) string {
	if mix, ok := r.Params["mix"]; ok {
		return fmt.Sprintf("%s (oddball %.0f%% / trivial %.0f%%)", r.Protocol, 100*mix, 100*(1-mix))
	}
	return r.Protocol
}

// Observed formats the observed percentage, or "no data".
func Observed(r *experiment.Result) string {
	pct, ok := r.Percent()
	if !ok {
		return "no data"
	}
	return fmt.Sprintf("%.3f%%", pct)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// Card renders one result as a bordered panel.
func Card(r *experiment.Result) string {
	observed := observedStyle.Render(Observed(r))
	if r.NoData() {
		observed = noDataStyle.Render(Observed(r))
	}

	lines := []string{
		headerStyle.Render(Title(r)),
		row("observed", observed),
		row("expected", valueStyle.Render(fmt.Sprintf("%.3f%%", r.Expected))),
	}
	if r.Bound > 0 {
		lines = append(lines, row("bound", valueStyle.Render(fmt.Sprintf(">= %.3f%%", r.Bound))))
	}
	lines = append(lines, row("trials", valueStyle.Render(fmt.Sprintf("%d", r.Trials))))
	if !r.NoData() {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("seed %d, %d worker(s), %v", r.Seed, r.Workers, r.Elapsed.Round(time.Millisecond))))
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Write renders every result in order.
func Write(w io.Writer, results []*experiment.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, Card(r)); err != nil {
			return err
		}
	}
	return nil
}

// Plot draws a series with asciigraph. An empty series renders as "".
// opts are applied after the defaults and override them.
func Plot(series []float64, caption string, opts ...asciigraph.Option) string {
	if len(series) == 0 {
		return ""
	}
	all := append([]asciigraph.Option{
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	}, opts...)
	return asciigraph.Plot(series, all...)
}

// PlotAgainst draws the series together with a flat reference line.
func PlotAgainst(series []float64, reference float64, caption string) string {
	if len(series) == 0 {
		return ""
	}
	ref := make([]float64, len(series))
	for i := range ref {
		ref[i] = reference
	}
	return asciigraph.PlotMany([][]float64{series, ref},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption(caption),
	)
}

type BenchRow struct {
	Protocol string
	Workers  int
	Trials   int
	Elapsed  time.Duration
}

// Bench writes a timing table.
func Bench(w io.Writer, rows []BenchRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROTOCOL\tWORKERS\tTRIALS\tTIME\tTRIALS/SEC")

	for _, r := range rows {
		rate := 0.0
		if r.Elapsed > 0 {
			rate = float64(r.Trials) / r.Elapsed.Seconds()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%.0f\n", r.Protocol, r.Workers, r.Trials, r.Elapsed, rate)
	}

	return tw.Flush()
}
