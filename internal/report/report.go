// Package report renders a finished session as an HTML page.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"git.lost.host/meutraa/rail/internal/game"
	"git.lost.host/meutraa/rail/internal/score"
)

// Bucket is the width of one histogram bar.
const Bucket = 10 * time.Millisecond

// Histogram counts deltas into Bucket wide bins covering [-span, span].
// Deltas outside the span land in the outermost bins.
func Histogram(deltas []time.Duration, span time.Duration) ([]string, []int) {
	n := int(span / Bucket)
	labels := make([]string, 2*n+1)
	counts := make([]int, 2*n+1)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", int64((i-n)*int(Bucket/time.Millisecond)))
	}
	for _, d := range deltas {
		// Round to the nearest bin centre.
		i := int((d + Bucket/2*sign(d)) / Bucket)
		if i < -n {
			i = -n
		}
		if i > n {
			i = n
		}
		counts[i+n]++
	}
	return labels, counts
}

func sign(d time.Duration) time.Duration {
	if d < 0 {
		return -1
	}
	return 1
}

// Write renders summary as a page with a timing histogram and tier counts.
func Write(w io.Writer, title string, summary score.Summary, windows game.Windows) error {
	labels, counts := Histogram(summary.Deltas, windows.Ruin)
	timing := make([]opts.BarData, len(counts))
	for i, c := range counts {
		timing[i] = opts.BarData{Value: c}
	}

	hist := charts.NewBar()
	hist.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Timing",
			Subtitle: fmt.Sprintf("mean %.1fms stddev %.1fms, early is negative", summary.MeanMs, summary.StdDevMs),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ms", NameLocation: "middle", NameGap: 25}),
	)
	hist.SetXAxis(labels).AddSeries("hits", timing)

	tierLabels := make([]string, len(game.Tiers))
	tiers := make([]opts.BarData, len(game.Tiers))
	for i, t := range game.Tiers {
		tierLabels[i] = t.String()
		tiers[i] = opts.BarData{Value: summary.Count(t)}
	}
	tierLabels = append(tierLabels, "Empty")
	tiers = append(tiers, opts.BarData{Value: summary.Empty})

	grades := charts.NewBar()
	grades.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Judgements", Subtitle: fmt.Sprintf("max combo %d", summary.MaxCombo)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	grades.SetXAxis(tierLabels).
		AddSeries("count", tiers,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(hist, grades)
	if err := page.Render(w); nil != err {
		return fmt.Errorf("unable to render report: %w", err)
	}
	return nil
}
