package report

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// echartsAssetsPrefix mirrors the teacher's dashboard pages, which pin the
// chart library's JS/CSS to a fixed CDN host rather than the go-echarts
// default so the rendered HTML is reproducible offline-to-online.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// SnapshotAtTime pairs a statistics snapshot with the wall-clock millisecond
// it was taken at, for the dashboard's time series charts.
type SnapshotAtTime struct {
	TakenAtMs int64
	Snapshot  stats.Snapshot
}

// RenderDashboardHTML builds an interactive HTML page with three charts: a
// line chart of filtering rate over time, a scatter of accepted vs. rejected
// fixes, and a radius-over-time line, mirroring the teacher's
// internal/lidar/monitor/echarts_handlers.go scatter/bar dashboards.
func RenderDashboardHTML(title string, result stats.ProcessingResult, history []SnapshotAtTime) ([]byte, error) {
	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)

	page.AddCharts(
		filteringRateChart(title, history),
		acceptedRejectedScatter(title, result),
		radiusOverTimeChart(title, history),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("report: render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

func filteringRateChart(title string, history []SnapshotAtTime) *charts.Line {
	xAxis := make([]string, len(history))
	data := make([]opts.LineData, len(history))
	for i, h := range history {
		xAxis[i] = fmt.Sprintf("%d", h.TakenAtMs)
		data[i] = opts.LineData{Value: h.Snapshot.FilteringRate}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "360px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title + " — filtering rate", Subtitle: fmt.Sprintf("%d snapshots", len(history))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rejected / input", Min: 0, Max: 1}),
	)
	line.SetXAxis(xAxis).AddSeries("filtering rate", data)
	return line
}

func radiusOverTimeChart(title string, history []SnapshotAtTime) *charts.Line {
	xAxis := make([]string, len(history))
	data := make([]opts.LineData, len(history))
	for i, h := range history {
		xAxis[i] = fmt.Sprintf("%d", h.TakenAtMs)
		data[i] = opts.LineData{Value: h.Snapshot.BaseRadius}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "360px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title + " — base radius"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "meters"}),
	)
	line.SetXAxis(xAxis).AddSeries("base radius", data)
	return line
}

func acceptedRejectedScatter(title string, result stats.ProcessingResult) *charts.Scatter {
	accepted := make(map[int64]bool, len(result.ProcessedPoints))
	for _, f := range result.ProcessedPoints {
		accepted[f.TimeMs] = true
	}

	var acceptedPts, rejectedPts []opts.ScatterData
	for _, f := range result.OriginalPoints {
		pt := opts.ScatterData{Value: []interface{}{f.Lng, f.Lat}}
		if accepted[f.TimeMs] {
			acceptedPts = append(acceptedPts, pt)
		} else {
			rejectedPts = append(rejectedPts, pt)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title + " — accepted vs rejected", Subtitle: fmt.Sprintf("accepted=%d rejected=%d", len(acceptedPts), len(rejectedPts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "lng", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "lat", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("accepted", acceptedPts,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#35b779"}),
	)
	scatter.AddSeries("rejected", rejectedPts,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}),
	)
	return scatter
}
