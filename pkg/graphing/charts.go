package graphing

import (
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"InferenceHarness/pkg/recording"
)

// createLatencyChart plots the phase timings of each run in order.
func createLatencyChart(records []*recording.RunRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Latency per Run"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "seconds"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	var xLabels []string
	var total, prefill, decode []opts.LineData
	for _, r := range records {
		xLabels = append(xLabels, r.Timestamp.Format("15:04:05"))
		total = append(total, opts.LineData{Value: r.TotalTime})
		prefill = append(prefill, opts.LineData{Value: r.PrefillTime})
		decode = append(decode, opts.LineData{Value: r.DecodeTime})
	}

	line.SetXAxis(xLabels).
		AddSeries("total", total).
		AddSeries("prefill", prefill).
		AddSeries("decode", decode)
	return line
}

// createPrefillDecodeScatter plots prefill time against decode time, the
// shape used to judge which phase dominates across prompt lengths.
func createPrefillDecodeScatter(records []*recording.RunRecord) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Prefill vs Decode Time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "prefill (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "decode (s)"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	var data []opts.ScatterData
	for _, r := range records {
		data = append(data, opts.ScatterData{
			Value:      []interface{}{r.PrefillTime, r.DecodeTime},
			SymbolSize: 8,
		})
	}
	scatter.AddSeries("", data)
	return scatter
}

// createThroughputHistogram buckets decode throughput across runs.
func createThroughputHistogram(records []*recording.RunRecord) *charts.Bar {
	var vals []float64
	for _, r := range records {
		if r.TokensPerSecond > 0 {
			vals = append(vals, r.TokensPerSecond)
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Decode Throughput Distribution",
			Subtitle: fmt.Sprintf("%d runs", len(vals)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "tokens/s", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	labels, counts := histogram(vals, 20)
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels).AddSeries("", data)
	return bar
}

// createEnergyChart plots per-run energy, with the battery-delta figure
// only where it was measurable.
func createEnergyChart(records []*recording.RunRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Energy per Run"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "joules"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	var xLabels []string
	var battery, cpu []opts.LineData
	for _, r := range records {
		xLabels = append(xLabels, r.Timestamp.Format("15:04:05"))
		if r.EstimatedEnergyJ != nil {
			battery = append(battery, opts.LineData{Value: *r.EstimatedEnergyJ})
		} else {
			battery = append(battery, opts.LineData{Value: "-"})
		}
		cpu = append(cpu, opts.LineData{Value: r.CPUEnergyJ})
	}

	line.SetXAxis(xLabels).
		AddSeries("battery estimate", battery).
		AddSeries("cpu model", cpu)
	return line
}

// createMemoryChart plots peak and average resident memory per run.
func createMemoryChart(records []*recording.RunRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Memory per Run"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "MB"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	)

	var xLabels []string
	var peak, avg []opts.LineData
	for _, r := range records {
		xLabels = append(xLabels, r.Timestamp.Format("15:04:05"))
		peak = append(peak, opts.LineData{Value: r.PeakMemoryMB})
		avg = append(avg, opts.LineData{Value: r.AverageMemoryMB})
	}

	line.SetXAxis(xLabels).
		AddSeries("peak", peak).
		AddSeries("average", avg)
	return line
}

// histogram buckets values into n equal-width bins.
func histogram(vals []float64, n int) ([]string, []int) {
	if len(vals) == 0 || n <= 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		return []string{fmt.Sprintf("%.1f", lo)}, []int{len(vals)}
	}

	width := (hi - lo) / float64(n)
	labels := make([]string, n)
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = fmt.Sprintf("%.1f", lo+width*float64(i))
	}
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		counts[idx]++
	}
	return labels, counts
}
