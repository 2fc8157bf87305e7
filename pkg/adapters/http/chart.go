package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/oapi-codegen/runtime"
)

const chartHeight = "420px"

// GetEntryChart handles GET /sessions/{id}/entries/{seq}/chart.
// It renders the chart attached to a transcript entry as an ECharts page.
func (s *Server) GetEntryChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var seq int
	err := runtime.BindStyledParameterWithOptions("simple", "seq", chi.URLParam(r, "seq"), &seq,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid format for parameter seq: %v", err), "")
		return
	}

	chart := findChart(sess.Snapshot(), seq)
	if chart == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("entry %d has no chart", seq), "")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderChart(w, chart); err != nil {
		s.logger.Error("chart render failed", "session_id", sess.ID(), "seq", seq, "error", err)
	}
}

func findChart(snap domain.Snapshot, seq int) *domain.Chart {
	for _, e := range snap.Transcript {
		if e.Seq == seq && e.Attachment != nil {
			return e.Attachment.Chart
		}
	}
	return nil
}

// RenderChart writes a standalone HTML page for the chart.
func RenderChart(w io.Writer, c *domain.Chart) error {
	labels := c.Labels()
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "100%", Height: chartHeight}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(c.Series) > 1)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}

	switch c.Kind {
	case domain.ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(labels)
		for _, series := range c.Series {
			values := aligned(series, labels)
			data := make([]opts.BarData, len(values))
			for i, v := range values {
				data[i] = opts.BarData{Name: labels[i], Value: v}
			}
			bar.AddSeries(series.Name, data)
		}
		return bar.Render(w)
	case domain.ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(labels)
		for _, series := range c.Series {
			values := aligned(series, labels)
			data := make([]opts.LineData, len(values))
			for i, v := range values {
				data[i] = opts.LineData{Name: labels[i], Value: v}
			}
			line.AddSeries(series.Name, data)
		}
		return line.Render(w)
	default:
		return fmt.Errorf("unsupported chart kind: %s", c.Kind)
	}
}

// aligned lays out a series' values along the shared label axis.
// Labels the series lacks become "-", which ECharts draws as a gap.
func aligned(s domain.Series, labels []string) []any {
	byLabel := make(map[string]float64, len(s.Points))
	for _, p := range s.Points {
		byLabel[p.Label] = p.Value
	}
	out := make([]any, len(labels))
	for i, l := range labels {
		if v, ok := byLabel[l]; ok {
			out[i] = v
		} else {
			out[i] = "-"
		}
	}
	return out
}
