package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aretw0/genie/pkg/domain"
)

// barWidth is the length of the longest bar in a text chart.
const barWidth = 30

// EntryMarkdown renders a transcript entry, attachment included, as markdown.
func EntryMarkdown(e domain.Entry) string {
	var sb strings.Builder
	if e.Author == domain.AuthorUser {
		sb.WriteString("> **You:** ")
		sb.WriteString(e.Text)
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(e.Text)
	sb.WriteString("\n")
	if e.Attachment != nil {
		sb.WriteString("\n")
		sb.WriteString(AttachmentMarkdown(e.Attachment))
	}
	return sb.String()
}

// AttachmentMarkdown renders a table as a markdown table and a chart as text bars.
func AttachmentMarkdown(a *domain.Attachment) string {
	switch {
	case a == nil:
		return ""
	case a.Table != nil:
		return TableMarkdown(a.Table)
	case a.Chart != nil:
		return ChartText(a.Chart)
	}
	return ""
}

// TableMarkdown renders the query as a SQL block followed by the grid.
func TableMarkdown(t *domain.Table) string {
	var sb strings.Builder
	if t.Query != "" {
		sb.WriteString("```sql\n")
		sb.WriteString(t.Query)
		sb.WriteString("\n```\n\n")
	}

	sb.WriteString("| ")
	sb.WriteString(strings.Join(t.Columns, " | "))
	sb.WriteString(" |\n|")
	for range t.Columns {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = FormatCell(row[col])
		}
		sb.WriteString("| ")
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString(" |\n")
	}
	return sb.String()
}

// FormatCell prints numbers without trailing zeros and pipes escaped.
func FormatCell(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(n)
	case float32:
		return formatFloat(float64(n))
	case string:
		return strings.ReplaceAll(n, "|", "\\|")
	}
	return strings.ReplaceAll(fmt.Sprint(v), "|", "\\|")
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// ChartText renders every series as horizontal bars in a code block, scaled to
// the largest absolute value of the chart.
func ChartText(c *domain.Chart) string {
	labels := c.Labels()
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, len([]rune(l)))
	}
	maxValue := 0.0
	for _, s := range c.Series {
		for _, p := range s.Points {
			maxValue = math.Max(maxValue, math.Abs(p.Value))
		}
	}

	var sb strings.Builder
	if c.Title != "" {
		sb.WriteString("**")
		sb.WriteString(c.Title)
		sb.WriteString("**\n\n")
	}
	sb.WriteString("```\n")
	for _, s := range c.Series {
		if len(c.Series) > 1 {
			sb.WriteString(s.Name)
			sb.WriteString("\n")
		}
		points := append([]domain.Point(nil), s.Points...)
		order := labelOrder(labels)
		sort.SliceStable(points, func(i, j int) bool { return order[points[i].Label] < order[points[j].Label] })
		for _, p := range points {
			n := 0
			if maxValue > 0 {
				n = int(math.Round(math.Abs(p.Value) / maxValue * barWidth))
			}
			fmt.Fprintf(&sb, "%-*s %s %s\n", labelWidth, p.Label, strings.Repeat("█", n), formatFloat(p.Value))
		}
	}
	sb.WriteString("```\n")
	return sb.String()
}

func labelOrder(labels []string) map[string]int {
	order := make(map[string]int, len(labels))
	for i, l := range labels {
		order[l] = i
	}
	return order
}
