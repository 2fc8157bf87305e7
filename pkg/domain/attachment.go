package domain

// Chart kinds understood by the presentation adapters.
const (
	ChartBar  = "bar"
	ChartLine = "line"
)

// Attachment is structured data rendered alongside a message.
// Exactly one of Table or Chart is set.
type Attachment struct {
	Table *Table `json:"table,omitempty" yaml:"table,omitempty"`
	Chart *Chart `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// Table is a result grid with named, ordered columns.
type Table struct {
	// Query is the statement shown above the grid (display only, never executed).
	Query   string           `json:"query,omitempty" yaml:"query,omitempty"`
	Columns []string         `json:"columns" yaml:"columns"`
	Rows    []map[string]any `json:"rows" yaml:"rows"`
}

// Chart describes labeled numeric series.
type Chart struct {
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Kind   string   `json:"kind" yaml:"kind"`
	Series []Series `json:"series" yaml:"series"`
}

// Series is one legend entry of a chart.
type Series struct {
	Name   string  `json:"name" yaml:"name"`
	Points []Point `json:"points" yaml:"points"`
}

// Point is a labeled value.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Labels returns the union of point labels across all series, in first-seen order.
func (c *Chart) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range c.Series {
		for _, p := range s.Points {
			if !seen[p.Label] {
				seen[p.Label] = true
				labels = append(labels, p.Label)
			}
		}
	}
	return labels
}

// Clone returns a deep copy of the attachment.
func (a *Attachment) Clone() *Attachment {
	if a == nil {
		return nil
	}
	out := &Attachment{}
	if a.Table != nil {
		t := &Table{
			Query:   a.Table.Query,
			Columns: append([]string(nil), a.Table.Columns...),
			Rows:    make([]map[string]any, len(a.Table.Rows)),
		}
		for i, row := range a.Table.Rows {
			r := make(map[string]any, len(row))
			for k, v := range row {
				r[k] = v
			}
			t.Rows[i] = r
		}
		out.Table = t
	}
	if a.Chart != nil {
		c := &Chart{
			Title:  a.Chart.Title,
			Kind:   a.Chart.Kind,
			Series: make([]Series, len(a.Chart.Series)),
		}
		for i, s := range a.Chart.Series {
			c.Series[i] = Series{Name: s.Name, Points: append([]Point(nil), s.Points...)}
		}
		out.Chart = c
	}
	return out
}
