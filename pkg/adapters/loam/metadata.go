package loam

// StepMetadata represents the frontmatter of a step document.
// The document body is the text of the step's first response.
type StepMetadata struct {
	ID string `json:"id" mapstructure:"id"`

	// Order sorts steps; ties fall back to the ID.
	Order int `json:"order" mapstructure:"order"`

	// Initial marks the entry step of the script.
	Initial bool `json:"initial" mapstructure:"initial"`

	Predecessors []string         `json:"predecessors" mapstructure:"predecessors"`
	Actions      []ActionMetadata `json:"actions" mapstructure:"actions"`
	Navigate     string           `json:"navigate" mapstructure:"navigate"`

	// Delay and Attachment apply to the first response (the body).
	Delay      string         `json:"delay" mapstructure:"delay"`
	Attachment map[string]any `json:"attachment" mapstructure:"attachment"`

	// Followups are the responses delivered after the body, in order.
	// Each item is a map with delay, text and attachment keys.
	Followups []any `json:"followups" mapstructure:"followups"`
}

// ActionMetadata is a follow-up declared in frontmatter.
type ActionMetadata struct {
	ID     string `json:"id" mapstructure:"id"`
	Label  string `json:"label" mapstructure:"label"`
	Target string `json:"target" mapstructure:"target"`
}
