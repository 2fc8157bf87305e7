package domain

// Author identifies who produced a transcript entry.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Entry is one record of the append-only transcript.
// Insertion order is the display order; entries are never reordered or deduplicated.
type Entry struct {
	Seq        int         `json:"seq"`
	Author     Author      `json:"author"`
	StepID     string      `json:"step_id"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
}
