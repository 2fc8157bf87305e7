package dsl

import (
	"fmt"
	"time"

	"github.com/aretw0/genie/pkg/adapters/memory"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/script"
)

// Row is one table row keyed by column name.
type Row map[string]any

// Builder manages the script construction.
type Builder struct {
	name    string
	initial string
	order   []string
	steps   map[string]*StepBuilder
}

// New creates a new script builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		steps: make(map[string]*StepBuilder),
	}
}

// Initial overrides the entry step. By default it is the first step added.
func (b *Builder) Initial(id string) *Builder {
	b.initial = id
	return b
}

// Step creates a new step in the script.
// If the step already exists, it returns the existing builder.
func (b *Builder) Step(id string) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{
		step:    domain.Step{ID: id},
		builder: b,
	}
	b.steps[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Script returns the definition in the order steps were added, without validating it.
func (b *Builder) Script() domain.Script {
	s := domain.Script{Name: b.name, Initial: b.initial}
	if s.Initial == "" && len(b.order) > 0 {
		s.Initial = b.order[0]
	}
	for _, id := range b.order {
		s.Steps = append(s.Steps, b.steps[id].Build())
	}
	return s
}

// Build validates the script and compiles it into a memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	s := b.Script()
	if problems := script.Validate(s); len(problems) > 0 {
		return nil, fmt.Errorf("failed to build script %q: %w", b.name, &domain.ValidationError{Problems: problems})
	}
	return memory.NewLoader(s), nil
}

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// After declares the steps this one may be reached from.
func (s *StepBuilder) After(predecessors ...string) *StepBuilder {
	s.step.Predecessors = append(s.step.Predecessors, predecessors...)
	return s
}

// Say appends a response delivered after delay.
func (s *StepBuilder) Say(delay time.Duration, text string) *StepBuilder {
	s.step.Responses = append(s.step.Responses, domain.Response{Delay: delay, Text: text})
	return s
}

// Table attaches a result grid to the last response.
func (s *StepBuilder) Table(query string, columns []string, rows ...Row) *StepBuilder {
	t := &domain.Table{Query: query, Columns: columns, Rows: make([]map[string]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]any(r))
	}
	return s.attach(&domain.Attachment{Table: t})
}

// Chart attaches a chart to the last response.
func (s *StepBuilder) Chart(kind, title string, series ...domain.Series) *StepBuilder {
	return s.attach(&domain.Attachment{Chart: &domain.Chart{Kind: kind, Title: title, Series: series}})
}

// Action offers a follow-up once every response has been delivered.
func (s *StepBuilder) Action(id, label, target string) *StepBuilder {
	s.step.Actions = append(s.step.Actions, domain.Action{ID: id, Label: label, Target: target})
	return s
}

// Navigate marks the step as terminal, handing control to the given view.
func (s *StepBuilder) Navigate(view string) *StepBuilder {
	s.step.Navigate = view
	return s
}

// Step continues with another step of the same script.
func (s *StepBuilder) Step(id string) *StepBuilder {
	return s.builder.Step(id)
}

// Build returns a copy of the underlying domain.Step.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *StepBuilder) Build() domain.Step {
	return s.step.Clone()
}

// attach panics when no response exists yet; call Say first.
func (s *StepBuilder) attach(a *domain.Attachment) *StepBuilder {
	n := len(s.step.Responses)
	if n == 0 {
		panic(fmt.Sprintf("dsl: step %q has no response to attach to", s.step.ID))
	}
	s.step.Responses[n-1].Attachment = a
	return s
}

// Series builds a chart series.
func Series(name string, points ...domain.Point) domain.Series {
	return domain.Series{Name: name, Points: points}
}

// Point builds a labeled chart value.
func Point(label string, value float64) domain.Point {
	return domain.Point{Label: label, Value: value}
}
