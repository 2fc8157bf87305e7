package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts a Loam repository (one document per step) to ports.ScriptLoader.
type Loader struct {
	Repo *loam.TypedRepository[StepMetadata]
	Name string
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[StepMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it in a Loader.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across serializers; the
	// loader never writes, so the repository is opened read-only.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	l := New(loam.NewTypedRepository[StepMetadata](repo))
	l.Name = filepath.Base(absPath)
	return l, nil
}

type orderedStep struct {
	order   int
	initial bool
	step    domain.Step
	source  string
}

// Load lists every document of the repository and assembles the script.
func (l *Loader) Load(ctx context.Context) (domain.Script, error) {
	if err := ctx.Err(); err != nil {
		return domain.Script{}, err
	}

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return domain.Script{}, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	steps := make([]orderedStep, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		// Collision Detection
		if existing, ok := seen[id]; ok {
			return domain.Script{}, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		step, err := buildStep(id, doc.Data, doc.Content)
		if err != nil {
			return domain.Script{}, fmt.Errorf("step %s: %w", id, err)
		}
		steps = append(steps, orderedStep{order: doc.Data.Order, initial: doc.Data.Initial, step: step, source: doc.ID})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].order != steps[j].order {
			return steps[i].order < steps[j].order
		}
		return steps[i].step.ID < steps[j].step.ID
	})

	script := domain.Script{Name: l.Name, Steps: make([]domain.Step, 0, len(steps))}
	for _, s := range steps {
		if s.initial {
			if script.Initial != "" {
				return domain.Script{}, fmt.Errorf("both '%s' and '%s' are marked initial", script.Initial, s.step.ID)
			}
			script.Initial = s.step.ID
		}
		script.Steps = append(script.Steps, s.step)
	}
	return script, nil
}

func buildStep(id string, meta StepMetadata, content string) (domain.Step, error) {
	step := domain.Step{
		ID:           id,
		Predecessors: meta.Predecessors,
		Navigate:     meta.Navigate,
	}

	for _, a := range meta.Actions {
		step.Actions = append(step.Actions, domain.Action{ID: a.ID, Label: a.Label, Target: trimExtension(a.Target)})
	}

	body := strings.TrimSpace(content)
	if body == "" && meta.Attachment == nil {
		if len(meta.Followups) > 0 {
			return domain.Step{}, fmt.Errorf("followups require a body")
		}
		return step, nil
	}

	first := domain.Response{Text: body}
	if meta.Delay != "" {
		d, err := time.ParseDuration(meta.Delay)
		if err != nil {
			return domain.Step{}, fmt.Errorf("invalid delay %q: %w", meta.Delay, err)
		}
		first.Delay = d
	}
	if meta.Attachment != nil {
		att, err := decodeAttachment(meta.Attachment)
		if err != nil {
			return domain.Step{}, err
		}
		first.Attachment = att
	}
	step.Responses = append(step.Responses, first)

	for i, raw := range meta.Followups {
		resp, err := decodeResponse(raw)
		if err != nil {
			return domain.Step{}, fmt.Errorf("followup #%d: %w", i+1, err)
		}
		step.Responses = append(step.Responses, resp)
	}

	return step, nil
}

type responseMetadata struct {
	Delay      time.Duration  `mapstructure:"delay"`
	Text       string         `mapstructure:"text"`
	Attachment map[string]any `mapstructure:"attachment"`
}

func decodeResponse(raw any) (domain.Response, error) {
	var meta responseMetadata
	if err := decode(raw, &meta); err != nil {
		return domain.Response{}, fmt.Errorf("failed to decode response: %w", err)
	}

	resp := domain.Response{Delay: meta.Delay, Text: meta.Text}
	if meta.Attachment != nil {
		att, err := decodeAttachment(meta.Attachment)
		if err != nil {
			return domain.Response{}, err
		}
		resp.Attachment = att
	}
	return resp, nil
}

func decodeAttachment(raw map[string]any) (*domain.Attachment, error) {
	var att domain.Attachment
	if err := decode(raw, &att); err != nil {
		return nil, fmt.Errorf("failed to decode attachment: %w", err)
	}
	if att.Table != nil {
		for _, row := range att.Table.Rows {
			for k, v := range row {
				row[k] = normalizeNumber(v)
			}
		}
	}
	return &att, nil
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalizeNumber turns strict-mode json.Number cells into int64 or float64.
func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
