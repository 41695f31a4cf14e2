package wizards

import (
	"context"
	"encoding/json"
	"fmt"

	"connect-workers/internal/common/logger"
	"connect-workers/internal/common/validation"
	"connect-workers/internal/wizard"
)

// Wizard is a catalogue entry with its form type erased, so callers that only
// hold raw JSON (job variables, CLI files) can validate and drive sessions.
type Wizard interface {
	Kind() string
	Title() string
	Steps() []string
	// Validate checks the document shape, then the rules of step, or of every
	// step when step is negative.
	Validate(document []byte, step int) (Report, error)
	// CheckShape lists the schema problems of a full or partial form document.
	CheckShape(document []byte) ([]string, error)
	// Open fails only when opts.Initial does not decode into the form.
	Open(opts SessionOptions) (Controller, error)
}

// SubmitFunc receives the typed form value of a completed wizard.
type SubmitFunc func(ctx context.Context, kind string, data any) (wizard.SubmitResult, error)

type SessionOptions struct {
	Store    *wizard.SnapshotStore
	Key      wizard.SnapshotKey
	Submit   SubmitFunc
	Observer func(data any)
	Logger   logger.Logger
	// Initial seeds the form before any snapshot is restored.
	Initial json.RawMessage
}

// Controller is the navigation surface of an open session.
type Controller interface {
	Restore(ctx context.Context) (bool, error)
	Merge(ctx context.Context, partial json.RawMessage) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) bool
	GoTo(ctx context.Context, n int) error
	Submit(ctx context.Context) (wizard.SubmitResult, error)
	State() State
}

// State is the externally visible view of a session.
type State struct {
	Wizard      string            `json:"wizard"`
	CurrentStep int               `json:"currentStep"`
	StepName    string            `json:"stepName"`
	TotalSteps  int               `json:"totalSteps"`
	Progress    int               `json:"progress"`
	IsTerminal  bool              `json:"isTerminal"`
	FormData    any               `json:"formData"`
	Validation  validation.Result `json:"validation"`
}

type StepReport struct {
	Index  int      `json:"index"`
	Name   string   `json:"name"`
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

// Report is the outcome of Wizard.Validate.
type Report struct {
	Wizard       string       `json:"wizard"`
	Valid        bool         `json:"isValid"`
	SchemaErrors []string     `json:"schemaErrors,omitempty"`
	Steps        []StepReport `json:"steps"`
}

// FirstFailure returns the earliest failing step, if any.
func (r Report) FirstFailure() (StepReport, bool) {
	for _, s := range r.Steps {
		if !s.Valid {
			return s, true
		}
	}
	return StepReport{}, false
}

// Errors flattens schema and step messages in order.
func (r Report) Errors() []string {
	out := append([]string{}, r.SchemaErrors...)
	for _, s := range r.Steps {
		out = append(out, s.Errors...)
	}
	return out
}

type form[T any] struct {
	title  string
	def    wizard.Definition[T]
	schema *validation.Schema
}

func newForm[T any](title string, def wizard.Definition[T], schema string) *form[T] {
	if err := def.Check(); err != nil {
		panic(err)
	}
	return &form[T]{title: title, def: def, schema: validation.MustCompileSchema(schema)}
}

func (f *form[T]) Kind() string  { return f.def.Kind }
func (f *form[T]) Title() string { return f.title }

func (f *form[T]) Steps() []string {
	names := make([]string, len(f.def.Steps))
	for i, s := range f.def.Steps {
		names[i] = s.Name
	}
	return names
}

// Definition exposes the typed definition for callers that know T.
func (f *form[T]) Definition() wizard.Definition[T] {
	return f.def
}

func (f *form[T]) decode(document []byte) (T, error) {
	data := f.def.NewData()
	if len(document) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(document, &data); err != nil {
		return data, fmt.Errorf("decode %s form: %w", f.def.Kind, err)
	}
	return data, nil
}

func (f *form[T]) CheckShape(document []byte) ([]string, error) {
	return f.schema.ValidateDocument(document)
}

func (f *form[T]) Validate(document []byte, step int) (Report, error) {
	report := Report{Wizard: f.def.Kind, Steps: []StepReport{}}
	if step >= f.def.TotalSteps() {
		return report, fmt.Errorf("%w: %d not in [0, %d)", wizard.ErrStepOutOfRange, step, f.def.TotalSteps())
	}
	if len(document) == 0 {
		document = []byte("{}")
	}

	problems, err := f.CheckShape(document)
	if err != nil {
		return report, err
	}
	if len(problems) > 0 {
		report.SchemaErrors = problems
		return report, nil
	}

	data, err := f.decode(document)
	if err != nil {
		return report, err
	}

	from, to := 0, f.def.TotalSteps()
	if step >= 0 {
		from, to = step, step+1
	}
	report.Valid = true
	for i := from; i < to; i++ {
		res := f.def.ValidateStep(i, &data)
		report.Steps = append(report.Steps, StepReport{
			Index:  i,
			Name:   f.def.Steps[i].Name,
			Valid:  res.IsValid,
			Errors: res.Errors,
		})
		report.Valid = report.Valid && res.IsValid
	}
	return report, nil
}

func (f *form[T]) Open(opts SessionOptions) (Controller, error) {
	var sopts []wizard.Option[T]
	if opts.Store != nil {
		sopts = append(sopts, wizard.WithSnapshots[T](opts.Store, opts.Key))
	}
	if opts.Logger != nil {
		sopts = append(sopts, wizard.WithLogger[T](opts.Logger))
	}
	if opts.Observer != nil {
		observe := opts.Observer
		sopts = append(sopts, wizard.WithObserver(func(data T) { observe(data) }))
	}
	if opts.Submit != nil {
		submit, kind := opts.Submit, f.def.Kind
		sopts = append(sopts, wizard.WithSubmitter[T](wizard.SubmitterFunc[T](func(ctx context.Context, data T) (wizard.SubmitResult, error) {
			return submit(ctx, kind, data)
		})))
	}
	if len(opts.Initial) > 0 {
		data, err := f.decode(opts.Initial)
		if err != nil {
			return nil, fmt.Errorf("initial data: %w", err)
		}
		sopts = append(sopts, wizard.WithData(data))
	}
	return &controller[T]{Session: wizard.NewSession(f.def, sopts...), kind: f.def.Kind}, nil
}

type controller[T any] struct {
	*wizard.Session[T]
	kind string
}

func (c *controller[T]) State() State {
	return State{
		Wizard:      c.kind,
		CurrentStep: c.CurrentStep(),
		StepName:    c.CurrentStepName(),
		TotalSteps:  c.TotalSteps(),
		Progress:    c.Progress(),
		IsTerminal:  c.IsTerminal(),
		FormData:    c.Data(),
		Validation:  c.ValidateCurrent(),
	}
}
