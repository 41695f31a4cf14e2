// Package wizard drives linear multi-step forms: per-step validation gates
// forward navigation, going back is always allowed, and submission is only
// accepted from the final step once every step validates.
package wizard

import (
	"fmt"

	"connect-workers/internal/common/validation"
)

// Step is one page of a wizard.
type Step[T any] struct {
	Name  string
	Rules []validation.Rule[T]
}

// Definition is the static description of a wizard over form type T.
type Definition[T any] struct {
	Kind  string
	Steps []Step[T]
	// Initial returns the defaults a new session starts from. Nil means the zero T.
	Initial func() T
}

// Check reports definition mistakes such as an empty step list or duplicate names.
func (d Definition[T]) Check() error {
	if d.Kind == "" {
		return fmt.Errorf("wizard definition has no kind")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("wizard %s has no steps", d.Kind)
	}
	seen := make(map[string]bool, len(d.Steps))
	for i, s := range d.Steps {
		if s.Name == "" {
			return fmt.Errorf("wizard %s: step %d has no name", d.Kind, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("wizard %s: duplicate step name %q", d.Kind, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func (d Definition[T]) TotalSteps() int {
	return len(d.Steps)
}

// StepIndex returns the position of the named step.
func (d Definition[T]) StepIndex(name string) (int, bool) {
	for i, s := range d.Steps {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ValidateStep evaluates the rules of step i against data.
func (d Definition[T]) ValidateStep(i int, data *T) validation.Result {
	if i < 0 || i >= len(d.Steps) {
		return validation.Result{IsValid: true, Errors: []string{}}
	}
	return validation.Evaluate(d.Steps[i].Rules, data)
}

// FirstInvalid returns the first step below upTo whose rules fail.
func (d Definition[T]) FirstInvalid(data *T, upTo int) (int, validation.Result, bool) {
	if upTo > len(d.Steps) {
		upTo = len(d.Steps)
	}
	for i := 0; i < upTo; i++ {
		if res := d.ValidateStep(i, data); !res.IsValid {
			return i, res, true
		}
	}
	return 0, validation.Result{}, false
}

// NewData returns the defaults a fresh session starts from.
func (d Definition[T]) NewData() T {
	if d.Initial != nil {
		return d.Initial()
	}
	var zero T
	return zero
}
