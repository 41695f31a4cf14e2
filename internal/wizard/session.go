package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"connect-workers/internal/common/logger"
	"connect-workers/internal/common/metrics"
	"connect-workers/internal/common/validation"
)

// SubmitResult is the acknowledgement returned by a Submitter.
type SubmitResult struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
}

// Submitter hands a completed form to the backend.
type Submitter[T any] interface {
	Submit(ctx context.Context, data T) (SubmitResult, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc[T any] func(ctx context.Context, data T) (SubmitResult, error)

func (f SubmitterFunc[T]) Submit(ctx context.Context, data T) (SubmitResult, error) {
	return f(ctx, data)
}

// Option configures a Session.
type Option[T any] func(*Session[T])

// WithSnapshots persists the session under key after every change.
func WithSnapshots[T any](store *SnapshotStore, key SnapshotKey) Option[T] {
	return func(s *Session[T]) {
		s.store = store
		s.key = key
	}
}

func WithSubmitter[T any](sub Submitter[T]) Option[T] {
	return func(s *Session[T]) { s.submitter = sub }
}

// WithObserver registers a callback that receives the form after every update,
// for example to recompute a live score preview.
func WithObserver[T any](fn func(T)) Option[T] {
	return func(s *Session[T]) { s.observer = fn }
}

func WithLogger[T any](log logger.Logger) Option[T] {
	return func(s *Session[T]) { s.logger = log }
}

// WithData starts the session from data instead of the definition defaults.
func WithData[T any](data T) Option[T] {
	return func(s *Session[T]) { s.data = data }
}

// Session is one user's pass through a wizard. It is safe for concurrent use,
// though a single writer is expected.
type Session[T any] struct {
	mu         sync.Mutex
	def        Definition[T]
	data       T
	current    int
	submitting bool
	submitted  bool

	store     *SnapshotStore
	key       SnapshotKey
	submitter Submitter[T]
	observer  func(T)
	logger    logger.Logger
}

// NewSession starts a session on step 0.
func NewSession[T any](def Definition[T], opts ...Option[T]) *Session[T] {
	s := &Session[T]{
		def:    def,
		data:   def.NewData(),
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(map[string]interface{}{
		"wizardKind":  def.Kind,
		"snapshotKey": s.key.String(),
	})
	return s
}

// Update applies mutate to the form. It never fails: a snapshot write error
// is logged and the in-memory state is kept.
func (s *Session[T]) Update(ctx context.Context, mutate func(*T)) {
	s.mu.Lock()
	mutate(&s.data)
	data := s.data
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(data)
}

// Merge shallow-merges a JSON object into the form. Only malformed input or a
// type mismatch is an error; the form is unchanged in that case.
func (s *Session[T]) Merge(ctx context.Context, partial json.RawMessage) error {
	s.mu.Lock()
	merged, err := mergeJSON(s.data, partial)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.data = merged
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(merged)
	return nil
}

// Next validates the current step and advances when it passes. A failing
// step yields a *StepError carrying every message.
func (s *Session[T]) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return ErrSubmitInProgress
	}
	if s.current >= s.def.TotalSteps()-1 {
		return ErrNoNextStep
	}
	if res := s.def.ValidateStep(s.current, &s.data); !res.IsValid {
		return s.stepError(s.current, res)
	}

	s.current++
	s.persistLocked(ctx)
	return nil
}

// Prev moves back one step without validating. It reports whether it moved.
func (s *Session[T]) Prev(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting || s.current == 0 {
		return false
	}
	s.current--
	s.persistLocked(ctx)
	return true
}

// GoTo jumps to step n. Jumping back is always allowed; jumping forward
// requires every step before n to validate, so a review screen cannot be
// reached past an incomplete step.
func (s *Session[T]) GoTo(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 || n >= s.def.TotalSteps() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrStepOutOfRange, n, s.def.TotalSteps())
	}
	if s.submitting {
		return ErrSubmitInProgress
	}
	if n > s.current {
		if i, res, bad := s.def.FirstInvalid(&s.data, n); bad {
			return s.stepError(i, res)
		}
	}

	s.current = n
	s.persistLocked(ctx)
	return nil
}

// Submit validates every step and hands the form to the submitter. On
// success the snapshot is cleared; on failure the session stays on the final
// step so the caller can retry.
func (s *Session[T]) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	switch {
	case s.submitting:
		s.mu.Unlock()
		return SubmitResult{}, ErrSubmitInProgress
	case s.submitted:
		s.mu.Unlock()
		return SubmitResult{}, ErrAlreadySubmitted
	case s.current != s.def.TotalSteps()-1:
		s.mu.Unlock()
		return SubmitResult{}, ErrNotTerminalStep
	case s.submitter == nil:
		s.mu.Unlock()
		return SubmitResult{}, ErrNoSubmitter
	}
	if i, res, bad := s.def.FirstInvalid(&s.data, s.def.TotalSteps()); bad {
		err := s.stepError(i, res)
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	s.submitting = true
	data := s.data
	s.mu.Unlock()

	result, err := s.submitter.Submit(ctx, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	if err != nil {
		metrics.WizardSubmissions.WithLabelValues(s.def.Kind, "failed").Inc()
		s.logger.Warn("submission rejected", map[string]interface{}{"error": err})
		return SubmitResult{}, &SubmissionError{Err: err}
	}

	s.submitted = true
	metrics.WizardSubmissions.WithLabelValues(s.def.Kind, "accepted").Inc()
	if s.store != nil {
		if err := s.store.Clear(ctx, s.key); err != nil {
			s.logger.Warn("failed to clear wizard snapshot", map[string]interface{}{"error": err})
		}
	}
	s.logger.Info("wizard submitted", map[string]interface{}{"submissionId": result.ID, "status": result.Status})
	return result, nil
}

// Restore resumes from the stored snapshot, if any. The stored step is
// clamped into range in case the wizard has shrunk since it was saved.
func (s *Session[T]) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("load snapshot %s: %w", s.key, err)
	}
	if snap == nil {
		return false, nil
	}

	data := s.def.NewData()
	if len(snap.Data) > 0 {
		if err := json.Unmarshal(snap.Data, &data); err != nil {
			return false, fmt.Errorf("decode snapshot %s: %w", s.key, err)
		}
	}
	s.data = data
	s.current = min(max(snap.Step, 0), s.def.TotalSteps()-1)
	return true, nil
}

// ValidateCurrent evaluates the current step without moving.
func (s *Session[T]) ValidateCurrent() validation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def.ValidateStep(s.current, &s.data)
}

// Data returns a shallow copy of the form.
func (s *Session[T]) Data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Session[T]) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentStepName returns the name of the step the session is on.
func (s *Session[T]) CurrentStepName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def.Steps[s.current].Name
}

func (s *Session[T]) TotalSteps() int {
	return s.def.TotalSteps()
}

func (s *Session[T]) IsTerminal() bool {
	return s.CurrentStep() == s.def.TotalSteps()-1
}

func (s *Session[T]) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Progress is the share of steps reached, as a percentage.
func (s *Session[T]) Progress() int {
	return (s.CurrentStep() + 1) * 100 / s.def.TotalSteps()
}

func (s *Session[T]) stepError(i int, res validation.Result) *StepError {
	name := s.def.Steps[i].Name
	metrics.StepValidationFailures.WithLabelValues(s.def.Kind, name).Inc()
	s.logger.Debug("step validation failed", map[string]interface{}{
		"step":   i,
		"errors": res.Errors,
	})
	return &StepError{Wizard: s.def.Kind, Step: i, Name: name, Errors: res.Errors}
}

// persistLocked writes the snapshot. Callers hold s.mu.
func (s *Session[T]) persistLocked(ctx context.Context) {
	if s.store == nil || s.submitted {
		return
	}
	raw, err := json.Marshal(s.data)
	if err == nil {
		err = s.store.Save(ctx, s.key, Snapshot{Step: s.current, Data: raw})
	}
	if err != nil {
		s.logger.Warn("failed to persist wizard snapshot", map[string]interface{}{
			"step":  s.current,
			"error": err,
		})
	}
}

func (s *Session[T]) notify(data T) {
	if s.observer != nil {
		s.observer(data)
	}
}
