package forms

import (
	"context"
	"sync"
	"time"
)

// SubmitFunc is the external persistence collaborator. It receives the
// finalized payload and is the only asynchronous boundary in the engine.
type SubmitFunc func(ctx context.Context, sub Submission) error

// Callbacks notify the owning list/page collaborator of session outcomes.
// OnSubmitted fires exactly once per successful submission; OnCancelled
// carries no payload.
type Callbacks struct {
	OnSubmitted func(sub Submission)
	OnFailure   func(err error)
	OnCancelled func()
}

// Session drives one wizard over one record: Step(1..N) plus the virtual
// Submitting and Closed states. All methods are safe for use from the UI
// goroutine alongside the submit goroutine; each open wizard owns its record
// exclusively.
type Session struct {
	mu        sync.Mutex
	schema    *Schema
	record    *Record
	step      int
	busy      bool // single-flight guard while Submitting
	closed    bool
	gen       uint64 // bumped on reopen; settles from an older gen are stale
	createdAt time.Time
	submit    SubmitFunc
	cb        Callbacks
}

// NewSession opens a wizard in create mode at step 1 with a defaulted record.
func NewSession(schema *Schema, submit SubmitFunc, cb Callbacks) *Session {
	return &Session{
		schema: schema,
		record: NewRecord(schema),
		step:   1,
		submit: submit,
		cb:     cb,
	}
}

// Edit switches the session to a (new) edit target: the record is fully
// replaced from the target's values — never merged — with schema defaults for
// absent fields, and navigation resets to step 1. An in-flight submission for
// the previous target becomes stale and its result will be dropped.
func (s *Session) Edit(target map[string]string, items []LineItem, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.record.Populate(target, items)
	s.createdAt = createdAt
	s.step = 1
	s.busy = false
	s.gen++
}

// Schema returns the schema this session interprets.
func (s *Session) Schema() *Schema { return s.schema }

// Step returns the current 1-based step index.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Closed reports whether the session has reached its terminal state.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ── Record access ────────────────────────────────────────────────────────────

// Set stores a field value; editing is never blocked by validation state.
func (s *Session) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.record.Set(name, value)
	}
}

// Get returns a field's current value.
func (s *Session) Get(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}
	return s.record.Get(name)
}

// FieldError revalidates one field, for inline display.
func (s *Session) FieldError(name string) *FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.record.FieldError(name)
}

// AddItem appends a line-item row.
func (s *Session) AddItem(item LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.record.AddItem(item)
	}
}

// SetItem replaces the line-item row at index i.
func (s *Session) SetItem(i int, item LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.record.SetItem(i, item)
	}
}

// RemoveItem deletes the line-item row at index i.
func (s *Session) RemoveItem(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.record.RemoveItem(i)
	}
}

// Items returns the current line-item rows.
func (s *Session) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.record.Items()
}

// Totals recomputes the live totals preview from the current items.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Totals{}
	}
	return s.record.Totals()
}

// Errors revalidates every field in schema order, for summary display.
func (s *Session) Errors() []FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.record.Validate()
}

// ── Navigation ───────────────────────────────────────────────────────────────

// StepSatisfied reports whether step i's gate currently holds.
func (s *Session) StepSatisfied(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepSatisfiedLocked(i)
}

func (s *Session) stepSatisfiedLocked(i int) bool {
	if s.closed {
		return false
	}
	step, ok := s.schema.Step(i)
	if !ok {
		return false
	}
	return step.Satisfied(s.record)
}

// Next advances to the following step if the current step's gate holds.
// At the last step, or with an unsatisfied gate, it is a no-op returning
// false — the controller re-checks the gate itself regardless of any
// disabled state in the presentation layer.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.busy || s.step >= s.schema.StepCount() {
		return false
	}
	if !s.stepSatisfiedLocked(s.step) {
		return false
	}
	s.step++
	return true
}

// Prev moves back one step; always allowed except at step 1.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.busy || s.step <= 1 {
		return false
	}
	s.step--
	return true
}

// Cancel discards the record and closes the session, signalling the owner
// with no payload. A submission still in flight becomes stale.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.record = nil
	cb := s.cb.OnCancelled
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// ── Submission ───────────────────────────────────────────────────────────────

// Submittable reports whether every field across all steps passes validation
// and every step's cross-field predicate holds.
func (s *Session) Submittable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submittableLocked()
}

func (s *Session) submittableLocked() bool {
	if s.closed {
		return false
	}
	if len(s.record.Validate()) > 0 {
		return false
	}
	for _, step := range s.schema.Steps {
		if step.Extra != nil && !step.Extra(s.record) {
			return false
		}
	}
	return true
}

// Submit freezes the record into a payload and dispatches the persistence
// collaborator. It returns false — a no-op, not an error — when the gate
// fails, a submission is already in flight, or the session is closed.
//
// On collaborator success the session closes and OnSubmitted receives the
// payload exactly once; on failure the session returns to the last step with
// the busy flag cleared and OnFailure receives the opaque reason. A result
// arriving after Cancel (or after a reopen on a different target) is dropped
// silently.
func (s *Session) Submit(ctx context.Context) bool {
	s.mu.Lock()
	if s.closed || s.busy || !s.submittableLocked() {
		s.mu.Unlock()
		return false
	}
	sub := s.record.submission(s.createdAt, time.Now().UTC())
	s.busy = true
	gen := s.gen
	submit := s.submit
	s.mu.Unlock()

	go func() {
		err := submit(ctx, sub)
		s.settle(gen, sub, err)
	}()
	return true
}

func (s *Session) settle(gen uint64, sub Submission, err error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		// Stale response: the user already discarded or replaced this record.
		s.mu.Unlock()
		return
	}
	s.busy = false
	if err != nil {
		cb := s.cb.OnFailure
		s.mu.Unlock()
		if cb != nil {
			cb(err)
		}
		return
	}
	s.closed = true
	s.record = nil
	cb := s.cb.OnSubmitted
	s.mu.Unlock()
	if cb != nil {
		cb(sub)
	}
}
