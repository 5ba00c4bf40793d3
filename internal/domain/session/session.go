// Package session models the mutable working state of one deployment-config
// generation run.
package session

import (
	"strings"
	"time"

	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	"github.com/Microsoft/data-accelerator/internal/domain/values"
)

// Session is created once per deployment request, threaded through every
// pipeline step and discarded after its tokens are extracted.
//
// The flow definition is read-only for steps. Tokens and attachments are the
// only channel between steps: a step may rely on everything written by steps
// with a smaller order key.
type Session struct {
	id          values.SessionID
	flow        *entities.FlowConfig
	tokens      *TokenStore
	attachments map[string]any
	statuses    []StepStatus
	startTime   time.Time
}

// StepStatus is the outcome line a step reported.
type StepStatus struct {
	Step     string        `json:"step" yaml:"step"`
	Status   string        `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration_ms" yaml:"duration_ms"`
}

// New creates a session for the given (already sanitized) flow.
func New(flow *entities.FlowConfig) *Session {
	return NewWithID(values.NewSessionID(), flow)
}

// NewWithID creates a session with a specific ID.
func NewWithID(id values.SessionID, flow *entities.FlowConfig) *Session {
	return &Session{
		id:          id,
		flow:        flow,
		tokens:      NewTokenStore(),
		attachments: make(map[string]any),
		statuses:    make([]StepStatus, 0, 8),
		startTime:   time.Now(),
	}
}

// ID returns the session ID.
func (s *Session) ID() values.SessionID {
	return s.id
}

// FlowName returns the name of the flow being deployed.
func (s *Session) FlowName() string {
	if s.flow == nil {
		return ""
	}
	return s.flow.Name
}

// Flow returns the flow definition.
func (s *Session) Flow() *entities.FlowConfig {
	return s.flow
}

// Gui returns the authored section of the flow, or nil.
func (s *Session) Gui() *entities.FlowGuiConfig {
	if s.flow == nil {
		return nil
	}
	return s.flow.Gui
}

// Tokens returns the session token table.
func (s *Session) Tokens() *TokenStore {
	return s.tokens
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Attach stores an artifact under name. The session owns it from now on;
// consumers receive the same reference.
func (s *Session) Attach(name string, artifact any) {
	s.attachments[name] = artifact
}

// Attachment returns the artifact stored under name if it has type T.
func Attachment[T any](s *Session, name string) (T, bool) {
	var zero T
	raw, ok := s.attachments[name]
	if !ok {
		return zero, false
	}
	typed, ok := raw.(T)
	return typed, ok
}

// AddStatus records the outcome of a step.
func (s *Session) AddStatus(step, status string, duration time.Duration) {
	s.statuses = append(s.statuses, StepStatus{Step: step, Status: status, Duration: duration})
}

// Statuses returns the recorded step outcomes in execution order.
func (s *Session) Statuses() []StepStatus {
	out := make([]StepStatus, len(s.statuses))
	copy(out, s.statuses)
	return out
}

// StatusText renders the step outcomes as "<step>: <status>" lines.
func (s *Session) StatusText() string {
	var b strings.Builder
	for i, st := range s.statuses {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(st.Step)
		b.WriteString(": ")
		b.WriteString(st.Status)
	}
	return b.String()
}
