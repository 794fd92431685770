package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobState is a step of the pipeline state machine.
type JobState string

const (
	StateCreated      JobState = "created"
	StateValidated    JobState = "validated"
	StateAcquiring    JobState = "acquiring"
	StateAcquired     JobState = "acquired"
	StateTranscribing JobState = "transcribing"
	StateTranscribed  JobState = "transcribed"
	StatePackaging    JobState = "packaging"
	StatePackaged     JobState = "packaged"
	StateDelivered    JobState = "delivered"
	StateFailed       JobState = "failed"
	StateCleaned      JobState = "cleaned"
)

// next lists the single forward successor of every happy-path state.
var next = map[JobState]JobState{
	StateCreated:      StateValidated,
	StateValidated:    StateAcquiring,
	StateAcquiring:    StateAcquired,
	StateAcquired:     StateTranscribing,
	StateTranscribing: StateTranscribed,
	StateTranscribed:  StatePackaging,
	StatePackaging:    StatePackaged,
	StatePackaged:     StateDelivered,
	StateDelivered:    StateCleaned,
}

// Terminal reports whether no further transition is allowed.
func (s JobState) Terminal() bool {
	return s == StateCleaned
}

// CanTransition reports whether from → to is a legal move. Failed is
// reachable from every non-terminal state, and only Cleaned follows it.
func CanTransition(from, to JobState) bool {
	switch {
	case from == StateFailed:
		return to == StateCleaned
	case to == StateFailed:
		return !from.Terminal()
	default:
		return next[from] == to
	}
}

// NewJobID returns a random UUIDv4, independent of wall-clock time.
func NewJobID() string {
	return uuid.NewString()
}

// Job is one run of the pipeline. It is created per request and never
// reused; its ID and workspace are 1:1.
type Job struct {
	ID          string
	Source      SourceDescriptor
	Credential  string
	Language    string
	Workspace   string
	AudioPath   string
	Artifacts   []string
	ArchivePath string
	State       JobState
	Cause       error
	CreatedAt   time.Time
}

// NewJob creates a job in the Created state with a fresh ID.
func NewJob(source SourceDescriptor, credential, language string) *Job {
	return &Job{
		ID:         NewJobID(),
		Source:     source,
		Credential: credential,
		Language:   language,
		State:      StateCreated,
		CreatedAt:  time.Now(),
	}
}

// Transition moves the job to state to, rejecting illegal moves.
func (j *Job) Transition(to JobState) error {
	if !CanTransition(j.State, to) {
		return fmt.Errorf("illegal job transition %s -> %s", j.State, to)
	}
	j.State = to
	return nil
}

// Fail records cause and moves the job to Failed. The first recorded cause
// is kept.
func (j *Job) Fail(cause error) error {
	if j.Cause == nil {
		j.Cause = cause
	}
	return j.Transition(StateFailed)
}

// Succeeded reports whether the job reached delivery without failing.
func (j *Job) Succeeded() bool {
	return j.Cause == nil && (j.State == StateDelivered || j.State == StateCleaned)
}
