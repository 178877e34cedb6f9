package services

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageReceived     Stage = "received"
	StageExtracting   Stage = "extracting"
	StageProcessingJD Stage = "processing_jd"
	StageGenerating   Stage = "generating"
	StageScoring      Stage = "scoring"
	StageSaving       Stage = "saving"
	StageDone         Stage = "done"
	StageError        Stage = "error"
)

var stageOrdinals = map[Stage]int{
	StageReceived:     0,
	StageExtracting:   1,
	StageProcessingJD: 2,
	StageGenerating:   3,
	StageScoring:      4,
	StageSaving:       5,
	StageDone:         6,
}

// Ordinal is the stage's position in the request state machine. StageError has none.
func (s Stage) Ordinal() (int, bool) {
	ord, ok := stageOrdinals[s]
	return ord, ok
}

// ProgressEvent is one marker of the streamed generation.
type ProgressEvent struct {
	Step          Stage  `json:"step"`
	ApplicationID string `json:"applicationId,omitempty"`
	Message       string `json:"message,omitempty"`
}

func (e ProgressEvent) Terminal() bool {
	return e.Step == StageDone || e.Step == StageError
}

// ProgressFunc receives markers in order. It returns false once the caller is gone.
type ProgressFunc func(ProgressEvent) bool

var (
	errProgressClosed    = errors.New("progress already terminated")
	errProgressCancelled = errors.New("progress consumer went away")
)

// progressTracker enforces strictly increasing markers and a single terminal event.
type progressTracker struct {
	emit   ProgressFunc
	last   int
	closed bool
}

func newProgressTracker(emit ProgressFunc) *progressTracker {
	if emit == nil {
		emit = func(ProgressEvent) bool { return true }
	}
	return &progressTracker{emit: emit, last: -1}
}

func (t *progressTracker) advance(stage Stage) error {
	return t.send(ProgressEvent{Step: stage})
}

func (t *progressTracker) done(applicationID string) error {
	return t.send(ProgressEvent{Step: StageDone, ApplicationID: applicationID})
}

func (t *progressTracker) send(ev ProgressEvent) error {
	if t.closed {
		return errProgressClosed
	}

	ord, ok := ev.Step.Ordinal()
	if !ok {
		return fmt.Errorf("unknown progress stage %q", ev.Step)
	}
	if ord <= t.last {
		return fmt.Errorf("progress %q cannot follow a later stage", ev.Step)
	}
	t.last = ord

	if ev.Step == StageDone {
		t.closed = true
	}

	if !t.emit(ev) {
		t.closed = true
		return errProgressCancelled
	}

	return nil
}

// fail emits the error marker unless the stream already terminated.
func (t *progressTracker) fail(message string) {
	if t.closed {
		return
	}
	t.closed = true
	t.emit(ProgressEvent{Step: StageError, Message: message})
}
