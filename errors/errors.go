// Package errors holds the engine's closed error taxonomy. Every stage
// (translate, plan, evaluate, validate, execute, storage) returns a value of
// its own Go error type from this package rather than an ad-hoc string, so
// callers can type-switch or errors.As on the stage that failed.
package errors

import "fmt"

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageTranslate Stage = "translate"
	StagePlan      Stage = "plan"
	StageEvaluate  Stage = "evaluate"
	StageValidate  Stage = "validate"
	StageExecute   Stage = "execute"
	StageStorage   Stage = "storage"
)

// Error is the top-level envelope every public API returns. It wraps one
// stage-specific error value so fmt.Errorf("%w",...) chains stay intact.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}

// StorageMsg wraps an opaque error surfaced by a storage backend. The core
// never parses or retries it.
type StorageMsg struct {
	Msg string
}

func (e *StorageMsg) Error() string { return e.Msg }

func NewStorageMsg(format string, args ...any) error {
	return wrap(StageStorage, &StorageMsg{Msg: fmt.Sprintf(format, args...)})
}
