package errors

import "fmt"

// PlanError enumerates name-resolution and index-selection failures.
type PlanError struct {
	Kind PlanKind
	Msg  string
}

type PlanKind int

const (
	ColumnNotFound PlanKind = iota
	TableNotFound
	AmbiguousColumn
	UnsupportedIndexExpr
)

func (e *PlanError) Error() string { return e.Msg }

func NewPlanError(kind PlanKind, format string, args ...any) error {
	return wrap(StagePlan, &PlanError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}
