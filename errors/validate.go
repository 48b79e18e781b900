package errors

import "fmt"

// ValidateError enumerates row-integrity failures.
type ValidateError struct {
	Kind ValidateKind
	Msg  string
}

type ValidateKind int

const (
	IncompatibleDataType ValidateKind = iota
	NullValueOnNotNullField
	DuplicateEntryOnUniqueField
	DuplicateEntryOnPrimaryKeyField
	ReferencedValueNotFound
	CannotDropTableWithReferencing
)

func (e *ValidateError) Error() string { return e.Msg }

func NewValidateError(kind ValidateKind, format string, args ...any) error {
	return wrap(StageValidate, &ValidateError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}
