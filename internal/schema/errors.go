package schema

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNothingSelected indicates an empty field selection. Callers should prompt
// for a selection instead of treating it as a failure.
var ErrNothingSelected = errors.New("no fields selected")

// UnknownFieldError indicates a field name that the schema does not define.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("schema mismatch: unknown field %q", e.Name)
}

// RoleMismatchError indicates a field used in a role it does not have, e.g. a
// categorical code fed to the projection.
type RoleMismatchError struct {
	Field string
	Have  Role
	Want  Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: field %q is %s, want %s", e.Field, e.Have, e.Want)
}

// UnmappedCategoryError indicates a raw code that has no bucket in the
// field's mapping.
type UnmappedCategoryError struct {
	Field   string
	Mapping string
	Code    float64
}

func (e *UnmappedCategoryError) Error() string {
	code := strconv.FormatFloat(e.Code, 'g', -1, 64)
	if e.Field != "" {
		return fmt.Sprintf("unmapped category: code %s of field %q not in mapping %q", code, e.Field, e.Mapping)
	}
	return fmt.Sprintf("unmapped category: code %s not in mapping %q", code, e.Mapping)
}
