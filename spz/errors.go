package spz

import (
	"fmt"

	"github.com/arloliu/gsplat/errs"
)

// MixedVariantError reports a point whose field variant differs from the
// first point of the same sequence.
type MixedVariantError struct {
	Field string
	Index int
	First string
	Got   string
}

func (e *MixedVariantError) Error() string {
	return fmt.Sprintf("%s: %s of point %d is %s, first point is %s", errs.ErrMixedVariant, e.Field, e.Index, e.Got, e.First)
}

func (e *MixedVariantError) Unwrap() error { return errs.ErrMixedVariant }

// VariantMismatchError reports a field variant that disagrees with the header.
type VariantMismatchError struct {
	Field string
	Got   string
	Want  string
}

func (e *VariantMismatchError) Error() string {
	return fmt.Sprintf("%s: %s is %s, header expects %s", errs.ErrVariantMismatch, e.Field, e.Got, e.Want)
}

func (e *VariantMismatchError) Unwrap() error { return errs.ErrVariantMismatch }

// CountMismatchError reports a point count that disagrees with the header.
type CountMismatchError struct {
	Actual int
	Header int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d points, header declares %d", errs.ErrCountMismatch, e.Actual, e.Header)
}

func (e *CountMismatchError) Unwrap() error { return errs.ErrCountMismatch }
