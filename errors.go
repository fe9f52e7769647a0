package splatq

import (
	"errors"
	"fmt"

	"github.com/dev-reflct/splatq/accel"
	"github.com/dev-reflct/splatq/internal/kmeans"
	"github.com/dev-reflct/splatq/table"
)

var (
	// ErrSchema is returned for column length, name or dimension mismatches.
	ErrSchema = table.ErrSchema

	// ErrIndex is returned for row indices outside a table.
	ErrIndex = table.ErrIndex

	// ErrEmptyInput is returned when the point table has no rows.
	ErrEmptyInput = kmeans.ErrEmptyInput

	// ErrInvalidParameter is returned for non-positive k or iteration budgets.
	ErrInvalidParameter = kmeans.ErrInvalidParameter

	// ErrDeviceUnavailable is returned when device execution was required but
	// no device could be acquired or the device failed.
	ErrDeviceUnavailable = accel.ErrDeviceUnavailable
)

// ErrDimensionMismatch indicates that warm-start centroids do not match the
// columns of the point table. It matches ErrSchema with errors.Is.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	Column   string
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("dimension mismatch: missing column %q", e.Column)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *kmeans.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, Column: dm.Column, cause: err}
	}
	return err
}
