package kmeans

import (
	"errors"
	"fmt"

	"github.com/dev-reflct/splatq/table"
)

var (
	// ErrEmptyInput is returned when the point table has no rows.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidParameter is returned for non-positive k or iteration budgets
	// and for warm-start tables whose row count is not k.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrDimensionMismatch is returned when warm-start centroids do not carry the
// columns of the point table.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	Column   string
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("dimension mismatch: centroid table lacks column %q", e.Column)
	}
	return fmt.Sprintf("dimension mismatch: expected %d columns, got %d", e.Expected, e.Actual)
}

// Unwrap lets errors.Is match table.ErrSchema.
func (e *ErrDimensionMismatch) Unwrap() error { return table.ErrSchema }
