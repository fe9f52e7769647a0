package splat

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dev-reflct/splatq/table"
)

// RequiredColumns are the columns every splat table must have.
var RequiredColumns = []string{
	"x", "y", "z",
	"rot_0", "rot_1", "rot_2", "rot_3",
	"scale_0", "scale_1", "scale_2",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"opacity",
}

const shPrefix = "f_rest_"

// MissingColumns returns the required columns t lacks.
func MissingColumns(t *table.Table) []string {
	var missing []string
	for _, name := range RequiredColumns {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsGaussianSplat reports whether t has every required column.
func IsGaussianSplat(t *table.Table) bool {
	return len(MissingColumns(t)) == 0
}

func shIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, shPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(shPrefix):])
	return n, err == nil && n >= 0
}

// SHColumns returns the f_rest_N columns of t ordered by N.
func SHColumns(t *table.Table) []string {
	var names []string
	for _, name := range t.ColumnNames() {
		if _, ok := shIndex(name); ok {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		ia, _ := shIndex(a)
		ib, _ := shIndex(b)
		return ia - ib
	})
	return names
}

// SHBands returns the number of spherical-harmonic bands above DC, 0 to 3.
// Coefficient counts that match no band are reported as 0.
func SHBands(t *table.Table) int {
	switch len(SHColumns(t)) {
	case 9:
		return 1
	case 24:
		return 2
	case 45:
		return 3
	default:
		return 0
	}
}
