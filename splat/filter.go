package splat

import (
	"math"

	"github.com/dev-reflct/splatq/table"
)

// FilterNonFinite returns t without the rows that hold a NaN or infinite
// value in any floating-point column, and the number of rows removed. When
// nothing is removed t itself is returned.
func FilterNonFinite(t *table.Table) (*table.Table, int, error) {
	n := t.NumRows()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	for _, col := range t.Columns() {
		switch col.Type() {
		case table.Float32:
			data, _ := table.Data[float32](col)
			for i, v := range data {
				if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
					keep[i] = false
				}
			}
		case table.Float64:
			data, _ := table.Data[float64](col)
			for i, v := range data {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					keep[i] = false
				}
			}
		}
	}

	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	if kept == n {
		return t, 0, nil
	}

	cols := make([]*table.Column, 0, t.NumColumns())
	for _, src := range t.Columns() {
		dst, err := table.Zeros(src.Name(), src.Type(), kept)
		if err != nil {
			return nil, 0, err
		}
		j := 0
		for i := range n {
			if keep[i] {
				dst.Set(j, src.At(i))
				j++
			}
		}
		cols = append(cols, dst)
	}
	out, err := table.New(cols...)
	if err != nil {
		return nil, 0, err
	}
	return out, n - kept, nil
}
