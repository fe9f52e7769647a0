// Package table implements the columnar container every other package works on.
//
// A Table is an ordered set of named, typed numeric columns of equal length.
// Rows are moved in and out through a reusable Row map so that hot loops do not
// allocate per call:
//
//	row := table.Row{}
//	for i := 0; i < t.NumRows(); i++ {
//	    if err := t.GetRow(i, row); err != nil {
//	        return err
//	    }
//	    // ... use row["x"], row["y"], ...
//	}
package table
