package table

import "fmt"

// Combine concatenates tables row-wise.
//
// Columns are matched by name and type; the result holds the union of all
// columns in first-seen order. Rows coming from a table that lacks a column
// are zero in that column. The result never shares storage with its inputs.
func Combine(tables ...*Table) (*Table, error) {
	switch len(tables) {
	case 0:
		return New()
	case 1:
		return tables[0].Clone(), nil
	}

	type key struct {
		name string
		typ  DataType
	}

	var (
		order []*Column
		seen  = make(map[key]int)
		names = make(map[string]DataType)
		total int
	)
	for _, t := range tables {
		for _, c := range t.columns {
			k := key{c.name, c.typ}
			if _, ok := seen[k]; ok {
				continue
			}
			if prev, ok := names[c.name]; ok {
				return nil, fmt.Errorf("%w: column %q is both %v and %v", ErrSchema, c.name, prev, c.typ)
			}
			names[c.name] = c.typ
			seen[k] = len(order)
			order = append(order, c)
		}
		total += t.numRows
	}

	out := make([]*Column, len(order))
	for i, c := range order {
		out[i] = &Column{name: c.name, typ: c.typ, buf: c.buf.grow(total)}
	}

	offset := 0
	for _, t := range tables {
		for _, c := range t.columns {
			dst := out[seen[key{c.name, c.typ}]]
			dst.buf.copyFrom(offset, c.buf)
		}
		offset += t.numRows
	}

	return New(out...)
}
