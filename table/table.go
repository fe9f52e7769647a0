package table

import "fmt"

// Row maps column names to scalar values for one record.
//
// A Row is owned by the caller and meant to be reused: GetRow overwrites
// entries in place, so once a Row has seen every column name it no longer
// allocates.
type Row map[string]float64

// Table is an ordered collection of equal-length named columns.
//
// A Table owns its columns exclusively. It is not safe for concurrent
// mutation; concurrent reads are safe.
type Table struct {
	columns []*Column
	index   map[string]int
	numRows int
}

// New builds a table from columns. It fails with ErrSchema when column lengths
// differ or names collide.
//
// The table takes ownership of the columns: it shares their storage, so a
// column must not be written through another table or slice afterwards.
// Pass Column.Clone to keep an independent copy.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("%w: column %d is nil", ErrSchema, i)
		}
		if i == 0 {
			t.numRows = c.Len()
		} else if c.Len() != t.numRows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", ErrSchema, c.name, c.Len(), t.numRows)
		}
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchema, c.name)
		}
		t.index[c.name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.numRows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// ColumnAt returns the i-th column in insertion order.
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

// Columns returns the columns in insertion order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.columns }

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// GetRow copies every column value at index into row.
func (t *Table) GetRow(index int, row Row) error {
	if index < 0 || index >= t.numRows {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, index, t.numRows)
	}
	for _, c := range t.columns {
		row[c.name] = c.buf.get(index)
	}
	return nil
}

// SetRow writes the values of row at index. Columns absent from row are left
// unchanged; entries of row that name no column are ignored.
func (t *Table) SetRow(index int, row Row) error {
	if index < 0 || index >= t.numRows {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, index, t.numRows)
	}
	for _, c := range t.columns {
		if v, ok := row[c.name]; ok {
			c.buf.set(index, v)
		}
	}
	return nil
}

// Value returns the value of column name at row index.
func (t *Table) Value(name string, index int) (float64, error) {
	c := t.Column(name)
	if c == nil {
		return 0, fmt.Errorf("%w: unknown column %q", ErrSchema, name)
	}
	if index < 0 || index >= t.numRows {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, index, t.numRows)
	}
	return c.buf.get(index), nil
}

// SetValue stores v in column name at row index.
func (t *Table) SetValue(name string, index int, v float64) error {
	c := t.Column(name)
	if c == nil {
		return fmt.Errorf("%w: unknown column %q", ErrSchema, name)
	}
	if index < 0 || index >= t.numRows {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, index, t.numRows)
	}
	c.buf.set(index, v)
	return nil
}

// Clone returns a deep copy with freshly allocated buffers.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	return &Table{columns: cols, index: cloneIndex(t.index), numRows: t.numRows}
}

// Select returns a deep-copied projection onto the named columns, in the
// given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c := t.Column(name)
		if c == nil {
			return nil, fmt.Errorf("%w: unknown column %q", ErrSchema, name)
		}
		cols = append(cols, c.Clone())
	}
	return New(cols...)
}

// SameSchema reports whether other has the same column names in the same order.
func (t *Table) SameSchema(other *Table) bool {
	if other == nil || len(t.columns) != len(other.columns) {
		return false
	}
	for i, c := range t.columns {
		if other.columns[i].name != c.name {
			return false
		}
	}
	return true
}

// Float32Rows flattens the table row-major into dst, which must hold at least
// NumRows*NumColumns values. If dst is nil a new slice is allocated.
//
// Element (row i, column j) is written at dst[i*NumColumns+j].
func (t *Table) Float32Rows(dst []float32) []float32 {
	dim := len(t.columns)
	n := t.numRows * dim
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for j, c := range t.columns {
		c.buf.fillStrided(dst, j, dim)
	}
	return dst
}

// Float32Row copies row index into dst in column order. dst must have length
// NumColumns.
func (t *Table) Float32Row(index int, dst []float32) {
	for j, c := range t.columns {
		dst[j] = float32(c.buf.get(index))
	}
}

// SetFloat32Row writes values in column order at row index.
func (t *Table) SetFloat32Row(index int, values []float32) {
	for j, c := range t.columns {
		c.buf.set(index, float64(values[j]))
	}
}

func cloneIndex(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
