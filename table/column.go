package table

import "fmt"

// DataType identifies the element type of a column buffer.
type DataType uint8

const (
	Int8 DataType = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// String returns the name of the data type.
func (d DataType) String() string {
	switch d {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// Size returns the element size in bytes.
func (d DataType) Size() int {
	switch d {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// Numeric is the set of element types a column may hold.
type Numeric interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | float32 | float64
}

// buffer is the type-erased view of a column's backing slice.
type buffer interface {
	len() int
	get(i int) float64
	set(i int, v float64)
	clone() buffer
	grow(n int) buffer
	copyFrom(dstOff int, src buffer) bool
	fillStrided(dst []float32, offset, stride int)
	raw() any
}

type typedBuffer[T Numeric] []T

func (b typedBuffer[T]) len() int             { return len(b) }
func (b typedBuffer[T]) get(i int) float64    { return float64(b[i]) }
func (b typedBuffer[T]) set(i int, v float64) { b[i] = T(v) }
func (b typedBuffer[T]) raw() any             { return []T(b) }
func (b typedBuffer[T]) clone() buffer        { return append(typedBuffer[T](nil), b...) }
func (b typedBuffer[T]) grow(n int) buffer    { return make(typedBuffer[T], n) }

func (b typedBuffer[T]) copyFrom(dstOff int, src buffer) bool {
	s, ok := src.(typedBuffer[T])
	if !ok {
		return false
	}
	copy(b[dstOff:], s)
	return true
}

func (b typedBuffer[T]) fillStrided(dst []float32, offset, stride int) {
	for i, v := range b {
		dst[i*stride+offset] = float32(v)
	}
}

// Column is a named, homogeneous numeric buffer.
type Column struct {
	name string
	typ  DataType
	buf  buffer
}

// NewColumn wraps data in a column. The column takes ownership of data.
func NewColumn[T Numeric](name string, data []T) *Column {
	return &Column{name: name, typ: dataTypeOf[T](), buf: typedBuffer[T](data)}
}

// Zeros returns a zero-filled column of the given type and length.
func Zeros(name string, typ DataType, n int) (*Column, error) {
	var buf buffer
	switch typ {
	case Int8:
		buf = make(typedBuffer[int8], n)
	case Uint8:
		buf = make(typedBuffer[uint8], n)
	case Int16:
		buf = make(typedBuffer[int16], n)
	case Uint16:
		buf = make(typedBuffer[uint16], n)
	case Int32:
		buf = make(typedBuffer[int32], n)
	case Uint32:
		buf = make(typedBuffer[uint32], n)
	case Float32:
		buf = make(typedBuffer[float32], n)
	case Float64:
		buf = make(typedBuffer[float64], n)
	default:
		return nil, fmt.Errorf("%w: unsupported data type %v", ErrSchema, typ)
	}
	return &Column{name: name, typ: typ, buf: buf}, nil
}

func dataTypeOf[T Numeric]() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case int32:
		return Int32
	case uint32:
		return Uint32
	case float32:
		return Float32
	default:
		return Float64
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the element type.
func (c *Column) Type() DataType { return c.typ }

// Len returns the number of elements.
func (c *Column) Len() int { return c.buf.len() }

// At returns element i as float64.
func (c *Column) At(i int) float64 { return c.buf.get(i) }

// Set stores v at element i, converting to the column type.
func (c *Column) Set(i int, v float64) { c.buf.set(i, v) }

// Data returns the backing slice ([]float32, []uint8, ...). It is not a copy.
func (c *Column) Data() any { return c.buf.raw() }

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	return &Column{name: c.name, typ: c.typ, buf: c.buf.clone()}
}

// Data returns the typed backing slice of c, or false when T does not match.
func Data[T Numeric](c *Column) ([]T, bool) {
	b, ok := c.buf.(typedBuffer[T])
	return []T(b), ok
}
