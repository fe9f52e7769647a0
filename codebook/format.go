package codebook

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/dev-reflct/splatq/internal/conv"
	"github.com/dev-reflct/splatq/internal/hash"
	"github.com/dev-reflct/splatq/table"
)

// Artifact layout, all integers little-endian:
//
//	magic       [4]byte "SPQC"
//	version     u8
//	compression u8
//	flags       u8
//	labelWidth  u8  (1, 2 or 4 bytes per label)
//	k           u32
//	centroids   u32
//	iterations  u32
//	rows        u32
//	group       u16 length + bytes
//	columns     u16 count, then per column u16 length + name, u8 data type
//	rawLen      u32
//	payloadLen  u32
//	payload     centroid columns (native type, column-major) then labels
//	checksum    u32 CRC32C of everything before it
const (
	magic         = "SPQC"
	formatVersion = 1

	flagConverged  = 1 << 0
	flagDegenerate = 1 << 1
)

func labelWidth(centroids int) int {
	switch {
	case centroids <= math.MaxUint8+1:
		return 1
	case centroids <= math.MaxUint16+1:
		return 2
	default:
		return 4
	}
}

func appendString(b []byte, s string) ([]byte, error) {
	n, err := conv.IntToUint16(len(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", table.ErrSchema, s, err)
	}
	b = binary.LittleEndian.AppendUint16(b, n)
	return append(b, s...), nil
}

func appendUint32(b []byte, v int) ([]byte, error) {
	u, err := conv.IntToUint32(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", table.ErrSchema, err)
	}
	return binary.LittleEndian.AppendUint32(b, u), nil
}

// Marshal encodes cb with the given payload compression.
func Marshal(cb *Codebook, c Compression) ([]byte, error) {
	data, _, err := marshal(cb, c)
	return data, err
}

func marshal(cb *Codebook, c Compression) ([]byte, Compression, error) {
	if cb.Centroids == nil || cb.Centroids.NumColumns() == 0 {
		return nil, 0, fmt.Errorf("%w: codebook has no centroid columns", table.ErrSchema)
	}
	count := cb.NumCentroids()
	ncols, err := conv.IntToUint16(cb.Centroids.NumColumns())
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", table.ErrSchema, err)
	}

	var raw bytes.Buffer
	for _, col := range cb.Centroids.Columns() {
		if err := binary.Write(&raw, binary.LittleEndian, col.Data()); err != nil {
			return nil, 0, err
		}
	}
	width := labelWidth(count)
	for _, l := range cb.Labels {
		if int(l) >= count {
			return nil, 0, fmt.Errorf("%w: label %d for %d centroids", table.ErrIndex, l, count)
		}
		switch width {
		case 1:
			raw.WriteByte(byte(l))
		case 2:
			raw.Write(binary.LittleEndian.AppendUint16(nil, uint16(l)))
		default:
			raw.Write(binary.LittleEndian.AppendUint32(nil, l))
		}
	}

	payload, applied, err := compress(raw.Bytes(), c)
	if err != nil {
		return nil, 0, err
	}

	var flags byte
	if cb.Converged {
		flags |= flagConverged
	}
	if cb.Degenerate {
		flags |= flagDegenerate
	}

	b := make([]byte, 0, 64+len(payload))
	b = append(b, magic...)
	b = append(b, formatVersion, byte(applied), flags, byte(width))
	for _, v := range []int{cb.K, count, cb.Iterations, len(cb.Labels)} {
		if b, err = appendUint32(b, v); err != nil {
			return nil, 0, err
		}
	}
	if b, err = appendString(b, cb.Group); err != nil {
		return nil, 0, err
	}
	b = binary.LittleEndian.AppendUint16(b, ncols)
	for _, col := range cb.Centroids.Columns() {
		if b, err = appendString(b, col.Name()); err != nil {
			return nil, 0, err
		}
		b = append(b, byte(col.Type()))
	}
	for _, v := range []int{raw.Len(), len(payload)} {
		if b, err = appendUint32(b, v); err != nil {
			return nil, 0, err
		}
	}
	b = append(b, payload...)
	return hash.AppendCRC32C(b), applied, nil
}

// Encode writes the marshaled codebook to w.
func Encode(w io.Writer, cb *Codebook, c Compression) (int64, error) {
	data, err := Marshal(cb, c)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Decode reads a whole artifact from r.
func Decode(r io.Reader) (*Codebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Checksum returns the CRC32C trailer of a marshaled artifact.
func Checksum(data []byte) uint32 {
	return hash.Trailer(data)
}

type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.b) {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrCorrupted, r.off)
		return nil
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *reader) u8() byte {
	if p := r.next(1); p != nil {
		return p[0]
	}
	return 0
}

func (r *reader) u16() int {
	if p := r.next(2); p != nil {
		return int(binary.LittleEndian.Uint16(p))
	}
	return 0
}

func (r *reader) u32() int {
	p := r.next(4)
	if p == nil {
		return 0
	}
	v, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(p))
	if err != nil {
		r.err = fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return v
}

func (r *reader) str() string {
	return string(r.next(r.u16()))
}

// Unmarshal decodes an artifact produced by Marshal.
func Unmarshal(data []byte) (*Codebook, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return nil, ErrInvalidMagic
	}
	if len(data) < len(magic)+8 {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupted)
	}
	body, ok := hash.CheckCRC32C(data)
	if !ok {
		return nil, ErrChecksum
	}

	r := &reader{b: body, off: len(magic)}
	if v := r.u8(); v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}
	comp := Compression(r.u8())
	flags := r.u8()
	width := int(r.u8())
	cb := &Codebook{
		K:          r.u32(),
		Converged:  flags&flagConverged != 0,
		Degenerate: flags&flagDegenerate != 0,
	}
	count := r.u32()
	cb.Iterations = r.u32()
	rows := r.u32()
	cb.Group = r.str()

	ncols := r.u16()
	type colSpec struct {
		name string
		typ  table.DataType
	}
	specs := make([]colSpec, 0, ncols)
	rowBytes := 0
	for range ncols {
		s := colSpec{name: r.str(), typ: table.DataType(r.u8())}
		specs = append(specs, s)
		rowBytes += s.typ.Size()
	}
	rawLen := r.u32()
	payload := r.next(r.u32())
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupted, len(body)-r.off)
	}
	if ncols == 0 || count == 0 || width != labelWidth(count) {
		return nil, fmt.Errorf("%w: bad shape", ErrCorrupted)
	}
	if rawLen != count*rowBytes+rows*width {
		return nil, fmt.Errorf("%w: payload size %d does not match shape", ErrCorrupted, rawLen)
	}

	raw, err := decompress(payload, comp, rawLen)
	if err != nil {
		return nil, err
	}

	pr := bytes.NewReader(raw)
	cols := make([]*table.Column, 0, ncols)
	for _, s := range specs {
		col, err := table.Zeros(s.name, s.typ, count)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
		if err := binary.Read(pr, binary.LittleEndian, col.Data()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
		cols = append(cols, col)
	}
	if cb.Centroids, err = table.New(cols...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	lr := &reader{b: raw[len(raw)-pr.Len():]}
	cb.Labels = make([]uint32, rows)
	for i := range cb.Labels {
		var l int
		switch width {
		case 1:
			l = int(lr.u8())
		case 2:
			l = lr.u16()
		default:
			l = lr.u32()
		}
		if l >= count {
			return nil, fmt.Errorf("%w: label %d for %d centroids", ErrCorrupted, l, count)
		}
		cb.Labels[i] = uint32(l)
	}
	if lr.err != nil {
		return nil, lr.err
	}
	return cb, nil
}
