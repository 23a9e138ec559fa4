package entities

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
)

// Vector is stored as a little-endian float32 blob.
type Vector []float32

func (Vector) GormDataType() string { return "blob" }

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return v.Bytes(), nil
}

func (v *Vector) Scan(src any) error {
	switch b := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		out, err := VectorFromBytes(b)
		if err != nil {
			return err
		}
		*v = out
		return nil
	case string:
		out, err := VectorFromBytes([]byte(b))
		if err != nil {
			return err
		}
		*v = out
		return nil
	default:
		return fmt.Errorf("vector: unsupported scan type %T", src)
	}
}

func (v Vector) Bytes() []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func VectorFromBytes(b []byte) (Vector, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: blob length %d is not a multiple of 4", len(b))
	}
	out := make(Vector, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// Cosine returns the cosine similarity of v and w, 0 when either is a zero
// vector or the lengths differ.
func (v Vector) Cosine(w Vector) float64 {
	if len(v) != len(w) || len(v) == 0 {
		return 0
	}
	var dot, nv, nw float64
	for i := range v {
		a, b := float64(v[i]), float64(w[i])
		dot += a * b
		nv += a * a
		nw += b * b
	}
	if nv == 0 || nw == 0 {
		return 0
	}
	return dot / (math.Sqrt(nv) * math.Sqrt(nw))
}
