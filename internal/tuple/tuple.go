package tuple

import (
	"encoding/binary"
	"fmt"
)

// Tuple is a sequence of typed values paired with a schema reference.
type Tuple struct {
	Schema *Schema
	Values []Value
}

// New builds a tuple. The caller guarantees values conform to schema.
func New(schema *Schema, values []Value) *Tuple {
	return &Tuple{Schema: schema, Values: values}
}

func bitmapSize(n int) int {
	return (n + 7) / 8
}

// Serialize encodes the tuple as: a null bitmap, then, for non-null values
// in column order, the type-specific encoding described in spec.md §3.
func (t *Tuple) Serialize() []byte {
	n := len(t.Values)
	bitmap := make([]byte, bitmapSize(n))
	for i, v := range t.Values {
		if v.IsNull() {
			bitmap[i/8] |= 1 << uint(i%8)
		}
	}

	out := append([]byte{}, bitmap...)
	for _, v := range t.Values {
		if v.IsNull() {
			continue
		}
		switch v.Kind {
		case KindInteger:
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(v.Int))
			out = append(out, b[:]...)
		case KindBoolean:
			if v.Bool {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case KindText:
			var lb [2]byte
			binary.LittleEndian.PutUint16(lb[:], uint16(len(v.Text)))
			out = append(out, lb[:]...)
			out = append(out, v.Text...)
		}
	}
	return out
}

// Deserialize decodes bytes produced by Serialize, driven by schema: a
// null column consumes zero bytes for its value.
func Deserialize(data []byte, schema *Schema) (*Tuple, error) {
	n := schema.Len()
	bmSize := bitmapSize(n)
	if len(data) < bmSize {
		return nil, fmt.Errorf("tuple: truncated null bitmap")
	}
	bitmap := data[:bmSize]
	pos := bmSize

	values := make([]Value, n)
	for i, col := range schema.Columns {
		isNull := bitmap[i/8]&(1<<uint(i%8)) != 0
		if isNull {
			values[i] = Null()
			continue
		}
		switch col.Type {
		case Integer:
			if pos+8 > len(data) {
				return nil, fmt.Errorf("tuple: truncated integer column %q", col.Name)
			}
			values[i] = NewInt(int64(binary.LittleEndian.Uint64(data[pos : pos+8])))
			pos += 8
		case Boolean:
			if pos+1 > len(data) {
				return nil, fmt.Errorf("tuple: truncated boolean column %q", col.Name)
			}
			values[i] = NewBool(data[pos] != 0)
			pos++
		case Text:
			if pos+2 > len(data) {
				return nil, fmt.Errorf("tuple: truncated text length for column %q", col.Name)
			}
			l := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
			pos += 2
			if pos+l > len(data) {
				return nil, fmt.Errorf("tuple: truncated text column %q", col.Name)
			}
			text := make([]byte, l)
			copy(text, data[pos:pos+l])
			values[i] = NewText(text)
			pos += l
		default:
			return nil, fmt.Errorf("tuple: unknown column type for %q", col.Name)
		}
	}
	return &Tuple{Schema: schema, Values: values}, nil
}

// Clone deep-copies the tuple, including any text payloads.
func (t *Tuple) Clone() *Tuple {
	values := make([]Value, len(t.Values))
	for i, v := range t.Values {
		values[i] = v.Clone()
	}
	return &Tuple{Schema: t.Schema, Values: values}
}
