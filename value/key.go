package value

import (
	"encoding/binary"
	"fmt"
)

// Key is the orderable/hashable subset of Value usable as a row key
// : integers, bools, strings, dates/times, UUIDs, decimal, inet,
// bytea. F32/F64/Map/List/Point/Null are not representable.
type Key struct {
	v Value
}

// NewKey validates v's Kind against IsKeyable and wraps it.
func NewKey(v Value) (Key, error) {
	if !v.Kind.IsKeyable() {
		return Key{}, fmt.Errorf("value of kind %d is not keyable", v.Kind)
	}
	return Key{v: v}, nil
}

// MustKey panics on a non-keyable Value; used where the caller has already
// validated the column type (e.g. a declared INT primary key).
func MustKey(v Value) Key {
	k, err := NewKey(v)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) Value() Value { return k.v }

// Compare gives Key its total order; unlike Value.Compare it
// never returns ok=false since every Kind admitted by NewKey is orderable.
func (k Key) Compare(other Key) Ordering {
	ord, ok := Compare(k.v, other.v)
	if !ok {
		// Cross-kind keys (e.g. I32 vs Str) fall back to a stable
		// kind-then-bytes order so indexes stay total even over
		// heterogeneous schemaless key columns.
		if k.v.Kind != other.v.Kind {
			return compareInt64(int64(k.v.Kind), int64(other.v.Kind))
		}
		return EqualOrder
	}
	return ord
}

// Bytes returns a stable binary encoding that starts with the kind byte.
// Within one kind, byte order matches Compare only for I64, Str, Bool,
// Bytea and Uuid; every other kind is encoded as its String() text, whose
// byte order does not in general match Compare (I32 10 sorts before 9).
func (k Key) Bytes() []byte {
	switch k.v.Kind {
	case I64:
		buf := make([]byte, 9)
		buf[0] = byte(I64)
		binary.BigEndian.PutUint64(buf[1:], uint64(k.v.I64)^0x8000000000000000)
		return buf
	case Str:
		return append([]byte{byte(Str)}, []byte(k.v.Str)...)
	case Bool:
		if k.v.Bool {
			return []byte{byte(Bool), 1}
		}
		return []byte{byte(Bool), 0}
	case Bytea:
		return append([]byte{byte(Bytea)}, k.v.Bytea...)
	case Uuid:
		return append([]byte{byte(Uuid)}, k.v.UUID[:]...)
	default:
		return append([]byte{byte(k.v.Kind)}, []byte(k.v.String())...)
	}
}

func (k Key) String() string {
	return k.v.String()
}
