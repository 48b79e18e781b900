// Package value implements the Value sum type that backs every SQL value in
// the engine, its canonical string forms, comparison ordering,
// and the numeric promotion table used by arithmetic and comparison.
package value

import (
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a Value variant.
type Kind int

const (
	Null Kind = iota
	Bool
	I8
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Decimal
	Str
	Bytea
	Inet
	Date
	Timestamp
	Time
	Interval
	Uuid
	Map
	List
	Point
)

// Point is a 2D coordinate value.
type Point struct {
	X, Y float64
}

// Interval is a calendar-aware duration (months + a sub-month duration),
// matching SQL INTERVAL semantics rather than a flat time.Duration.
type Interval struct {
	Months int32
	Micros int64
}

// Value is the engine's runtime representation of a single SQL value.
// Exactly one of the typed fields is meaningful for a given Kind; this
// mirrors a tagged union without the allocation overhead of `any` for the
// hot numeric variants.
type Value struct {
	Kind Kind

	Bool    bool
	I8      int8
	I16     int16
	I32     int32
	I64     int64
	I128    big.Int
	U8      uint8
	U16     uint16
	U32     uint32
	U64     uint64
	U128    big.Int
	F32     float32
	F64     float64
	Decimal big.Rat // 128-bit fixed point, modeled as an exact rational
	Str     string
	Bytea   []byte
	Inet    net.IP
	Date    time.Time // y/m/d only
	Time    time.Time // h/m/s/ns only
	Tstamp  time.Time
	Intv    Interval
	UUID    uuid.UUID
	MapV    map[string]Value
	ListV   []Value
	Pt      Point
}

func NewNull() Value { return Value{Kind: Null} }

func NewBool(b bool) Value { return Value{Kind: Bool, Bool: b} }

func NewI64(v int64) Value { return Value{Kind: I64, I64: v} }

func NewF64(v float64) Value { return Value{Kind: F64, F64: v} }

func NewStr(s string) Value { return Value{Kind: Str, Str: s} }

func NewMap(m map[string]Value) Value { return Value{Kind: Map, MapV: m} }

func NewList(vs []Value) Value { return Value{Kind: List, ListV: vs} }

func (v Value) IsNull() bool { return v.Kind == Null }

// IsTruthy implements WHERE/HAVING's three-valued-logic collapse: Null and
// Bool(false) are both "not true".
func (v Value) IsTruthy() bool {
	return v.Kind == Bool && v.Bool
}

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Bool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case I8:
		return fmt.Sprintf("%d", v.I8)
	case I16:
		return fmt.Sprintf("%d", v.I16)
	case I32:
		return fmt.Sprintf("%d", v.I32)
	case I64:
		return fmt.Sprintf("%d", v.I64)
	case I128:
		return v.I128.String()
	case U8:
		return fmt.Sprintf("%d", v.U8)
	case U16:
		return fmt.Sprintf("%d", v.U16)
	case U32:
		return fmt.Sprintf("%d", v.U32)
	case U64:
		return fmt.Sprintf("%d", v.U64)
	case U128:
		return v.U128.String()
	case F32:
		return fmt.Sprintf("%v", v.F32)
	case F64:
		return fmt.Sprintf("%v", v.F64)
	case Decimal:
		return v.Decimal.FloatString(v.decimalScale())
	case Str:
		return v.Str
	case Bytea:
		return fmt.Sprintf("%x", v.Bytea)
	case Inet:
		return v.Inet.String()
	case Date:
		return v.Date.Format("2006-01-02")
	case Timestamp:
		return v.Tstamp.Format("2006-01-02 15:04:05.999999999")
	case Time:
		return v.Time.Format("15:04:05.999999999")
	case Interval:
		return fmt.Sprintf("%d months %d us", v.Intv.Months, v.Intv.Micros)
	case Uuid:
		return v.UUID.String()
	case Map:
		return fmt.Sprintf("%v", v.MapV)
	case List:
		return fmt.Sprintf("%v", v.ListV)
	case Point:
		return fmt.Sprintf("POINT(%v %v)", v.Pt.X, v.Pt.Y)
	default:
		return ""
	}
}

func (v Value) decimalScale() int {
	// Decimal is modeled as an exact rational; default to 9 fractional
	// digits of display precision, matching the 128-bit fixed-point budget
	// the design calls for without pinning an exact scale per value.
	return 9
}

// IsKeyable reports whether the variant can be used as a Key:
// F32/F64/Map/List/Point/Null are excluded.
func (k Kind) IsKeyable() bool {
	switch k {
	case F32, F64, Map, List, Point, Null:
		return false
	default:
		return true
	}
}

// IsGroupable reports whether the variant may be used as a GROUP BY key or
// a UNIQUE/PRIMARY KEY column: F64/F32/Map are excluded.
func (k Kind) IsGroupable() bool {
	switch k {
	case F32, F64, Map:
		return false
	default:
		return true
	}
}

func (k Kind) IsNumeric() bool {
	switch k {
	case I8, I16, I32, I64, I128, U8, U16, U32, U64, U128, F32, F64, Decimal:
		return true
	default:
		return false
	}
}

func (k Kind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, I128, U8, U16, U32, U64, U128:
		return true
	default:
		return false
	}
}
