package value

import (
	"bytes"
	"math/big"
	"time"
)

// Ordering mirrors the three-way comparator result used throughout the
// planner and sort operator.
type Ordering int

const (
	Less       Ordering = -1
	EqualOrder Ordering = 0
	Greater    Ordering = 1
)

// Compare implements the canonical comparison ordering for same-typed
// values and the fixed numeric promotion table for cross-type numeric
// comparisons. ok is false when the two values are not
// comparable (e.g. Map vs Map ordering, per the Open Question decision
// recorded in DESIGN.md: structural equality only, no ordering).
func Compare(a, b Value) (ord Ordering, ok bool) {
	if a.Kind == b.Kind {
		return compareSameKind(a, b)
	}

	if a.Kind.IsNumeric() && b.Kind.IsNumeric() {
		return compareNumericPromoted(a, b)
	}

	return 0, false
}

// Equal implements `=`/`<>` for two values including Map vs Map structural
// equality, which Compare deliberately refuses to order.
func Equal(a, b Value) (bool, bool) {
	if a.Kind == Map && b.Kind == Map {
		return mapEqual(a.MapV, b.MapV), true
	}
	if a.Kind == List && b.Kind == List {
		return listEqual(a.ListV, b.ListV), true
	}
	ord, ok := Compare(a, b)
	if !ok {
		return false, false
	}
	return ord == EqualOrder, true
}

func mapEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, found := b[k]
		if !found {
			return false
		}
		eq, ok := Equal(av, bv)
		if !ok || !eq {
			return false
		}
	}
	return true
}

func listEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		eq, ok := Equal(a[i], b[i])
		if !ok || !eq {
			return false
		}
	}
	return true
}

func compareSameKind(a, b Value) (Ordering, bool) {
	switch a.Kind {
	case Null:
		return EqualOrder, false // NULL is never ordered against anything, incl. NULL
	case Bool:
		return compareBool(a.Bool, b.Bool), true
	case I8:
		return compareInt64(int64(a.I8), int64(b.I8)), true
	case I16:
		return compareInt64(int64(a.I16), int64(b.I16)), true
	case I32:
		return compareInt64(int64(a.I32), int64(b.I32)), true
	case I64:
		return compareInt64(a.I64, b.I64), true
	case I128:
		return Ordering(a.I128.Cmp(&b.I128)), true
	case U8:
		return compareUint64(uint64(a.U8), uint64(b.U8)), true
	case U16:
		return compareUint64(uint64(a.U16), uint64(b.U16)), true
	case U32:
		return compareUint64(uint64(a.U32), uint64(b.U32)), true
	case U64:
		return compareUint64(a.U64, b.U64), true
	case U128:
		return Ordering(a.U128.Cmp(&b.U128)), true
	case F32:
		return compareFloat64(float64(a.F32), float64(b.F32)), true
	case F64:
		return compareFloat64(a.F64, b.F64), true
	case Decimal:
		return Ordering(a.Decimal.Cmp(&b.Decimal)), true
	case Str:
		return compareString(a.Str, b.Str), true
	case Bytea:
		return Ordering(bytes.Compare(a.Bytea, b.Bytea)), true
	case Inet:
		return Ordering(bytes.Compare(a.Inet, b.Inet)), true
	case Date:
		return compareTime(a.Date, b.Date), true
	case Timestamp:
		return compareTime(a.Tstamp, b.Tstamp), true
	case Time:
		return compareTime(a.Time, b.Time), true
	case Uuid:
		return Ordering(bytes.Compare(a.UUID[:], b.UUID[:])), true
	case Interval:
		return compareInt64(intervalMicros(a.Intv), intervalMicros(b.Intv)), true
	default:
		return 0, false
	}
}

func intervalMicros(iv Interval) int64 {
	// Approximate months as 30 days for ordering purposes only.
	return int64(iv.Months)*30*24*3600*1_000_000 + iv.Micros
}

func compareBool(a, b bool) Ordering {
	if a == b {
		return EqualOrder
	}
	if !a {
		return Less
	}
	return Greater
}

func compareInt64(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return EqualOrder
	}
}

func compareUint64(a, b uint64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return EqualOrder
	}
}

func compareFloat64(a, b float64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return EqualOrder
	}
}

func compareString(a, b string) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return EqualOrder
	}
}

func compareTime(a, b time.Time) Ordering {
	switch {
	case a.Before(b):
		return Less
	case a.After(b):
		return Greater
	default:
		return EqualOrder
	}
}

// numeric promotion table:
// - integers widen to the smaller signed type that fits both operands
// - any numeric compared with F64 promotes to F64
// - Decimal compared with any integer promotes to Decimal
func compareNumericPromoted(a, b Value) (Ordering, bool) {
	if a.Kind == F64 || b.Kind == F64 {
		af, aok := asFloat64(a)
		bf, bok := asFloat64(b)
		if !aok || !bok {
			return 0, false
		}
		return compareFloat64(af, bf), true
	}
	if a.Kind == Decimal || b.Kind == Decimal {
		ar, aok := asRat(a)
		br, bok := asRat(b)
		if !aok || !bok {
			return 0, false
		}
		return Ordering(ar.Cmp(br)), true
	}
	if a.Kind == F32 || b.Kind == F32 {
		af, aok := asFloat64(a)
		bf, bok := asFloat64(b)
		if !aok || !bok {
			return 0, false
		}
		return compareFloat64(af, bf), true
	}
	// both are plain integers of different widths/signedness: widen to big.Int
	ai, aok := asBigInt(a)
	bi, bok := asBigInt(b)
	if !aok || !bok {
		return 0, false
	}
	return Ordering(ai.Cmp(bi)), true
}

func asFloat64(v Value) (float64, bool) {
	switch v.Kind {
	case I8:
		return float64(v.I8), true
	case I16:
		return float64(v.I16), true
	case I32:
		return float64(v.I32), true
	case I64:
		return float64(v.I64), true
	case U8:
		return float64(v.U8), true
	case U16:
		return float64(v.U16), true
	case U32:
		return float64(v.U32), true
	case U64:
		return float64(v.U64), true
	case F32:
		return float64(v.F32), true
	case F64:
		return v.F64, true
	case Decimal:
		f, _ := v.Decimal.Float64()
		return f, true
	case I128:
		f := new(big.Float).SetInt(&v.I128)
		out, _ := f.Float64()
		return out, true
	case U128:
		f := new(big.Float).SetInt(&v.U128)
		out, _ := f.Float64()
		return out, true
	default:
		return 0, false
	}
}

func asRat(v Value) (*big.Rat, bool) {
	switch v.Kind {
	case Decimal:
		return &v.Decimal, true
	case I8, I16, I32, I64, U8, U16, U32, U64:
		bi, ok := asBigInt(v)
		if !ok {
			return nil, false
		}
		return new(big.Rat).SetInt(bi), true
	case I128:
		return new(big.Rat).SetInt(&v.I128), true
	case U128:
		return new(big.Rat).SetInt(&v.U128), true
	default:
		return nil, false
	}
}

func asBigInt(v Value) (*big.Int, bool) {
	switch v.Kind {
	case I8:
		return big.NewInt(int64(v.I8)), true
	case I16:
		return big.NewInt(int64(v.I16)), true
	case I32:
		return big.NewInt(int64(v.I32)), true
	case I64:
		return big.NewInt(v.I64), true
	case I128:
		return &v.I128, true
	case U8:
		return new(big.Int).SetUint64(uint64(v.U8)), true
	case U16:
		return new(big.Int).SetUint64(uint64(v.U16)), true
	case U32:
		return new(big.Int).SetUint64(uint64(v.U32)), true
	case U64:
		return new(big.Int).SetUint64(v.U64), true
	case U128:
		return &v.U128, true
	default:
		return nil, false
	}
}
