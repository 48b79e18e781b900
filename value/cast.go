package value

import (
	"fmt"
	"math/big"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DataType mirrors the SQL type names in; it is the target of
// CAST and the declared type of a ColumnDef.
type DataType int

const (
	TBoolean DataType = iota
	TInt8
	TInt16
	TInt32
	TInt64
	TInt128
	TUint8
	TUint16
	TUint32
	TUint64
	TUint128
	TFloat32
	TFloat64
	TDecimal
	TText
	TBytea
	TDate
	TTime
	TTimestamp
	TInterval
	TUuid
	TInet
	TMap
	TList
	TPoint
)

// Cast converts v to the given target type following the canonical,
// round-trippable string form each variant defines. An
// incompatible conversion is an IncompatibleDataType-class error, raised by
// the caller (validate package) from the bool returned here.
func Cast(v Value, target DataType) (Value, bool) {
	if v.IsNull() {
		return NewNull(), true
	}
	switch target {
	case TBoolean:
		return castBool(v)
	case TInt8, TInt16, TInt32, TInt64, TInt128, TUint8, TUint16, TUint32, TUint64, TUint128:
		return castInteger(v, target)
	case TFloat32, TFloat64:
		return castFloat(v, target)
	case TDecimal:
		return castDecimal(v)
	case TText:
		return Value{Kind: Str, Str: v.String()}, true
	case TBytea:
		return castBytea(v)
	case TDate:
		return castDate(v)
	case TTime:
		return castTime(v)
	case TTimestamp:
		return castTimestamp(v)
	case TUuid:
		return castUUID(v)
	case TInet:
		return castInet(v)
	default:
		return Value{}, false
	}
}

func castBool(v Value) (Value, bool) {
	switch v.Kind {
	case Bool:
		return v, true
	case Str:
		switch strings.ToUpper(v.Str) {
		case "TRUE":
			return NewBool(true), true
		case "FALSE":
			return NewBool(false), true
		}
		return Value{}, false
	default:
		if v.Kind.IsNumeric() {
			f, ok := asFloat64(v)
			return NewBool(ok && f != 0), ok
		}
		return Value{}, false
	}
}

func castInteger(v Value, target DataType) (Value, bool) {
	var bi *big.Int
	switch v.Kind {
	case Str:
		parsed, ok := new(big.Int).SetString(strings.TrimSpace(v.Str), 10)
		if !ok {
			return Value{}, false
		}
		bi = parsed
	case Bool:
		if v.Bool {
			bi = big.NewInt(1)
		} else {
			bi = big.NewInt(0)
		}
	default:
		var ok bool
		bi, ok = asBigInt(v)
		if !ok {
			f, fok := asFloat64(v)
			if !fok {
				return Value{}, false
			}
			bi = big.NewInt(int64(f))
		}
	}
	return fitInteger(bi, target)
}

func fitInteger(bi *big.Int, target DataType) (Value, bool) {
	switch target {
	case TInt8:
		n := bi.Int64()
		if n < -128 || n > 127 {
			return Value{}, false
		}
		return Value{Kind: I8, I8: int8(n)}, true
	case TInt16:
		n := bi.Int64()
		if n < -32768 || n > 32767 {
			return Value{}, false
		}
		return Value{Kind: I16, I16: int16(n)}, true
	case TInt32:
		if !bi.IsInt64() {
			return Value{}, false
		}
		n := bi.Int64()
		if n < -2147483648 || n > 2147483647 {
			return Value{}, false
		}
		return Value{Kind: I32, I32: int32(n)}, true
	case TInt64:
		if !bi.IsInt64() {
			return Value{}, false
		}
		return Value{Kind: I64, I64: bi.Int64()}, true
	case TInt128:
		if !CheckI128Bounds(bi) {
			return Value{}, false
		}
		return Value{Kind: I128, I128: *bi}, true
	case TUint8, TUint16, TUint32, TUint64, TUint128:
		if bi.Sign() < 0 {
			return Value{}, false
		}
		switch target {
		case TUint8:
			return Value{Kind: U8, U8: uint8(bi.Uint64())}, true
		case TUint16:
			return Value{Kind: U16, U16: uint16(bi.Uint64())}, true
		case TUint32:
			return Value{Kind: U32, U32: uint32(bi.Uint64())}, true
		case TUint64:
			return Value{Kind: U64, U64: bi.Uint64()}, true
		default:
			return Value{Kind: U128, U128: *bi}, true
		}
	default:
		return Value{}, false
	}
}

func castFloat(v Value, target DataType) (Value, bool) {
	var f float64
	switch v.Kind {
	case Str:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return Value{}, false
		}
		f = parsed
	default:
		var ok bool
		f, ok = asFloat64(v)
		if !ok {
			return Value{}, false
		}
	}
	if target == TFloat32 {
		return Value{Kind: F32, F32: float32(f)}, true
	}
	return Value{Kind: F64, F64: f}, true
}

func castDecimal(v Value) (Value, bool) {
	switch v.Kind {
	case Str:
		r, ok := new(big.Rat).SetString(strings.TrimSpace(v.Str))
		if !ok {
			return Value{}, false
		}
		return Value{Kind: Decimal, Decimal: *r}, true
	default:
		r, ok := asRat(v)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: Decimal, Decimal: *r}, true
	}
}

func castBytea(v Value) (Value, bool) {
	if v.Kind == Bytea {
		return v, true
	}
	if v.Kind == Str {
		var out []byte
		if _, err := fmt.Sscanf(v.Str, "%x", &out); err != nil {
			return Value{}, false
		}
		return Value{Kind: Bytea, Bytea: out}, true
	}
	return Value{}, false
}

func castDate(v Value) (Value, bool) {
	if v.Kind == Date {
		return v, true
	}
	if v.Kind == Str {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(v.Str))
		if err != nil {
			return Value{}, false
		}
		return Value{Kind: Date, Date: t}, true
	}
	if v.Kind == Timestamp {
		return Value{Kind: Date, Date: v.Tstamp.Truncate(24 * time.Hour)}, true
	}
	return Value{}, false
}

func castTime(v Value) (Value, bool) {
	if v.Kind == Time {
		return v, true
	}
	if v.Kind == Str {
		for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
			t, err := time.Parse(layout, strings.TrimSpace(v.Str))
			if err == nil {
				return Value{Kind: Time, Time: t}, true
			}
		}
	}
	return Value{}, false
}

func castTimestamp(v Value) (Value, bool) {
	if v.Kind == Timestamp {
		return v, true
	}
	if v.Kind == Date {
		return Value{Kind: Timestamp, Tstamp: v.Date}, true
	}
	if v.Kind == Str {
		for _, layout := range []string{"2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05", "2006-01-02"} {
			t, err := time.Parse(layout, strings.TrimSpace(v.Str))
			if err == nil {
				return Value{Kind: Timestamp, Tstamp: t}, true
			}
		}
	}
	return Value{}, false
}

func castUUID(v Value) (Value, bool) {
	if v.Kind == Uuid {
		return v, true
	}
	if v.Kind == Str {
		id, err := uuid.Parse(strings.TrimSpace(v.Str))
		if err != nil {
			return Value{}, false
		}
		return Value{Kind: Uuid, UUID: id}, true
	}
	return Value{}, false
}

func castInet(v Value) (Value, bool) {
	if v.Kind == Inet {
		return v, true
	}
	if v.Kind == Str {
		ip := net.ParseIP(strings.TrimSpace(v.Str))
		if ip == nil {
			return Value{}, false
		}
		return Value{Kind: Inet, Inet: ip}, true
	}
	return Value{}, false
}

// GenerateUUID backs the GENERATE_UUID() builtin.
func GenerateUUID() Value {
	return Value{Kind: Uuid, UUID: uuid.New()}
}
