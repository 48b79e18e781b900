package value

import (
	"math/big"

	gerrors "github.com/gluesql-go/gluesql/errors"
)

// BinaryOp identifies an arithmetic operator for Add/Subtract/Multiply/...
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
)

// Arith evaluates a numeric binary operator under the promotion table
// below. Null propagates: callers are expected to have already
// short-circuited Null operands before calling Arith.
func Arith(op BinaryOp, a, b Value) (Value, error) {
	if a.Kind == F64 || b.Kind == F64 || a.Kind == F32 || b.Kind == F32 {
		af, aok := asFloat64(a)
		bf, bok := asFloat64(b)
		if !aok || !bok {
			return Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "non-numeric operand in arithmetic")
		}
		if op == OpDivide && bf == 0 {
			if a.Kind == F64 && b.Kind == F64 {
				return NewF64(af / bf), nil // +/-Inf
			}
			return Value{}, gerrors.NewEvaluateError(gerrors.DivisorShouldNotBeZero, "division by zero")
		}
		out, err := floatArith(op, af, bf)
		if err != nil {
			return Value{}, err
		}
		return NewF64(out), nil
	}

	if a.Kind == Decimal || b.Kind == Decimal {
		ar, aok := asRat(a)
		br, bok := asRat(b)
		if !aok || !bok {
			return Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "non-numeric operand in arithmetic")
		}
		if (op == OpDivide || op == OpModulo) && br.Sign() == 0 {
			return Value{}, gerrors.NewEvaluateError(gerrors.DivisorShouldNotBeZero, "division by zero")
		}
		out, err := ratArith(op, ar, br)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: Decimal, Decimal: *out}, nil
	}

	ai, aok := asBigInt(a)
	bi, bok := asBigInt(b)
	if !aok || !bok {
		return Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "non-numeric operand in arithmetic")
	}
	if (op == OpDivide || op == OpModulo) && bi.Sign() == 0 {
		return Value{}, gerrors.NewEvaluateError(gerrors.DivisorShouldNotBeZero, "division by zero")
	}
	out, err := intArith(op, ai, bi)
	if err != nil {
		return Value{}, err
	}
	return narrowestInt(out), nil
}

func floatArith(op BinaryOp, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		return a / b, nil
	case OpModulo:
		return mod(a, b), nil
	default:
		return 0, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported arithmetic operator")
	}
}

func mod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	return a
}

func ratArith(op BinaryOp, a, b *big.Rat) (*big.Rat, error) {
	out := new(big.Rat)
	switch op {
	case OpAdd:
		return out.Add(a, b), nil
	case OpSubtract:
		return out.Sub(a, b), nil
	case OpMultiply:
		return out.Mul(a, b), nil
	case OpDivide:
		return out.Quo(a, b), nil
	case OpModulo:
		// decimal modulo: a - floor(a/b)*b
		q := new(big.Rat).Quo(a, b)
		qi := new(big.Int).Quo(q.Num(), q.Denom())
		qr := new(big.Rat).SetInt(qi)
		return out.Sub(a, new(big.Rat).Mul(qr, b)), nil
	default:
		return nil, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported arithmetic operator")
	}
}

func intArith(op BinaryOp, a, b *big.Int) (*big.Int, error) {
	out := new(big.Int)
	switch op {
	case OpAdd:
		return out.Add(a, b), nil
	case OpSubtract:
		return out.Sub(a, b), nil
	case OpMultiply:
		return out.Mul(a, b), nil
	case OpDivide:
		return out.Quo(a, b), nil
	case OpModulo:
		return out.Rem(a, b), nil
	default:
		return nil, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported arithmetic operator")
	}
}

// narrowestInt picks the smallest signed variant that holds v, overflowing
// to I128 rather than silently wrapping (: "overflow is an error,
// not wrap-around" is enforced one level up by the I128 bound check).
func narrowestInt(v *big.Int) Value {
	if v.IsInt64() {
		n := v.Int64()
		switch {
		case n >= -128 && n <= 127:
			return Value{Kind: I8, I8: int8(n)}
		case n >= -32768 && n <= 32767:
			return Value{Kind: I16, I16: int16(n)}
		case n >= -2147483648 && n <= 2147483647:
			return Value{Kind: I32, I32: int32(n)}
		default:
			return Value{Kind: I64, I64: n}
		}
	}
	return Value{Kind: I128, I128: *v}
}

// CheckI128Bounds rejects literals/results outside the 128-bit signed range
// .
func CheckI128Bounds(v *big.Int) bool {
	return v.Cmp(minI128) >= 0 && v.Cmp(maxI128) <= 0
}

var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)
