package evaluate

import (
	"encoding/hex"
	"math"
	"strings"

	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/value"
)

func stringFn1(args []value.Value, f func(string) string) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewStr(f(s)), nil
}

func requireString(args []value.Value, i int) (string, error) {
	if i >= len(args) || args[i].Kind != value.Str {
		return "", gerrors.NewEvaluateError(gerrors.FunctionRequiresStringValue, "argument %d must be a string", i+1)
	}
	return args[i].Str, nil
}

func requireFloat(args []value.Value, i int) (float64, error) {
	if i >= len(args) {
		return 0, gerrors.NewEvaluateError(gerrors.FunctionRequiresFloatValue, "missing argument %d", i+1)
	}
	f, ok := asFloat(args[i])
	if !ok {
		return 0, gerrors.NewEvaluateError(gerrors.FunctionRequiresFloatValue, "argument %d must be numeric", i+1)
	}
	return f, nil
}

func requireInt(args []value.Value, i int) (int64, error) {
	if i >= len(args) {
		return 0, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "missing argument %d", i+1)
	}
	n, ok := asInt64(args[i])
	if !ok {
		return 0, gerrors.NewEvaluateError(gerrors.FunctionRequiresIntegerValue, "argument %d must be an integer", i+1)
	}
	return n, nil
}

func asFloat(v value.Value) (float64, bool) {
	switch v.Kind {
	case value.F32:
		return float64(v.F32), true
	case value.F64:
		return v.F64, true
	default:
		if n, ok := asInt64(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}

func trimFn(args []value.Value, f func(string, string) string) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	cutset := " "
	if len(args) > 1 {
		cutset, err = requireString(args, 1)
		if err != nil {
			return value.Value{}, err
		}
	}
	return value.NewStr(f(s, cutset)), nil
}

func substrFn(args []value.Value) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	start, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	runes := []rune(s)
	from := int(start) - 1
	length := len(runes) - from
	if len(args) > 2 {
		l, err := requireInt(args, 2)
		if err != nil {
			return value.Value{}, err
		}
		if l < 0 {
			return value.Value{}, gerrors.NewEvaluateError(gerrors.NegativeSubstrLenNotAllowed, "SUBSTR length must not be negative")
		}
		length = int(l)
	}
	if from < 0 {
		length += from
		from = 0
	}
	if from >= len(runes) || length <= 0 {
		return value.NewStr(""), nil
	}
	to := from + length
	if to > len(runes) {
		to = len(runes)
	}
	return value.NewStr(string(runes[from:to])), nil
}

func sideFn(args []value.Value, left bool) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	n, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	runes := []rune(s)
	if n < 0 {
		n = 0
	}
	if int(n) > len(runes) {
		n = int64(len(runes))
	}
	if left {
		return value.NewStr(string(runes[:n])), nil
	}
	return value.NewStr(string(runes[len(runes)-int(n):])), nil
}

func padFn(args []value.Value, left bool) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	targetLen, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	pad := " "
	if len(args) > 2 {
		pad, err = requireString(args, 2)
		if err != nil {
			return value.Value{}, err
		}
	}
	runes := []rune(s)
	if int64(len(runes)) >= targetLen || pad == "" {
		if int64(len(runes)) > targetLen {
			return value.NewStr(string(runes[:targetLen])), nil
		}
		return value.NewStr(s), nil
	}
	padRunes := []rune(pad)
	var b strings.Builder
	need := int(targetLen) - len(runes)
	filler := make([]rune, 0, need)
	for len(filler) < need {
		filler = append(filler, padRunes[len(filler)%len(padRunes)]...)
	}
	filler = filler[:need]
	if left {
		b.WriteString(string(filler))
		b.WriteString(s)
	} else {
		b.WriteString(s)
		b.WriteString(string(filler))
	}
	return value.NewStr(b.String()), nil
}

func repeatFn(args []value.Value) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	n, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if n < 0 {
		n = 0
	}
	return value.NewStr(strings.Repeat(s, int(n))), nil
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func concatFn(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.String())
	}
	return value.NewStr(b.String()), nil
}

func unaryMathFn(name string, args []value.Value) (value.Value, error) {
	f, err := requireFloat(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	switch name {
	case "ABS":
		return value.NewF64(math.Abs(f)), nil
	case "CEIL":
		return value.NewF64(math.Ceil(f)), nil
	case "FLOOR":
		return value.NewF64(math.Floor(f)), nil
	case "ROUND":
		return value.NewF64(math.Round(f)), nil
	case "SIGN":
		switch {
		case f > 0:
			return value.NewF64(1), nil
		case f < 0:
			return value.NewF64(-1), nil
		default:
			return value.NewF64(0), nil
		}
	case "SQRT":
		return value.NewF64(math.Sqrt(f)), nil
	case "EXP":
		return value.NewF64(math.Exp(f)), nil
	case "LN":
		return value.NewF64(math.Log(f)), nil
	case "LOG2":
		return value.NewF64(math.Log2(f)), nil
	case "LOG10":
		return value.NewF64(math.Log10(f)), nil
	case "SIN":
		return value.NewF64(math.Sin(f)), nil
	case "COS":
		return value.NewF64(math.Cos(f)), nil
	case "TAN":
		return value.NewF64(math.Tan(f)), nil
	case "ASIN":
		return value.NewF64(math.Asin(f)), nil
	case "ACOS":
		return value.NewF64(math.Acos(f)), nil
	case "ATAN":
		return value.NewF64(math.Atan(f)), nil
	case "RADIANS":
		return value.NewF64(f * math.Pi / 180), nil
	case "DEGREES":
		return value.NewF64(f * 180 / math.Pi), nil
	default:
		return value.Value{}, gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported function: %s", name)
	}
}

func binaryMathFn(args []value.Value, f func(float64, float64) float64) (value.Value, error) {
	a, err := requireFloat(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := requireFloat(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewF64(f(a, b)), nil
}

func modFn(args []value.Value) (value.Value, error) {
	a, err := requireInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if b == 0 {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.DivisorShouldNotBeZero, "MOD by zero")
	}
	return value.NewI64(a % b), nil
}

func divFn(args []value.Value) (value.Value, error) {
	a, err := requireInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	if b == 0 {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.DivisorShouldNotBeZero, "DIV by zero")
	}
	return value.NewI64(a / b), nil
}

func gcdFn(args []value.Value) (value.Value, error) {
	a, err := requireInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewI64(gcd(a, b)), nil
}

func lcmFn(args []value.Value) (value.Value, error) {
	a, err := requireInt(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := requireInt(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	g := gcd(a, b)
	if g == 0 {
		return value.NewI64(0), nil
	}
	return value.NewI64(a / g * b), nil
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func unhexFn(args []value.Value) (value.Value, error) {
	s, err := requireString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	out, decErr := hex.DecodeString(s)
	if decErr != nil {
		return value.Value{}, gerrors.NewEvaluateError(gerrors.FunctionRequiresStringValue, "UNHEX requires a valid hex string")
	}
	return value.Value{Kind: value.Bytea, Bytea: out}, nil
}
