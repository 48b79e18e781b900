package execute

import (
	"context"
	"math"
	"strings"

	"github.com/gluesql-go/gluesql/ast"
	gerrors "github.com/gluesql-go/gluesql/errors"
	"github.com/gluesql-go/gluesql/evaluate"
	"github.com/gluesql-go/gluesql/value"
)

// collectAggregates finds every *ast.Aggregate node reachable from roots
// (Projection, Having, ORDER BY) without descending past one once found —
// aggregates never nest per SQL grammar — and matches duplicates by Go
// pointer identity, the same identity the evaluator's RowContext.Aggregates
// map keys on.
func collectAggregates(roots []ast.Expr) []*ast.Aggregate {
	var out []*ast.Aggregate
	seen := make(map[*ast.Aggregate]bool)
	for _, r := range roots {
		if r == nil {
			continue
		}
		ast.Walk(r, func(n ast.Expr) bool {
			agg, ok := n.(*ast.Aggregate)
			if !ok {
				return true
			}
			if !seen[agg] {
				seen[agg] = true
				out = append(out, agg)
			}
			return false
		})
	}
	return out
}

func projectionExprs(items []ast.SelectItem) []ast.Expr {
	var out []ast.Expr
	for _, item := range items {
		if ei, ok := item.(ast.ExprItem); ok {
			out = append(out, ei.Expr)
		}
	}
	return out
}

func orderByExprs(obs []ast.OrderByExpr) []ast.Expr {
	out := make([]ast.Expr, len(obs))
	for i, ob := range obs {
		out[i] = ob.Expr
	}
	return out
}

// aggAccum is one aggregate's running state for one group. Variance/Stdev
// use Welford's online algorithm so a single pass suffices.
type aggAccum struct {
	kind     ast.AggregateKind
	count    int64
	sum      value.Value
	hasSum   bool
	min, max value.Value
	hasMM    bool
	mean     float64
	m2       float64
	distinct bool
	seen     map[string]bool
}

func newAccum(kind ast.AggregateKind, distinct bool) *aggAccum {
	a := &aggAccum{kind: kind, distinct: distinct}
	if distinct {
		a.seen = make(map[string]bool)
	}
	return a
}

func (a *aggAccum) add(v value.Value) error {
	if v.IsNull() {
		return nil
	}
	if a.distinct {
		key := v.String()
		if a.seen[key] {
			return nil
		}
		a.seen[key] = true
	}
	a.count++
	switch a.kind {
	case ast.AggCount:
		return nil
	case ast.AggSum, ast.AggAvg:
		if !a.hasSum {
			a.sum, a.hasSum = v, true
			return nil
		}
		out, err := value.Arith(value.OpAdd, a.sum, v)
		if err != nil {
			return err
		}
		a.sum = out
		return nil
	case ast.AggMin, ast.AggMax:
		if !a.hasMM {
			a.min, a.max, a.hasMM = v, v, true
			return nil
		}
		ord, ok := value.Compare(v, a.min)
		if ok && ord == value.Less {
			a.min = v
		}
		ord, ok = value.Compare(v, a.max)
		if ok && ord == value.Greater {
			a.max = v
		}
		return nil
	case ast.AggVariance, ast.AggStdev:
		f, ok := value.Cast(v, value.TFloat64)
		if !ok {
			return gerrors.NewEvaluateError(gerrors.UnsupportedCompareOperands, "non-numeric operand to VARIANCE/STDEV")
		}
		x := f.F64
		delta := x - a.mean
		a.mean += delta / float64(a.count)
		a.m2 += delta * (x - a.mean)
		return nil
	default:
		return gerrors.NewEvaluateError(gerrors.UnsupportedStatelessExpr, "unsupported aggregate kind")
	}
}

func (a *aggAccum) result() (value.Value, error) {
	switch a.kind {
	case ast.AggCount:
		return value.NewI64(a.count), nil
	case ast.AggSum:
		if !a.hasSum {
			return value.NewNull(), nil
		}
		return a.sum, nil
	case ast.AggAvg:
		if !a.hasSum || a.count == 0 {
			return value.NewNull(), nil
		}
		return value.Arith(value.OpDivide, a.sum, value.NewF64(float64(a.count)))
	case ast.AggMin:
		if !a.hasMM {
			return value.NewNull(), nil
		}
		return a.min, nil
	case ast.AggMax:
		if !a.hasMM {
			return value.NewNull(), nil
		}
		return a.max, nil
	case ast.AggVariance:
		if a.count == 0 {
			return value.NewNull(), nil
		}
		return value.NewF64(a.m2 / float64(a.count)), nil
	case ast.AggStdev:
		if a.count == 0 {
			return value.NewNull(), nil
		}
		return value.NewF64(math.Sqrt(a.m2 / float64(a.count))), nil
	default:
		return value.NewNull(), nil
	}
}

// groupKeyString stringifies a GROUP BY tuple into a Go-map-safe key. Two
// rows with structurally-equal keys always collide. Each value's kind is
// part of the key, so numerically equal values of different kinds (e.g.
// I32(1) and I64(1)) land in separate groups even though Value.Compare
// treats them as equal.
func groupKeyString(vs []value.Value) string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if v.IsNull() {
			b.WriteString("N")
			continue
		}
		b.WriteByte(byte(v.Kind))
		b.WriteByte(':')
		b.WriteString(v.String())
	}
	return b.String()
}

// aggregateIter is the Aggregate/GroupBy operator: it must
// consume its source fully before the first group is final, so — like
// Order — it materializes (this second explicitly-allowed
// materialization point).
func (ex *Executor) aggregateIter(ctx context.Context, src RowIter, groupBy []ast.Expr, aggs []*ast.Aggregate) (RowIter, error) {
	rows, err := drainRows(ctx, src)
	if err != nil {
		return nil, err
	}

	type group struct {
		key    []value.Value
		accums []*aggAccum
		sample *evaluate.RowContext
	}
	order := []string{}
	groups := map[string]*group{}

	for _, row := range rows {
		key := make([]value.Value, len(groupBy))
		for i, g := range groupBy {
			v, err := ex.evalValue(ctx, g, row)
			if err != nil {
				return nil, err
			}
			key[i] = v
		}
		gk := groupKeyString(key)
		g, ok := groups[gk]
		if !ok {
			g = &group{key: key, sample: row}
			for _, agg := range aggs {
				g.accums = append(g.accums, newAccum(agg.Kind, agg.Distinct))
			}
			groups[gk] = g
			order = append(order, gk)
		}
		for i, agg := range aggs {
			if agg.Kind == ast.AggCount && agg.Arg == nil {
				if err := g.accums[i].add(value.NewI64(1)); err != nil {
					return nil, err
				}
				continue
			}
			v, err := ex.evalValue(ctx, agg.Arg, row)
			if err != nil {
				return nil, err
			}
			if err := g.accums[i].add(v); err != nil {
				return nil, err
			}
		}
	}

	if len(order) == 0 && len(groupBy) == 0 {
		// No rows and no GROUP BY still yields one aggregate row: a bare
		// COUNT(*) over an empty table is 0, not no rows.
		g := &group{sample: &evaluate.RowContext{}}
		for _, agg := range aggs {
			g.accums = append(g.accums, newAccum(agg.Kind, agg.Distinct))
		}
		groups[""] = g
		order = append(order, "")
	}

	out := make([]*evaluate.RowContext, 0, len(order))
	for _, gk := range order {
		g := groups[gk]
		aggVals := make(map[*ast.Aggregate]value.Value, len(aggs))
		for i, agg := range aggs {
			v, err := g.accums[i].result()
			if err != nil {
				return nil, err
			}
			aggVals[agg] = v
		}
		rc := &evaluate.RowContext{
			Tables:     g.sample.Tables,
			Aggregates: aggVals,
			Outer:      g.sample.Outer,
		}
		out = append(out, rc)
	}
	return newSliceRowIter(out), nil
}
