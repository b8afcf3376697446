// Package elaborate implements spec.md §4.3: constructing the instance
// tree from the parsed AST, expanding every parametric abstraction
// (generators and instantiations) into concrete instances. The evaluation
// style here — a recursive per-node-kind switch threading an error return
// rather than panicking — is the generalization of
// internal/tunascript/eval.go's interpreter loop to SMEIL's compile-time-only
// expression subset (spec §4.3 "Compile-time expression evaluation").
package elaborate

import (
	"fmt"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// EvalConst evaluates expr as a compile-time constant against scope,
// supporting literals, constant-name references, unary/binary arithmetic
// and logic, comparisons, array indexing over constant arrays, and enum
// member access (spec §4.3). A non-constant subexpression (e.g. a name that
// resolves to a signal or variable rather than a constant) is an error.
func EvalConst(expr ast.Expression, scope *ir.Scope) (ir.Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return evalLiteral(e.Value)
	case *ast.NameExpr:
		return evalConstName(e, scope)
	case *ast.ParenExpr:
		return EvalConst(e.Inner, scope)
	case *ast.UnaryExpr:
		return evalUnary(e, scope)
	case *ast.BinaryExpr:
		return evalBinary(e, scope)
	case *ast.TypeCastExpr:
		return evalCast(e, scope)
	default:
		return ir.Value{}, fmt.Errorf("%s: unsupported expression kind in constant context", expr.Pos())
	}
}

func evalLiteral(c *ast.Constant) (ir.Value, error) {
	switch c.Kind {
	case ast.ConstInteger:
		if len(c.Text) > 2 && (c.Text[0:2] == "0x" || c.Text[0:2] == "0o") {
			return parseIntLiteral(c)
		}
		var n int64
		if _, err := fmt.Sscanf(c.Text, "%d", &n); err != nil {
			return parseIntLiteral(c)
		}
		return ir.IntValue(n), nil
	case ast.ConstFloating:
		return ir.FloatValue(float64(c.Major) + fractionOf(c.Minor)), nil
	case ast.ConstBoolean:
		return ir.BoolValue(c.Text == "true"), nil
	case ast.ConstString:
		return ir.StringValue(unquote(c.Text)), nil
	case ast.ConstArrayIndex:
		elems := make([]ir.Value, len(c.Elements))
		for i, el := range c.Elements {
			v, err := evalLiteral(el)
			if err != nil {
				return ir.Value{}, err
			}
			elems[i] = v
		}
		return ir.ArrayValue(elems), nil
	case ast.ConstSpecialU:
		return ir.Value{}, fmt.Errorf("%s: the special literal U has no compile-time value", c.Pos())
	default:
		return ir.Value{}, fmt.Errorf("%s: unknown constant kind", c.Pos())
	}
}

// parseIntLiteral handles 0x/0o-prefixed integer text (spec §6.1), which
// Sscanf's "%d" cannot parse directly.
func parseIntLiteral(c *ast.Constant) (ir.Value, error) {
	var n int64
	var format string
	switch {
	case len(c.Text) > 2 && c.Text[0:2] == "0x":
		format = "0x%x"
	case len(c.Text) > 2 && c.Text[0:2] == "0o":
		format = "0o%o"
	default:
		return ir.Value{}, fmt.Errorf("%s: malformed integer literal %q", c.Pos(), c.Text)
	}
	if _, err := fmt.Sscanf(c.Text, format, &n); err != nil {
		return ir.Value{}, fmt.Errorf("%s: malformed integer literal %q: %w", c.Pos(), c.Text, err)
	}
	return ir.IntValue(n), nil
}

// fractionOf renders a literal's Minor digits (e.g. 14 in 3.14) as the
// fractional part 0.14, matching the decimal's written digit count isn't
// tracked separately in ast.Constant — Minor is treated as a base-10
// fraction scaled to its own digit width via repeated division.
func fractionOf(minor int64) float64 {
	if minor == 0 {
		return 0
	}
	f := float64(minor)
	for f >= 1 {
		f /= 10
	}
	return f
}

func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}

func evalConstName(e *ast.NameExpr, scope *ir.Scope) (ir.Value, error) {
	if len(e.Segments) == 0 {
		return ir.Value{}, fmt.Errorf("%s: empty name", e.Pos())
	}
	head := e.Segments[0]
	sym, ok := scope.Lookup(head.Ident)
	if !ok {
		return ir.Value{}, fmt.Errorf("%s: undefined symbol %q in constant expression", e.Pos(), head.Ident)
	}

	// Color.Red: head resolves to the enum typedef itself, not a value, so
	// the single remaining segment names the member rather than indexing or
	// further qualifying a constant.
	if enumSym, isEnum := sym.(*ir.EnumSymbol); isEnum {
		if head.Index != nil {
			return ir.Value{}, fmt.Errorf("%s: cannot index an enum type name", e.Pos())
		}
		if len(e.Segments) != 2 {
			return ir.Value{}, fmt.Errorf("%s: enum member access must be of the form %s.Member", e.Pos(), head.Ident)
		}
		member := e.Segments[1]
		if member.Index != nil {
			return ir.Value{}, fmt.Errorf("%s: cannot index an enum member", e.Pos())
		}
		return EvalEnumMember(enumSym.Def, member.Ident, scope)
	}

	var base ir.Value
	switch s := sym.(type) {
	case *ir.ConstantInstance:
		base = s.Value
	default:
		return ir.Value{}, fmt.Errorf("%s: %q is not a compile-time constant", e.Pos(), head.Ident)
	}

	if head.Index != nil {
		idx, err := EvalConst(head.Index, scope)
		if err != nil {
			return ir.Value{}, err
		}
		base, err = indexInto(e.Pos(), base, idx)
		if err != nil {
			return ir.Value{}, err
		}
	}

	if len(e.Segments) > 1 {
		return ir.Value{}, fmt.Errorf("%s: %q has no members to access", e.Pos(), head.Ident)
	}
	return base, nil
}

// EvalEnumMember resolves memberName's ordinal within def. A member with no
// explicit value is one greater than the previous member's resolved value,
// starting at 0 for the first member (monotonic auto-numbering); a member
// with an explicit value expression resets the count from there.
func EvalEnumMember(def *ast.EnumDecl, memberName string, scope *ir.Scope) (ir.Value, error) {
	var ordinal int64
	for _, m := range def.Members {
		if m.Value != nil {
			v, err := EvalConst(m.Value, scope)
			if err != nil {
				return ir.Value{}, err
			}
			ordinal = v.AsInt()
		}
		if m.Name == memberName {
			return ir.EnumValue(def.Name, memberName, ordinal), nil
		}
		ordinal++
	}
	return ir.Value{}, fmt.Errorf("%s: enum %q has no member %q", def.Pos(), def.Name, memberName)
}

func indexInto(pos ast.Position, base ir.Value, idx ir.Value) (ir.Value, error) {
	if base.Kind != ir.ValArray {
		return ir.Value{}, fmt.Errorf("%s: cannot index non-array constant", pos)
	}
	i := idx.AsInt()
	if i < 0 || int(i) >= len(base.Elems) {
		return ir.Value{}, fmt.Errorf("%s: array index %d out of range [0,%d)", pos, i, len(base.Elems))
	}
	return base.Elems[i], nil
}

func evalUnary(e *ast.UnaryExpr, scope *ir.Scope) (ir.Value, error) {
	v, err := EvalConst(e.Expr, scope)
	if err != nil {
		return ir.Value{}, err
	}
	switch e.Op {
	case ast.OpNeg:
		if v.Kind == ir.ValFloat {
			return ir.FloatValue(-v.AsFloat()), nil
		}
		return ir.IntValue(-v.AsInt()), nil
	case ast.OpNot:
		return ir.BoolValue(!v.AsBool()), nil
	case ast.OpBitNot:
		return ir.IntValue(^v.AsInt()), nil
	default:
		return ir.Value{}, fmt.Errorf("%s: unknown unary operator", e.Pos())
	}
}

func evalBinary(e *ast.BinaryExpr, scope *ir.Scope) (ir.Value, error) {
	l, err := EvalConst(e.Left, scope)
	if err != nil {
		return ir.Value{}, err
	}
	r, err := EvalConst(e.Right, scope)
	if err != nil {
		return ir.Value{}, err
	}

	if e.Op.IsComparison() {
		return evalComparison(e, l, r)
	}

	floaty := l.Kind == ir.ValFloat || r.Kind == ir.ValFloat
	switch e.Op {
	case ast.OpAdd:
		if floaty {
			return ir.FloatValue(l.AsFloat() + r.AsFloat()), nil
		}
		return ir.IntValue(l.AsInt() + r.AsInt()), nil
	case ast.OpSub:
		if floaty {
			return ir.FloatValue(l.AsFloat() - r.AsFloat()), nil
		}
		return ir.IntValue(l.AsInt() - r.AsInt()), nil
	case ast.OpMul:
		if floaty {
			return ir.FloatValue(l.AsFloat() * r.AsFloat()), nil
		}
		return ir.IntValue(l.AsInt() * r.AsInt()), nil
	case ast.OpMod:
		if r.AsInt() == 0 {
			return ir.Value{}, fmt.Errorf("%s: modulo by zero", e.Pos())
		}
		return ir.IntValue(l.AsInt() % r.AsInt()), nil
	case ast.OpBitAnd:
		return ir.IntValue(l.AsInt() & r.AsInt()), nil
	case ast.OpBitOr:
		return ir.IntValue(l.AsInt() | r.AsInt()), nil
	case ast.OpBitXor:
		return ir.IntValue(l.AsInt() ^ r.AsInt()), nil
	case ast.OpShl:
		return ir.IntValue(l.AsInt() << uint(r.AsInt())), nil
	case ast.OpShr:
		return ir.IntValue(l.AsInt() >> uint(r.AsInt())), nil
	default:
		return ir.Value{}, fmt.Errorf("%s: unsupported operator %s in constant expression", e.Pos(), e.Op)
	}
}

func evalComparison(e *ast.BinaryExpr, l, r ir.Value) (ir.Value, error) {
	switch e.Op {
	case ast.OpOr:
		return ir.BoolValue(l.AsBool() || r.AsBool()), nil
	case ast.OpAnd:
		return ir.BoolValue(l.AsBool() && r.AsBool()), nil
	case ast.OpEq:
		return ir.BoolValue(valuesEqual(l, r)), nil
	case ast.OpNeq:
		return ir.BoolValue(!valuesEqual(l, r)), nil
	case ast.OpLt:
		return ir.BoolValue(compareNumeric(l, r) < 0), nil
	case ast.OpGt:
		return ir.BoolValue(compareNumeric(l, r) > 0), nil
	case ast.OpLte:
		return ir.BoolValue(compareNumeric(l, r) <= 0), nil
	case ast.OpGte:
		return ir.BoolValue(compareNumeric(l, r) >= 0), nil
	default:
		return ir.Value{}, fmt.Errorf("%s: unsupported comparison operator %s", e.Pos(), e.Op)
	}
}

func valuesEqual(l, r ir.Value) bool {
	if l.Kind == ir.ValString || r.Kind == ir.ValString {
		return l.S == r.S
	}
	if l.Kind == ir.ValFloat || r.Kind == ir.ValFloat {
		return l.AsFloat() == r.AsFloat()
	}
	return l.AsInt() == r.AsInt()
}

func compareNumeric(l, r ir.Value) int {
	if l.Kind == ir.ValFloat || r.Kind == ir.ValFloat {
		lf, rf := l.AsFloat(), r.AsFloat()
		switch {
		case lf < rf:
			return -1
		case lf > rf:
			return 1
		default:
			return 0
		}
	}
	li, ri := l.AsInt(), r.AsInt()
	switch {
	case li < ri:
		return -1
	case li > ri:
		return 1
	default:
		return 0
	}
}

func evalCast(e *ast.TypeCastExpr, scope *ir.Scope) (ir.Value, error) {
	v, err := EvalConst(e.Expr, scope)
	if err != nil {
		return ir.Value{}, err
	}
	it, ok := e.To.(*ast.IntrinsicType)
	if !ok {
		return ir.Value{}, fmt.Errorf("%s: cast target must be an intrinsic type in a constant expression", e.Pos())
	}
	if it.Kind.IsFloat() {
		return ir.FloatValue(v.AsFloat()), nil
	}
	if it.Kind == ast.IntBool {
		return ir.BoolValue(v.AsBool()), nil
	}
	return ir.IntValue(v.AsInt()), nil
}
