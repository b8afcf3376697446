package grammar

import (
	"strconv"
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// typeGrammar is built lazily (it's mutually recursive with expression
// grammar via array-size expressions and bus initializers) — see grammar.go
// for the late-binding wiring described in spec §9 "Recursive grammar
// fixpoints".
type typeGrammar struct {
	exprRef *combinator.LazyRef // the (possibly still-lazy) expression grammar
	selfRef *combinator.LazyRef

	typeExpr combinator.Combinator // placeholder, bound in build()
}

func newTypeGrammar(exprRef *combinator.LazyRef) *typeGrammar {
	return &typeGrammar{exprRef: exprRef, selfRef: combinator.Lazy("type")}
}

func (g *typeGrammar) Type() combinator.Combinator { return g.typeExpr }

func (g *typeGrammar) build() {
	intrinsic := combinator.Mapper("intrinsic-type", intrinsicTypeText(), func(m *combinator.Match) ast.Type {
		return intrinsicTypeFromText(m.Start.Text(), posOf(m.Start))
	})

	named := combinator.Mapper("named-type", dottedNameCombinator(), func(m *combinator.Match) ast.Type {
		names, _ := combinator.Invoke[[]string](m)
		return &ast.NamedType{Position: posOf(m.Start), Name: names}
	})

	// [size] Elem
	arraySize := combinator.Composite("array-size", kw("["), g.exprRef.Combinator(), kw("]"))
	arrayPrefix := combinator.Mapper("array-size", arraySize, func(m *combinator.Match) ast.Expression {
		v, _ := combinator.Invoke[ast.Expression](m.Children[1])
		return v
	})

	scalar := combinator.Choice("scalar-type", intrinsic, named)

	arrayOrScalar := combinator.Composite("array-or-scalar-type",
		combinator.Sequence(arrayPrefix), scalar)

	withArray := combinator.Mapper("type-with-array", arrayOrScalar, func(m *combinator.Match) ast.Type {
		elem, _ := combinator.Invoke[ast.Type](m.Children[1])
		sizes := combinator.InvokeMappers[ast.Expression](m.Children[0], "array-size")
		result := elem
		for i := len(sizes) - 1; i >= 0; i-- {
			result = &ast.ArrayType{Position: elem.Pos(), Size: sizes[i], Elem: result}
		}
		return result
	})

	// bus shape: { name:Type ; name:Type ; ... }
	busSignal := combinator.Composite("bus-signal", identMapper(), kw(":"), withArray)
	busSignalMapper := combinator.Mapper("bus-signal", busSignal, func(m *combinator.Match) ast.BusSignal {
		name, _ := combinator.Invoke[identResult](m.Children[0])
		typ, _ := combinator.Invoke[ast.Type](m.Children[2])
		return ast.BusSignal{Name: name.Name, Type: typ}
	})
	busSignals := combinator.Sequence(combinator.Composite("bus-signal-entry", busSignalMapper, kw(";")))
	busShape := combinator.Composite("bus-shape", kw("{"), busSignals, kw("}"))
	busType := combinator.Mapper("bus-type", busShape, func(m *combinator.Match) ast.Type {
		sigs := combinator.InvokeMappers[ast.BusSignal](m.Children[1], "bus-signal")
		return &ast.BusType{Position: posOf(m.Start), Signals: sigs}
	})

	full := combinator.Choice("type", busType, withArray)
	g.typeExpr = combinator.Mapper("type", full, func(m *combinator.Match) ast.Type {
		v, _ := combinator.Invoke[ast.Type](m)
		return v
	})
	g.selfRef.Set(g.typeExpr)
}

func intrinsicTypeText() combinator.Combinator {
	return combinator.Custom("intrinsic-type-text", func(text string) bool {
		switch text {
		case "bool", "int", "uint", "f32", "f64":
			return true
		}
		if len(text) > 1 && (text[0] == 'i' || text[0] == 'u') {
			_, err := strconv.Atoi(text[1:])
			return err == nil
		}
		return false
	})
}

func intrinsicTypeFromText(text string, pos ast.Position) *ast.IntrinsicType {
	switch text {
	case "bool":
		return &ast.IntrinsicType{Position: pos, Kind: ast.IntBool}
	case "int":
		return &ast.IntrinsicType{Position: pos, Kind: ast.IntPlatformSigned}
	case "uint":
		return &ast.IntrinsicType{Position: pos, Kind: ast.IntPlatformUnsigned}
	case "f32":
		return &ast.IntrinsicType{Position: pos, Kind: ast.IntFloat32}
	case "f64":
		return &ast.IntrinsicType{Position: pos, Kind: ast.IntFloat64}
	}
	width, _ := strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(text, "i"), "u"))
	if strings.HasPrefix(text, "i") {
		return &ast.IntrinsicType{Position: pos, Kind: ast.IntSigned, Width: width}
	}
	return &ast.IntrinsicType{Position: pos, Kind: ast.IntUnsigned, Width: width}
}
