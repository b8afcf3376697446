package grammar

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// nameGrammar matches a hierarchical, optionally per-segment-indexed name:
// `ident ([ expr ])? ( . ident ([ expr ])? )*`, producing []ast.NameSegment.
// exprRef is the (possibly still-lazy) full expression grammar, used for
// index subexpressions.
func nameGrammar(exprRef *combinator.LazyRef) combinator.Combinator {
	segment := segmentGrammar(exprRef)
	tail := combinator.Sequence(combinator.Composite("name-tail", kw("."), segment))
	full := combinator.Composite("name", segment, tail)

	return combinator.Mapper("name-segments", full, func(m *combinator.Match) []ast.NameSegment {
		first, _ := combinator.Invoke[ast.NameSegment](m.Children[0])
		segs := []ast.NameSegment{first}
		for _, rep := range m.Children[1].Children {
			s, _ := combinator.Invoke[ast.NameSegment](rep.Children[1])
			segs = append(segs, s)
		}
		return segs
	})
}

func segmentGrammar(exprRef *combinator.LazyRef) combinator.Combinator {
	index := combinator.Composite("index", kw("["), exprRef.Combinator(), kw("]"))
	seg := combinator.Composite("name-segment", identMapper(), combinator.Optional(index))

	return combinator.Mapper("name-segment", seg, func(m *combinator.Match) ast.NameSegment {
		id, _ := combinator.Invoke[identResult](m.Children[0])
		result := ast.NameSegment{Ident: id.Name}
		if len(m.Children[1].Children) > 0 {
			idxMatch := m.Children[1].Children[0]
			idxExpr, _ := combinator.Invoke[ast.Expression](idxMatch.Children[1])
			result.Index = idxExpr
		}
		return result
	})
}
