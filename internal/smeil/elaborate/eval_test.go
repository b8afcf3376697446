package elaborate

import (
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/stretchr/testify/assert"
)

func intLit(text string) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: &ast.Constant{Kind: ast.ConstInteger, Text: text}}
}

func boolLit(b bool) *ast.LiteralExpr {
	text := "false"
	if b {
		text = "true"
	}
	return &ast.LiteralExpr{Value: &ast.Constant{Kind: ast.ConstBoolean, Text: text}}
}

func Test_EvalConst_IntegerLiterals(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		expect int64
	}{
		{name: "decimal", text: "42", expect: 42},
		{name: "hex", text: "0xFF", expect: 255},
		{name: "octal", text: "0o17", expect: 15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			v, err := EvalConst(intLit(tc.text), ir.NewScope(nil))
			assert.NoError(err)
			assert.Equal(tc.expect, v.AsInt())
		})
	}
}

func Test_EvalConst_BinaryArithmetic(t *testing.T) {
	assert := assert.New(t)

	expr := &ast.BinaryExpr{Left: intLit("3"), Op: ast.OpAdd, Right: intLit("4")}
	v, err := EvalConst(expr, ir.NewScope(nil))
	assert.NoError(err)
	assert.Equal(int64(7), v.AsInt())
}

func Test_EvalConst_ComparisonYieldsBool(t *testing.T) {
	assert := assert.New(t)

	expr := &ast.BinaryExpr{Left: intLit("3"), Op: ast.OpLt, Right: intLit("4")}
	v, err := EvalConst(expr, ir.NewScope(nil))
	assert.NoError(err)
	assert.Equal(ir.ValBool, v.Kind)
	assert.True(v.AsBool())
}

func Test_EvalConst_UnaryNot(t *testing.T) {
	assert := assert.New(t)

	expr := &ast.UnaryExpr{Op: ast.OpNot, Expr: boolLit(false)}
	v, err := EvalConst(expr, ir.NewScope(nil))
	assert.NoError(err)
	assert.True(v.AsBool())
}

func Test_EvalConst_NameLookup(t *testing.T) {
	assert := assert.New(t)

	scope := ir.NewScope(nil)
	assert.NoError(scope.Define("WIDTH", &ir.ConstantInstance{Name: "WIDTH", Value: ir.IntValue(8)}))

	expr := &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "WIDTH"}}}
	v, err := EvalConst(expr, scope)
	assert.NoError(err)
	assert.Equal(int64(8), v.AsInt())
}

func Test_EvalConst_UndefinedNameIsError(t *testing.T) {
	assert := assert.New(t)

	expr := &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "NOPE"}}}
	_, err := EvalConst(expr, ir.NewScope(nil))
	assert.Error(err)
}

func Test_EvalConst_ArrayIndex(t *testing.T) {
	assert := assert.New(t)

	scope := ir.NewScope(nil)
	arr := ir.ArrayValue([]ir.Value{ir.IntValue(10), ir.IntValue(20), ir.IntValue(30)})
	assert.NoError(scope.Define("TABLE", &ir.ConstantInstance{Name: "TABLE", Value: arr}))

	expr := &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "TABLE", Index: intLit("1")}}}
	v, err := EvalConst(expr, scope)
	assert.NoError(err)
	assert.Equal(int64(20), v.AsInt())
}

func Test_EvalConst_ModuloByZeroIsError(t *testing.T) {
	assert := assert.New(t)

	expr := &ast.BinaryExpr{Left: intLit("5"), Op: ast.OpMod, Right: intLit("0")}
	_, err := EvalConst(expr, ir.NewScope(nil))
	assert.Error(err)
}

func Test_EvalEnumMember_AutoNumbersFromZero(t *testing.T) {
	assert := assert.New(t)

	def := &ast.EnumDecl{Name: "Color", Members: []ast.EnumMember{
		{Name: "Red"},
		{Name: "Green"},
		{Name: "Blue"},
	}}

	v, err := EvalEnumMember(def, "Blue", ir.NewScope(nil))
	assert.NoError(err)
	assert.Equal(ir.ValEnum, v.Kind)
	assert.Equal(int64(2), v.AsInt())
	assert.Equal("Color.Blue", v.String())
}

func Test_EvalEnumMember_ResumesFromExplicitValue(t *testing.T) {
	assert := assert.New(t)

	def := &ast.EnumDecl{Name: "Status", Members: []ast.EnumMember{
		{Name: "Idle"},
		{Name: "Busy", Value: intLit("10")},
		{Name: "Error"},
	}}

	idle, err := EvalEnumMember(def, "Idle", ir.NewScope(nil))
	assert.NoError(err)
	assert.Equal(int64(0), idle.AsInt())

	busy, err := EvalEnumMember(def, "Busy", ir.NewScope(nil))
	assert.NoError(err)
	assert.Equal(int64(10), busy.AsInt())

	errVal, err := EvalEnumMember(def, "Error", ir.NewScope(nil))
	assert.NoError(err)
	assert.Equal(int64(11), errVal.AsInt())
}

func Test_EvalEnumMember_UnknownMemberIsError(t *testing.T) {
	assert := assert.New(t)

	def := &ast.EnumDecl{Name: "Color", Members: []ast.EnumMember{{Name: "Red"}}}
	_, err := EvalEnumMember(def, "Purple", ir.NewScope(nil))
	assert.Error(err)
}

func Test_EvalConst_EnumMemberAccess(t *testing.T) {
	assert := assert.New(t)

	scope := ir.NewScope(nil)
	def := &ast.EnumDecl{Name: "Color", Members: []ast.EnumMember{
		{Name: "Red"},
		{Name: "Green"},
	}}
	assert.NoError(scope.Define("Color", &ir.EnumSymbol{Def: def}))

	expr := &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "Color"}, {Ident: "Green"}}}
	v, err := EvalConst(expr, scope)
	assert.NoError(err)
	assert.Equal(ir.ValEnum, v.Kind)
	assert.Equal(int64(1), v.AsInt())
}

func Test_EvalConst_EnumMemberAccess_UnknownMemberIsError(t *testing.T) {
	assert := assert.New(t)

	scope := ir.NewScope(nil)
	def := &ast.EnumDecl{Name: "Color", Members: []ast.EnumMember{{Name: "Red"}}}
	assert.NoError(scope.Define("Color", &ir.EnumSymbol{Def: def}))

	expr := &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "Color"}, {Ident: "Purple"}}}
	_, err := EvalConst(expr, scope)
	assert.Error(err)
}
