package combinator

import (
	"strconv"
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/token"
	"github.com/stretchr/testify/assert"
)

// numNode and binNode model a tiny arithmetic AST, just enough to exercise
// BuildPrecedenceChain without dragging in the full SMEIL expression
// grammar.
type numNode int

type binNode struct {
	Left  any
	Op    string
	Right any
}

func numToken(text string) token.Token {
	return token.New(text, token.NewClass("num"), 0, 1, 1, text)
}

func opToken(text string) token.Token {
	return token.New(text, token.NewClass("op"), 0, 1, 1, text)
}

func arithStream(texts ...string) *token.SliceStream {
	toks := make([]token.Token, len(texts))
	for i, t := range texts {
		if _, err := strconv.Atoi(t); err == nil {
			toks[i] = numToken(t)
		} else {
			toks[i] = opToken(t)
		}
	}
	return token.NewSliceStream(toks)
}

// arithChain builds additive-over-multiplicative precedence, lowest first,
// matching the ordering convention of spec §4.1's opLevels.
func arithChain() Combinator {
	terminal := Mapper("num", Regex(`[0-9]+`), func(m *Match) any {
		n, _ := strconv.Atoi(m.Start.Text())
		return numNode(n)
	})
	levels := []OpLevel{
		{Name: "additive", Ops: []string{"+", "-"}},
		{Name: "multiplicative", Ops: []string{"*", "%"}},
	}
	return BuildPrecedenceChain(terminal, levels, func(left any, op string, right any) any {
		return binNode{Left: left, Op: op, Right: right}
	})
}

func Test_BuildPrecedenceChain_TighterOpBindsCloser(t *testing.T) {
	assert := assert.New(t)

	chain := arithChain()
	s := arithStream("1", "+", "2", "*", "3")
	engine := NewEngine(Options{})

	m, err := engine.Match(chain, s)
	assert.NoError(err)

	v, ok := Invoke[any](m)
	assert.True(ok)

	top, ok := v.(binNode)
	assert.True(ok)
	assert.Equal("+", top.Op)
	assert.Equal(numNode(1), top.Left)

	right, ok := top.Right.(binNode)
	assert.True(ok)
	assert.Equal("*", right.Op)
	assert.Equal(numNode(2), right.Left)
	assert.Equal(numNode(3), right.Right)
}

func Test_BuildPrecedenceChain_SameLevelIsLeftAssociative(t *testing.T) {
	assert := assert.New(t)

	chain := arithChain()
	s := arithStream("1", "-", "2", "-", "3")
	engine := NewEngine(Options{})

	m, err := engine.Match(chain, s)
	assert.NoError(err)

	v, ok := Invoke[any](m)
	assert.True(ok)

	top, ok := v.(binNode)
	assert.True(ok)
	assert.Equal("-", top.Op)
	assert.Equal(numNode(3), top.Right)

	left, ok := top.Left.(binNode)
	assert.True(ok)
	assert.Equal("-", left.Op)
	assert.Equal(numNode(1), left.Left)
	assert.Equal(numNode(2), left.Right)
}

func Test_Composite_RollsBackSnapshotOnFailure(t *testing.T) {
	assert := assert.New(t)

	rule := Composite("pair", Literal("a"), Literal("b"))
	s := token.NewSliceStream([]token.Token{opToken("a"), opToken("x")})

	m := rule.match(s)
	assert.False(m.Matched)
	assert.Equal(0, s.Pos())
	assert.Equal(0, s.Depth())
}

func Test_Choice_SnapshotDepthReturnsToZeroAfterAllBranchesFail(t *testing.T) {
	assert := assert.New(t)

	rule := Choice("letter", Literal("a"), Literal("b"), Literal("c"))
	s := token.NewSliceStream([]token.Token{opToken("z")})

	m := rule.match(s)
	assert.False(m.Matched)
	assert.Equal(0, s.Depth())
	assert.Equal(0, s.Pos())
}

func Test_Sequence_CommitsEachRepetitionAndLeavesDepthZero(t *testing.T) {
	assert := assert.New(t)

	rule := Sequence(Literal("a"))
	s := token.NewSliceStream([]token.Token{opToken("a"), opToken("a"), opToken("b")})

	m := rule.match(s)
	assert.True(m.Matched)
	assert.Equal(2, m.Consumed)
	assert.Equal(2, s.Pos())
	assert.Equal(0, s.Depth())
}

func Test_FindDeepestFailure_PrefersLongestConsumedPrefix(t *testing.T) {
	assert := assert.New(t)

	assign := Composite("assign", Literal("x"), Literal("="), Literal("1"), Literal(";"))
	short := Composite("short", Literal("y"))
	rule := Choice("stmt", short, assign)

	s := token.NewSliceStream([]token.Token{opToken("x"), opToken("="), opToken("1"), opToken("}")})
	m := rule.match(s)
	assert.False(m.Matched)

	fail := FindDeepestFailure(m)
	assert.NotNil(fail)
	assert.Equal("assign", fail.Combinator.String())
	assert.Equal(3, fail.Consumed)
}

func Test_Engine_Match_ReportsParseErrorOnUnconsumedInput(t *testing.T) {
	assert := assert.New(t)

	rule := Literal("a")
	s := token.NewSliceStream([]token.Token{opToken("a"), opToken("b")})
	engine := NewEngine(Options{})

	_, err := engine.Match(rule, s)
	assert.Error(err)

	perr, ok := err.(*ParseError)
	assert.True(ok)
	assert.Equal("end of input", perr.Expected)
	assert.Equal(`"b"`, perr.Found)
}

func Test_Engine_Match_ReportsParseErrorOnFailedMatch(t *testing.T) {
	assert := assert.New(t)

	rule := Literal("a")
	s := token.NewSliceStream([]token.Token{opToken("z")})
	engine := NewEngine(Options{})

	_, err := engine.Match(rule, s)
	assert.Error(err)

	perr, ok := err.(*ParseError)
	assert.True(ok)
	assert.Equal(`"a"`, perr.Expected)
	assert.Equal(`"z"`, perr.Found)
}
