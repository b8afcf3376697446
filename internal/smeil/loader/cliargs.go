package loader

import (
	"strconv"

	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// ParseCLIArgs parses positional command-line argument texts into literal
// ir.Values, one per text, using spec §4.2's bool > int > float > string
// precedence: each text is tried as a bool, then a signed/unsigned integer,
// then a float, and whatever doesn't parse as any of those is kept as a
// plain string.
func ParseCLIArgs(texts []string) []ir.Value {
	vals := make([]ir.Value, len(texts))
	for i, text := range texts {
		vals[i] = parseLiteralArg(text)
	}
	return vals
}

func parseLiteralArg(text string) ir.Value {
	if b, err := strconv.ParseBool(text); err == nil {
		return ir.BoolValue(b)
	}
	if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		return ir.IntValue(n)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return ir.FloatValue(f)
	}
	return ir.StringValue(text)
}
