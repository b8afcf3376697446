// Package diag implements the error-handling design of spec §7: every
// diagnostic carries a source location and a category, plus a pair of
// messages (a terse technical one and a longer, optionally word-wrapped
// human one), in the style of the teacher's tqerrors and tunascript
// SyntaxError types.
package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Category classifies a Diagnostic per spec §7.
type Category string

const (
	CategoryLexical  Category = "lexical"
	CategorySyntax   Category = "syntactic"
	CategoryImport   Category = "import"
	CategorySymbol   Category = "semantic/symbol"
	CategoryType     Category = "type"
	CategoryStruct   Category = "structural"
	CategoryInternal Category = "internal"
)

// Specific subcategories referenced by the validator and elaborator, used
// alongside Category for programmatic dispatch (e.g. by tests asserting a
// specific failure mode).
const (
	KindUndefinedSymbol  = "UndefinedSymbol"
	KindDuplicateSymbol  = "DuplicateSymbol"
	KindAmbiguousSymbol  = "AmbiguousSymbol"
	KindTypeMismatch     = "TypeMismatch"
	KindWidthOverflow    = "WidthOverflow"
	KindDirectionMismatch = "DirectionMismatch"
	KindCycleInNetwork   = "CycleInNetwork"
	KindArityMismatch    = "ArityMismatch"
	KindNotConstant      = "NotConstant"
	KindImportCycle      = "ImportCycle"
	KindImportNotFound   = "ImportNotFound"
)

// Location identifies the source position a Diagnostic refers to.
type Location struct {
	File     string
	Line     int
	Col      int
	FullLine string
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Diagnostic is a single error or warning produced anywhere in the pipeline.
type Diagnostic struct {
	Category Category
	Kind     string
	Loc      Location
	Message  string
	Human    string
	wrapped  error
}

// New builds a Diagnostic. human may be empty, in which case HumanMessage()
// returns Message.
func New(cat Category, kind string, loc Location, message, human string) *Diagnostic {
	return &Diagnostic{Category: cat, Kind: kind, Loc: loc, Message: message, Human: human}
}

// Wrap attaches an underlying error for Unwrap().
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.wrapped = err
	return d
}

func (d *Diagnostic) Error() string {
	if d.Loc.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Category, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Category, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.wrapped }

// HumanMessage returns the message meant for display to a tool operator,
// falling back to the technical Message if none was set.
func (d *Diagnostic) HumanMessage() string {
	if d.Human != "" {
		return d.Human
	}
	return d.Message
}

// FullMessage renders the diagnostic with a cursor under the offending
// column (when the line is known) and word-wraps Error()'s text (location,
// category and the technical Message) to 80 columns, mirroring
// tunascript.SyntaxError.FullMessage/SourceLineWithCursor. The Human
// message is not included.
func (d *Diagnostic) FullMessage() string {
	var sb strings.Builder
	if d.Loc.FullLine != "" {
		sb.WriteString(d.Loc.FullLine)
		sb.WriteRune('\n')
		sb.WriteString(strings.Repeat(" ", max(0, d.Loc.Col-1)))
		sb.WriteString("^\n")
	}
	wrapped := rosed.Edit(d.Error()).Wrap(80).String()
	sb.WriteString(wrapped)
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Bag accumulates diagnostics across a pipeline run: fatal errors (which
// abort the stage that produced them) and warnings (which only surface
// after a successful build, per spec §7).
type Bag struct {
	Errors   []*Diagnostic
	Warnings []*Diagnostic
}

// AddError records a fatal diagnostic.
func (b *Bag) AddError(d *Diagnostic) { b.Errors = append(b.Errors, d) }

// AddWarning records a non-fatal diagnostic.
func (b *Bag) AddWarning(d *Diagnostic) { b.Warnings = append(b.Warnings, d) }

// HasErrors reports whether any fatal diagnostic has been recorded.
func (b *Bag) HasErrors() bool { return len(b.Errors) > 0 }

// First returns the first recorded error, or nil if none.
func (b *Bag) First() *Diagnostic {
	if len(b.Errors) == 0 {
		return nil
	}
	return b.Errors[0]
}
