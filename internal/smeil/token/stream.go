package token

// Stream is the buffered enumerator contract the combinator engine drives.
// Implementations buffer tokens so that a Rollback can restore a prior
// position without re-reading the underlying tokenizer. Snapshots form a
// stack: every Snapshot must be paired with exactly one Rollback or Commit
// (see spec §5, "snapshot stack discipline").
type Stream interface {
	// Current returns the token at the stream's current position without
	// advancing it. Returns an EOF token if the stream is empty.
	Current() Token

	// Advance moves the stream forward by one token.
	Advance()

	// Empty reports whether the stream has been exhausted.
	Empty() bool

	// Snapshot pushes the current position onto the snapshot stack and
	// returns a handle to it.
	Snapshot() int

	// Rollback restores the stream to the position recorded by the given
	// snapshot handle and discards any intervening buffered progress above
	// it on the stack.
	Rollback(handle int)

	// Commit merges the snapshot at the given handle into its enclosing
	// snapshot, i.e. it discards the snapshot without moving the stream.
	Commit(handle int)
}

// SliceStream is a Stream over a pre-tokenized, fully materialized slice of
// Tokens. This is the common case: the tokenizer collaborator runs to
// completion and hands the combinator engine a flat slice.
type SliceStream struct {
	tokens []Token
	pos    int
	stack  []int
}

// NewSliceStream builds a Stream over an already-lexed token slice.
func NewSliceStream(tokens []Token) *SliceStream {
	return &SliceStream{tokens: tokens}
}

func (s *SliceStream) Current() Token {
	if s.pos >= len(s.tokens) {
		return EOF()
	}
	return s.tokens[s.pos]
}

func (s *SliceStream) Advance() {
	if s.pos < len(s.tokens) {
		s.pos++
	}
}

func (s *SliceStream) Empty() bool {
	return s.pos >= len(s.tokens)
}

func (s *SliceStream) Snapshot() int {
	s.stack = append(s.stack, s.pos)
	return len(s.stack) - 1
}

func (s *SliceStream) Rollback(handle int) {
	if handle < 0 || handle >= len(s.stack) {
		return
	}
	s.pos = s.stack[handle]
	s.stack = s.stack[:handle]
}

func (s *SliceStream) Commit(handle int) {
	if handle < 0 || handle >= len(s.stack) {
		return
	}
	// the position recorded by this snapshot is discarded; the stream
	// stays wherever it has advanced to, but the snapshot frame itself is
	// popped so the enclosing snapshot doesn't see a stale entry.
	s.stack = s.stack[:handle]
}

// Depth returns the current snapshot stack depth. Used by tests asserting
// the snapshot-discipline invariant of spec §8.
func (s *SliceStream) Depth() int {
	return len(s.stack)
}

// Pos returns the current token index. Exposed for diagnostics and tests.
func (s *SliceStream) Pos() int {
	return s.pos
}

// At returns the token at absolute index i, or EOF if out of range. Used by
// error reporting to inspect tokens around a failure point.
func (s *SliceStream) At(i int) Token {
	if i < 0 || i >= len(s.tokens) {
		return EOF()
	}
	return s.tokens[i]
}
