package elaborate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// anonymousName mints a synthetic name for an instance declared `instance _
// of F(...)` (spec §4.3 step 4: "Anonymous instances (name `_`) get a
// synthetic unique name"). index is the instance's source-order position
// within its enclosing declaration list, retained in the name alongside the
// uuid-derived suffix for deterministic debugging (SPEC_FULL §4.3).
func anonymousName(index int) string {
	id := uuid.New().String()
	short := strings.ReplaceAll(id, "-", "")[:8]
	return fmt.Sprintf("_anon_%d_%s", index, short)
}
