package saturation

import (
	"errors"
	"fmt"

	"github.com/hupe1980/elgo/ontology"
)

// ErrNotQuiescent is returned by operations that require a fully saturated state.
var ErrNotQuiescent = errors.New("saturation: state is not quiescent")

// InvariantViolation reports a broken scheduling or indexing invariant.
// It aborts the run and indicates a programming error.
type InvariantViolation struct {
	Context ontology.ID
	Reason  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("saturation: invariant violation in context #%d: %s", e.Context, e.Reason)
}
