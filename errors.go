package elgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/elgo/internal/saturation"
	"github.com/hupe1980/elgo/ontology"
)

var (
	// ErrUnsupportedTask is returned for queries outside what the reasoner can
	// answer completely, such as the taxonomy node of a compound expression.
	ErrUnsupportedTask = errors.New("unsupported reasoning task")

	// ErrInconsistentOntology is returned when a taxonomy is requested for an
	// ontology in which owl:Thing is unsatisfiable.
	ErrInconsistentOntology = errors.New("ontology is inconsistent")

	// ErrClosed is returned when the reasoner has been closed.
	ErrClosed = errors.New("reasoner is closed")

	// ErrInterrupted is the cancellation cause set by Interrupt.
	ErrInterrupted = errors.New("reasoner interrupted")
)

// ErrInvariantViolation indicates a broken internal invariant. The run that
// observed it was aborted.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvariantViolation struct {
	Context ontology.ID
	Reason  string
	cause   error
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in context #%d: %s", e.Context, e.Reason)
}

func (e *ErrInvariantViolation) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var iv *saturation.InvariantViolation
	if errors.As(err, &iv) {
		return &ErrInvariantViolation{Context: iv.Context, Reason: iv.Reason, cause: err}
	}

	return err
}
