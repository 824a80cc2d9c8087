package engine

import (
	"errors"
	"fmt"
)

var (
	errNilRule  = errors.New("nil rule")
	errZeroArea = errors.New("membership curve has zero area")
)

// MissingInputError reports an input variable referenced by the rule base
// that has no crisp value for the current evaluation.
type MissingInputError struct {
	Variable string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing crisp input for variable %q", e.Variable)
}

// NoRuleFiredError reports an output variable whose aggregated membership
// curve is identically zero, so that no centroid exists.
type NoRuleFiredError struct {
	Output string
}

func (e *NoRuleFiredError) Error() string {
	return fmt.Sprintf("no rule fired for output variable %q", e.Output)
}
