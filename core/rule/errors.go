package rule

import (
	"errors"
	"fmt"
)

var (
	errEmptyOperator = errors.New("operator needs at least one operand")
	errNilExpr       = errors.New("nil expression")
)

// UnknownTermError reports a (variable, label) pair that does not resolve in
// the variable registry, or resolves to a variable of the wrong kind.
type UnknownTermError struct {
	Term   Term
	Reason string
}

func (e *UnknownTermError) Error() string {
	return fmt.Sprintf("unknown term %s: %s", e.Term, e.Reason)
}

// TableError reports a label combination of a rule table that is either
// unmapped or mapped more than once.
type TableError struct {
	Row, Col string
	Reason   string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("rule table entry (%s, %s): %s", e.Row, e.Col, e.Reason)
}
