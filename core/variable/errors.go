package variable

import (
	"fmt"
)

// DomainError reports a malformed variable, domain, or membership function
// detected while a variable or registry is being constructed.
type DomainError struct {
	Variable string
	Label    string
	Reason   string
	Err      error
}

func (e *DomainError) Error() string {
	var msg string
	if e.Label != "" {
		msg = fmt.Sprintf("variable %q, label %q: %s", e.Variable, e.Label, e.Reason)
	} else {
		msg = fmt.Sprintf("variable %q: %s", e.Variable, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error { return e.Err }
