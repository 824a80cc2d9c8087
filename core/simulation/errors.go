package simulation

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownInput = errors.New("unknown input variable")
	ErrInvalidInput = errors.New("input value is not a finite number")
)

// DomainWarning records a crisp input set outside the domain of its
// variable. The value is kept and used; the warning is informational.
type DomainWarning struct {
	Variable string
	Value    float64
	Min, Max float64
}

func (w DomainWarning) String() string {
	return fmt.Sprintf("%s = %v outside domain [%v, %v]", w.Variable, w.Value, w.Min, w.Max)
}
