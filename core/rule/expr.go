package rule

import (
	"strings"

	"example.com/water-quality/core/variable"
)

// Term names a fuzzy set: a label of a linguistic variable.
type Term struct {
	Variable string
	Label    string
}

func (t Term) String() string {
	return t.Variable + " IS " + t.Label
}

// Expr is an antecedent expression: a term, or a conjunction or disjunction
// of expressions.
type Expr interface {
	// eval returns the truth degree of the expression.
	eval(fuzzified map[string]variable.Memberships) float64
	walk(fn func(Term))
	String() string
}

type termExpr struct{ t Term }

type andExpr struct{ xs []Expr }

type orExpr struct{ xs []Expr }

func Is(variable, label string) Expr {
	return termExpr{t: Term{Variable: variable, Label: label}}
}

func And(xs ...Expr) Expr { return andExpr{xs: xs} }

func Or(xs ...Expr) Expr { return orExpr{xs: xs} }

func (e termExpr) eval(fuzzified map[string]variable.Memberships) float64 {
	return fuzzified[e.t.Variable][e.t.Label]
}

func (e termExpr) walk(fn func(Term)) { fn(e.t) }

func (e termExpr) String() string { return e.t.String() }

func (e andExpr) eval(fuzzified map[string]variable.Memberships) float64 {
	v := e.xs[0].eval(fuzzified)
	for _, x := range e.xs[1:] {
		v = min(v, x.eval(fuzzified))
	}
	return v
}

func (e andExpr) walk(fn func(Term)) {
	for _, x := range e.xs {
		x.walk(fn)
	}
}

func (e andExpr) String() string { return join(e.xs, " AND ") }

func (e orExpr) eval(fuzzified map[string]variable.Memberships) float64 {
	v := e.xs[0].eval(fuzzified)
	for _, x := range e.xs[1:] {
		v = max(v, x.eval(fuzzified))
	}
	return v
}

func (e orExpr) walk(fn func(Term)) {
	for _, x := range e.xs {
		x.walk(fn)
	}
}

func (e orExpr) String() string { return join(e.xs, " OR ") }

func join(xs []Expr, sep string) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		switch x.(type) {
		case termExpr:
			ss[i] = x.String()
		default:
			ss[i] = "(" + x.String() + ")"
		}
	}
	return strings.Join(ss, sep)
}

// check reports structurally invalid expressions: nil nodes and operators
// without operands.
func check(e Expr) error {
	switch x := e.(type) {
	case nil:
		return errNilExpr
	case andExpr:
		return checkAll(x.xs)
	case orExpr:
		return checkAll(x.xs)
	}
	return nil
}

func checkAll(xs []Expr) error {
	if len(xs) == 0 {
		return errEmptyOperator
	}
	for _, x := range xs {
		if err := check(x); err != nil {
			return err
		}
	}
	return nil
}
