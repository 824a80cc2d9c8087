// Package console implements the interactive water check prompt.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"example.com/water-quality/core/config"
	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/simulation"
)

const banner = "==========================================================================\n\n" +
	"          Welcome to Fuzzy Water Quality Monitoring System          \n\n" +
	"==========================================================================\n\n"

// Prompt asks for the crisp value of one input variable.
type Prompt struct {
	Variable string
	Name     string
	Unit     string
}

type Loop struct {
	Log     *zap.Logger
	Sim     *simulation.Simulation
	Prompts []Prompt
	Output  string
	Verdict config.Verdict
	// Checked, if set, is called with every successful inference.
	Checked func(res *engine.Result) error
}

var (
	errNotNumeric = errors.New("not numeric")
	errOutOfRange = errors.New("out of range")
)

// Run prompts for readings on r and reports results on w until the user
// declines to check again or r is exhausted.
func (l *Loop) Run(r io.Reader, w io.Writer) error {
	in := bufio.NewScanner(r)
	fmt.Fprint(w, banner)
	for {
		xs, err := l.read(in, w)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		err = l.check(w, xs)
		if err != nil {
			return err
		}
		fmt.Fprint(w, "\nDo you want to check the water quality again? (yes/no): ")
		if !in.Scan() {
			return in.Err()
		}
		if strings.ToLower(strings.TrimSpace(in.Text())) != "yes" {
			return nil
		}
	}
}

// read prompts for every input until all values are numeric and within
// their domains. A non-numeric value restarts the reading at the first
// prompt.
func (l *Loop) read(in *bufio.Scanner, w io.Writer) ([]float64, error) {
	for {
		xs, err := l.readOnce(in, w)
		switch {
		case errors.Is(err, errNotNumeric):
			fmt.Fprint(w, "Please enter valid numeric values!\n\n")
		case errors.Is(err, errOutOfRange):
			fmt.Fprint(w, "Please enter values within the specified limits!\n\n")
		case err != nil:
			return nil, err
		default:
			return xs, nil
		}
	}
}

func (l *Loop) readOnce(in *bufio.Scanner, w io.Writer) ([]float64, error) {
	reg := l.Sim.System().Registry()
	xs := make([]float64, len(l.Prompts))
	inRange := true
	for i, p := range l.Prompts {
		v, ok := reg.Lookup(p.Variable)
		if !ok {
			return nil, fmt.Errorf("%w: %q", simulation.ErrUnknownInput, p.Variable)
		}
		fmt.Fprintf(w, "Please enter the %s value (%g-%g%s): ", p.Name, v.Min(), v.Max(), p.Unit)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(in.Text()), 64)
		if err != nil || math.IsNaN(x) {
			return nil, errNotNumeric
		}
		xs[i] = x
		inRange = inRange && v.Contains(x)
	}
	if !inRange {
		return nil, errOutOfRange
	}
	return xs, nil
}

func (l *Loop) check(w io.Writer, xs []float64) error {
	l.Sim.Reset()
	for i, p := range l.Prompts {
		if err := l.Sim.SetInput(p.Variable, xs[i]); err != nil {
			return err
		}
	}
	out, err := l.Sim.Compute()
	if err != nil {
		l.Log.Info("failed to compute water quality", zap.Error(err))
		fmt.Fprintf(w, "Water quality cannot be determined: %v\n", err)
		return nil
	}
	q := out[l.Output]
	fmt.Fprintf(w, "Water Quality: %.2f%%\n", q)
	fmt.Fprintln(w, l.Verdict.Message(q))
	if l.Checked != nil {
		return l.Checked(l.Sim.Result())
	}
	return nil
}
