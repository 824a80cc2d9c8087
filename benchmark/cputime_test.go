package benchmark

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"example.com/water-quality/core/water"
)

func TestRunCPUTimeFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	errRusage := errors.New("getrusage failed")
	defer func(f func() (time.Duration, time.Duration, error)) { cpuTime = f }(cpuTime)
	cpuTime = func() (time.Duration, time.Duration, error) { return 0, 0, errRusage }

	_, err = Run(zap.NewNop(), &bytes.Buffer{}, sys, 4, 10)
	if !errors.Is(err, errRusage) {
		t.Errorf("Run() = %v, want %v", err, errRusage)
	}
}
