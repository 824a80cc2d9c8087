package benchmark

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"example.com/water-quality/base/unixutil"

	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/simulation"
)

const (
	minLatency = 1           // ns
	maxLatency = 100_000_000 // ns
)

var cpuTime = unixutil.CPUTime

type Report struct {
	Requests int64
	Failures int64
	Elapsed  time.Duration
	UserCPU  time.Duration
	SysCPU   time.Duration
	Latency  *hdrhistogram.Histogram
}

// Run computes requests inference cycles on each of goroutines concurrent
// simulations over sys, with inputs drawn uniformly from their domains, and
// prints the latency distribution in microseconds to w.
func Run(log *zap.Logger, w io.Writer, sys *engine.System, goroutines, requests int) (*Report, error) {
	if goroutines <= 0 || requests <= 0 {
		return nil, fmt.Errorf("invalid load: %d goroutines, %d requests", goroutines, requests)
	}
	inputs := sys.Inputs()

	user0, sys0, err := cpuTime()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	r := &Report{Latency: hdrhistogram.New(minLatency, maxLatency, 3)}
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := goroutines; i > 0; i-- {
		go func() {
			defer wg.Done()
			hg := hdrhistogram.New(minLatency, maxLatency, 3)
			rnd := rand.New(rand.NewSource(int64(i)))
			sim := simulation.New(log, sys)
			var failures int64
			<-sg
			for j := requests; j > 0; j-- {
				for _, v := range inputs {
					x := v.Min() + rnd.Float64()*(v.Max()-v.Min())
					_ = sim.SetInput(v.Name(), x)
				}
				t0 := time.Now()
				_, err := sim.Compute()
				d := time.Since(t0)
				if err != nil {
					failures++
				}
				err = hg.RecordValue(max(d.Nanoseconds(), minLatency))
				if err != nil {
					log.Info("failed to record histogram value", zap.Error(err))
				}
			}
			mu.Lock()
			defer mu.Unlock()
			r.Latency.Merge(hg)
			r.Requests += int64(requests)
			r.Failures += failures
		}()
	}

	t0 := time.Now()
	close(sg)
	wg.Wait()
	r.Elapsed = time.Since(t0)
	user1, sys1, err := cpuTime()
	if err != nil {
		return nil, err
	}
	r.UserCPU = user1 - user0
	r.SysCPU = sys1 - sys0

	_, err = r.Latency.PercentilesPrint(w, 1, 1000.0)
	if err != nil {
		return nil, err
	}
	log.Info("benchmark completed",
		zap.Int64("requests", r.Requests),
		zap.Int64("failures", r.Failures),
		zap.Duration("elapsed", r.Elapsed),
		zap.Duration("user CPU", r.UserCPU),
		zap.Duration("system CPU", r.SysCPU),
		zap.Float64("p50 (us)", float64(r.Latency.ValueAtQuantile(50))/1000),
		zap.Float64("p99 (us)", float64(r.Latency.ValueAtQuantile(99))/1000),
	)
	return r, nil
}
