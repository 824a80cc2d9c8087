// Driver for quick experiments

package main

import (
	"go.uber.org/zap"

	"example.com/water-quality/core/simulation"
	"example.com/water-quality/core/water"
)

func runX() {
	initLogger(true /* verbose */)

	sys := newSystem()
	sim := simulation.New(log, sys)
	for _, r := range sys.Rules() {
		log.Debug("rule", zap.Stringer("rule", r))
	}
	setInputs(sim, 7, 300)
	out, err := sim.Compute()
	if err != nil {
		log.Fatal("failed to compute water quality", zap.Error(err))
	}
	log.Debug("water quality", zap.Float64("quality", out[water.Quality]))
	for i, st := range sim.Result().Strengths {
		log.Debug("rule strength", zap.Int("rule", i), zap.Float64("strength", st))
	}
}
