package core

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
)

// stretchScale is the stretch-move scale parameter; 2 is the standard
// choice from Goodman & Weare 2010.
const stretchScale = 2.0

// samplerConfig controls one ensemble run.
type samplerConfig struct {
	Walkers int
	Steps   int // post burn-in steps per walker
	Burn    int
	Thin    int
	Seed    uint64
	Workers int
}

// chain holds the flattened output of an ensemble run.
type chain struct {
	Samples    [][]float64 // [draw][param], burn-in discarded, thinned
	LogProbs   []float64   // log posterior per retained draw
	Acceptance float64     // mean acceptance fraction over all proposals
	MaxLogProb float64
	Best       []float64 // position of the highest-posterior draw seen
}

// ensemble is an affine-invariant stretch-move sampler. Walkers are split
// into two halves; each half is updated in parallel against the frozen
// complementary half, which keeps the update valid under parallelism.
type ensemble struct {
	logProb func(x []float64) float64
	dim     int

	walkers  [][]float64
	logProbs []float64
	rngs     []*rand.Rand
}

// newEnsemble seeds walker RNGs deterministically so results do not depend
// on goroutine scheduling.
func newEnsemble(logProb func(x []float64) float64, init [][]float64, seed uint64) (*ensemble, error) {
	if len(init) < 4 || len(init)%2 != 0 {
		return nil, fmt.Errorf("need an even number of walkers >= 4, got %d", len(init))
	}
	dim := len(init[0])
	e := &ensemble{
		logProb:  logProb,
		dim:      dim,
		walkers:  make([][]float64, len(init)),
		logProbs: make([]float64, len(init)),
		rngs:     make([]*rand.Rand, len(init)),
	}
	anyFinite := false
	for i, w := range init {
		if len(w) != dim {
			return nil, fmt.Errorf("walker %d has %d parameters, expected %d", i, len(w), dim)
		}
		e.walkers[i] = append([]float64(nil), w...)
		e.logProbs[i] = logProb(w)
		if !math.IsInf(e.logProbs[i], -1) {
			anyFinite = true
		}
		e.rngs[i] = rand.New(rand.NewSource(seed + uint64(i)*0x9e3779b97f4a7c15))
	}
	if !anyFinite {
		return nil, fmt.Errorf("no walker starts at finite posterior probability; check priors against the data")
	}
	return e, nil
}

// stepHalf advances every walker in [lo, hi) against the complementary
// half [otherLo, otherHi), spreading walkers across the worker pool.
// Returns the number of accepted proposals.
func (e *ensemble) stepHalf(lo, hi, otherLo, otherHi, workers int) int {
	var wg sync.WaitGroup
	accepted := make([]int, hi-lo)
	sem := make(chan struct{}, workers)

	for i := lo; i < hi; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			if e.stepWalker(i, otherLo, otherHi) {
				accepted[i-lo] = 1
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, a := range accepted {
		total += a
	}
	return total
}

// stepWalker proposes one stretch move for walker i using a random partner
// from the complementary half.
func (e *ensemble) stepWalker(i, otherLo, otherHi int) bool {
	rng := e.rngs[i]
	partner := e.walkers[otherLo+rng.Intn(otherHi-otherLo)]

	// z ~ g(z) with g(z) proportional to 1/sqrt(z) on [1/a, a].
	u := rng.Float64()
	z := (u*(stretchScale-1) + 1)
	z = z * z / stretchScale

	proposal := make([]float64, e.dim)
	for d := 0; d < e.dim; d++ {
		proposal[d] = partner[d] + z*(e.walkers[i][d]-partner[d])
	}

	lp := e.logProb(proposal)
	logRatio := float64(e.dim-1)*math.Log(z) + lp - e.logProbs[i]
	if math.Log(rng.Float64()) < logRatio {
		e.walkers[i] = proposal
		e.logProbs[i] = lp
		return true
	}
	return false
}

// run advances the whole ensemble and collects the flattened chain.
func (e *ensemble) run(ctx context.Context, cfg samplerConfig) (*chain, error) {
	half := len(e.walkers) / 2
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	out := &chain{MaxLogProb: math.Inf(-1)}
	totalProposals := 0
	totalAccepted := 0

	totalSteps := cfg.Burn + cfg.Steps
	for step := 0; step < totalSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sampling interrupted: %w", err)
		}

		totalAccepted += e.stepHalf(0, half, half, len(e.walkers), workers)
		totalAccepted += e.stepHalf(half, len(e.walkers), 0, half, workers)
		totalProposals += len(e.walkers)

		if step < cfg.Burn || (step-cfg.Burn)%cfg.Thin != 0 {
			continue
		}
		for i, w := range e.walkers {
			if math.IsInf(e.logProbs[i], -1) {
				continue // walker never found the posterior; drop its draws
			}
			out.Samples = append(out.Samples, append([]float64(nil), w...))
			out.LogProbs = append(out.LogProbs, e.logProbs[i])
			if e.logProbs[i] > out.MaxLogProb {
				out.MaxLogProb = e.logProbs[i]
				out.Best = append([]float64(nil), w...)
			}
		}
	}

	if len(out.Samples) == 0 {
		return nil, fmt.Errorf("chain produced no finite-posterior samples")
	}
	out.Acceptance = float64(totalAccepted) / float64(totalProposals)
	return out, nil
}
