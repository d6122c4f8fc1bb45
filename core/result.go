package core

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pulsegrid/afterglow/core/prior"
	"github.com/pulsegrid/afterglow/schema"
)

// Credible interval percentiles: median with the 68% band.
const (
	lowerQuantile  = 0.16
	medianQuantile = 0.5
	upperQuantile  = 0.84
)

// summarizeChain reduces the flattened chain to per-parameter posterior
// summaries, in prior-set order.
func summarizeChain(c *chain, priors *prior.Set) []schema.ParamSummary {
	names := priors.Names()
	out := make([]schema.ParamSummary, len(names))

	column := make([]float64, len(c.Samples))
	for j, name := range names {
		for i, s := range c.Samples {
			column[i] = s[j]
		}
		sorted := append([]float64(nil), column...)
		sort.Float64s(sorted)

		p, _ := priors.Get(name)
		lo, hi := p.Bounds()
		maxLike := math.NaN()
		if c.Best != nil {
			maxLike = c.Best[j]
		}
		out[j] = schema.ParamSummary{
			Name:       name,
			Median:     stat.Quantile(medianQuantile, stat.Empirical, sorted, nil),
			Lower:      stat.Quantile(lowerQuantile, stat.Empirical, sorted, nil),
			Upper:      stat.Quantile(upperQuantile, stat.Empirical, sorted, nil),
			MaxLike:    maxLike,
			PriorLower: lo,
			PriorUpper: hi,
		}
	}
	return out
}
