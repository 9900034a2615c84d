package host

import (
	"github.com/cory-johannsen/spellbench/internal/spell/analyzer"
)

// toPayload converts an engine result to its wire form. The conversion is a
// deep copy; the payload shares nothing mutable with the engine result.
func toPayload(res analyzer.Analysis) *AnalysisPayload {
	out := &AnalysisPayload{
		Spells: make([]SpellPayload, 0, len(res.Spells)),
		Groups: res.Groups,
		Errors: res.Errors,
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	for _, s := range res.Spells {
		sp := SpellPayload{
			Name:         s.Name,
			Level:        s.Level,
			CastAt:       s.CastAt,
			BelowMinimum: s.BelowMinimum,
			Mean:         s.Mean,
			StdDev:       s.StdDev,
			Max:          s.Max,
			Formula:      s.Expr.String(),
			Line:         s.Line,
		}
		for _, o := range s.Dist.Outcomes() {
			sp.Histogram = append(sp.Histogram, Bucket{
				Value:  o.Value,
				Weight: o.Weight.String(),
				P:      o.P,
			})
		}
		out.Spells = append(out.Spells, sp)
	}
	return out
}
