package analyzer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/spellbench/internal/spell/analyzer"
)

// TestAnalyze_Basic verifies the happy path end to end.
func TestAnalyze_Basic(t *testing.T) {
	src := `
# A couple of classics.
spell Fireball level 3: 8d6
spell "Magic Missile" level 1: sum(2 + slot, 1d4 + 1)
`
	res := analyzer.Analyze(src, map[string]int{"slot": 3})
	require.Empty(t, res.Errors)
	require.Len(t, res.Spells, 2)

	fb := res.Spells[0]
	assert.Equal(t, "Fireball", fb.Name)
	assert.Equal(t, 3, fb.Level)
	assert.Equal(t, 3, fb.CastAt)
	assert.False(t, fb.BelowMinimum)
	assert.InDelta(t, 28.0, fb.Mean, 1e-9, "8d6 averages 28")
	assert.Equal(t, 48, fb.Max)
	assert.Equal(t, 8, fb.Dist.Min())

	mm := res.Spells[1]
	assert.Equal(t, "Magic Missile", mm.Name)
	assert.Equal(t, 5*2, mm.Dist.Min(), "five missiles of 1d4+1 minimum")
	assert.Equal(t, 5*5, mm.Dist.Max())
}

// TestAnalyze_BelowMinimumLevel verifies the warning flag: a level-3 spell
// cast at slot 2 is flagged but still produces a full distribution.
func TestAnalyze_BelowMinimumLevel(t *testing.T) {
	src := `spell Fireball level 3: 8d6 + slot`
	res := analyzer.Analyze(src, map[string]int{"slot": 2})
	require.Empty(t, res.Errors)
	require.Len(t, res.Spells, 1)

	fb := res.Spells[0]
	assert.True(t, fb.BelowMinimum)
	assert.Equal(t, 3, fb.Level)
	assert.Equal(t, 2, fb.CastAt)
	assert.Positive(t, fb.Max, "flagged spells still get a distribution")
}

// TestAnalyze_NoSlotReference verifies leveled spells without a slot
// parameter are cast at their declared level.
func TestAnalyze_NoSlotReference(t *testing.T) {
	res := analyzer.Analyze(`spell Smite level 2: 3d8`, nil)
	require.Len(t, res.Spells, 1)
	assert.Equal(t, 2, res.Spells[0].CastAt)
	assert.False(t, res.Spells[0].BelowMinimum)
}

// TestAnalyze_OneBadOneGood verifies per-block isolation at the top level:
// exactly one error message and exactly one analysis entry.
func TestAnalyze_OneBadOneGood(t *testing.T) {
	src := `spell Broken: 1d6 + + 2
spell Good: 2d10`
	res := analyzer.Analyze(src, nil)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "line 1")
	require.Len(t, res.Spells, 1)
	assert.Equal(t, "Good", res.Spells[0].Name)
}

// TestAnalyze_EvaluationErrorIsolated verifies evaluation failures name the
// spell and line and never block the rest of the collection.
func TestAnalyze_EvaluationErrorIsolated(t *testing.T) {
	src := `spell Fine: 1d6
spell Cursed: 1d6 / 0
spell AlsoFine: 1d8`
	res := analyzer.Analyze(src, nil)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Cursed")
	assert.Contains(t, res.Errors[0], "line 2")
	assert.Contains(t, res.Errors[0], "division by zero")

	require.Len(t, res.Spells, 2)
	assert.Equal(t, "Fine", res.Spells[0].Name)
	assert.Equal(t, "AlsoFine", res.Spells[1].Name)
}

// TestAnalyze_EnormousDie verifies a die size far past any support limit is
// one per-spell error, not a crash of the whole pass: a panic here would take
// down every session the hosting process serves.
func TestAnalyze_EnormousDie(t *testing.T) {
	src := `spell Nuke: 500d20000000000000000
spell Fine: 1d6`
	res := analyzer.Analyze(src, nil)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Nuke")
	assert.Contains(t, res.Errors[0], "too large")

	require.Len(t, res.Spells, 1)
	assert.Equal(t, "Fine", res.Spells[0].Name)
}

// TestAnalyze_DefaultSubstitution verifies ids absent from the assignment
// take their descriptor defaults without erroring.
func TestAnalyze_DefaultSubstitution(t *testing.T) {
	src := `
param bonus "Bonus" group "G" stepper 0..10 default 4
spell Zap: 1d1 + bonus
`
	res := analyzer.Analyze(src, nil)
	require.Empty(t, res.Errors)
	require.Len(t, res.Spells, 1)
	assert.Equal(t, 5, res.Spells[0].Dist.Min(), "default 4 plus the 1d1")
}

// TestAnalyze_SharedParameterConsistent verifies one descriptor drives both
// referencing spells.
func TestAnalyze_SharedParameterConsistent(t *testing.T) {
	src := `
spell A: 1d1 + mod
spell B: 2d1 + mod
`
	res := analyzer.Analyze(src, map[string]int{"mod": 7})
	require.Len(t, res.Spells, 2)
	require.Len(t, res.Groups, 1)
	require.Len(t, res.Groups[0].Params, 1)

	assert.Equal(t, 8, res.Spells[0].Dist.Min())
	assert.Equal(t, 9, res.Spells[1].Dist.Min())
}

// TestAnalyze_Deterministic verifies identical inputs produce identical
// output, and that changing a parameter referenced by only one spell leaves
// every other spell's analysis unchanged.
func TestAnalyze_Deterministic(t *testing.T) {
	src := `
spell Stable: 2d6
spell Tunable: 1d6 + mod
`
	rapid.Check(t, func(rt *rapid.T) {
		m1 := rapid.IntRange(-5, 10).Draw(rt, "m1")
		m2 := rapid.IntRange(-5, 10).Draw(rt, "m2")

		a := analyzer.Analyze(src, map[string]int{"mod": m1})
		b := analyzer.Analyze(src, map[string]int{"mod": m1})
		assert.Equal(rt, fmt.Sprintf("%+v", a.Spells), fmt.Sprintf("%+v", b.Spells),
			"identical inputs must analyze identically")

		c := analyzer.Analyze(src, map[string]int{"mod": m2})
		stableA, ok := a.Find("Stable")
		require.True(rt, ok)
		stableC, ok := c.Find("Stable")
		require.True(rt, ok)
		assert.True(rt, stableA.Dist.Equal(stableC.Dist),
			"untouched spell must be unaffected by the parameter change")
		assert.Equal(rt, stableA.Mean, stableC.Mean)
	})
}

// TestAnalyze_CallerMayMutateAssignment verifies the defensive copy at the
// entry point.
func TestAnalyze_CallerMayMutateAssignment(t *testing.T) {
	assign := map[string]int{"mod": 1}
	res := analyzer.Analyze(`spell A: 1d1 + mod`, assign)
	assign["mod"] = 99

	require.Len(t, res.Spells, 1)
	assert.Equal(t, 2, res.Spells[0].Dist.Min(), "result must not alias the caller's map")
}

// TestAnalyze_EmptySource verifies blank input yields an empty result.
func TestAnalyze_EmptySource(t *testing.T) {
	res := analyzer.Analyze("", nil)
	assert.Empty(t, res.Spells)
	assert.Empty(t, res.Groups)
	assert.Empty(t, res.Errors)
}
