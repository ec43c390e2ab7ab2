// internal/service/sentiment/scorer_test.go

package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePositiveText(t *testing.T) {
	result := Score("This release is amazing, I love the new error messages")

	assert.Greater(t, result.Compound, 0.05)
	assert.LessOrEqual(t, result.Compound, 1.0)
	assert.Equal(t, CategoryPositive, result.Category)
	assert.Equal(t, result.Confidence, result.Compound)
}

func TestScoreNegativeText(t *testing.T) {
	result := Score("awful release, terrible docs, I hate the breaking changes")

	assert.Less(t, result.Compound, -0.05)
	assert.GreaterOrEqual(t, result.Compound, -1.0)
	assert.Equal(t, CategoryNegative, result.Category)
}

func TestScoreEmptyAndTokenFreeInput(t *testing.T) {
	for _, text := range []string{"", "   ", "!!! --- ???"} {
		result := Score(text)
		assert.Equal(t, 0.0, result.Compound, "text %q", text)
		assert.Equal(t, 1.0, result.Neutral, "text %q", text)
		assert.Equal(t, CategoryNeutral, result.Category, "text %q", text)
		assert.Equal(t, 0.0, result.Confidence, "text %q", text)
	}
}

func TestScoreProportionsSumToOne(t *testing.T) {
	texts := []string{
		"good good bad",
		"the quick brown fox",
		"amazing terrible wonderful awful neutral words here",
		"love",
	}

	for _, text := range texts {
		result := Score(text)
		sum := result.Positive + result.Neutral + result.Negative
		assert.InDelta(t, 1.0, sum, 1e-9, "text %q", text)
	}
}

func TestScoreNegationFlipsValence(t *testing.T) {
	plain := Score("good")
	negated := Score("not good")

	assert.Greater(t, plain.Compound, 0.0)
	assert.Less(t, negated.Compound, 0.0)
}

func TestCategorizeBoundariesAreInclusive(t *testing.T) {
	tests := []struct {
		compound float64
		want     Category
	}{
		{0.05, CategoryPositive},
		{0.0499, CategoryNeutral},
		{0.0, CategoryNeutral},
		{-0.0499, CategoryNeutral},
		{-0.05, CategoryNegative},
		{1.0, CategoryPositive},
		{-1.0, CategoryNegative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.compound), "compound %v", tt.compound)
	}
}

func TestBlendIsWeightedSum(t *testing.T) {
	parts := []Weighted{
		{Result: Result{Compound: 0.5}, Weight: 0.4},
		{Result: Result{Compound: -0.5}, Weight: 0.3},
		{Result: Result{Compound: 1.0}, Weight: 0.3},
	}

	assert.InDelta(t, 0.35, Blend(parts), 1e-9)
}

func TestBlendClampsToUnitRange(t *testing.T) {
	high := []Weighted{{Result: Result{Compound: 1.0}, Weight: 2.0}}
	low := []Weighted{{Result: Result{Compound: -1.0}, Weight: 2.0}}

	assert.Equal(t, 1.0, Blend(high))
	assert.Equal(t, -1.0, Blend(low))
}

func TestBlendEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Blend(nil))
}

func TestMean(t *testing.T) {
	results := []Result{
		{Compound: 0.6, Positive: 1},
		{Compound: -0.2, Negative: 1},
		{Compound: 0.2, Neutral: 1},
	}

	mean := Mean(results)
	assert.InDelta(t, 0.2, mean.Compound, 1e-9)
	assert.Equal(t, CategoryPositive, mean.Category)
	assert.InDelta(t, 0.2, mean.Confidence, 1e-9)
}

func TestMeanEmptyIsNeutral(t *testing.T) {
	mean := Mean(nil)
	assert.Equal(t, 0.0, mean.Compound)
	assert.Equal(t, CategoryNeutral, mean.Category)
	assert.Equal(t, 1.0, mean.Neutral)
}

func TestDistribute(t *testing.T) {
	results := ScoreAll([]string{
		"amazing wonderful",
		"terrible awful",
		"the table is brown",
		"love this",
	})
	require.Len(t, results, 4)

	dist := Distribute(results)
	assert.Equal(t, 2, dist.Positive)
	assert.Equal(t, 1, dist.Negative)
	assert.Equal(t, 1, dist.Neutral)
}
