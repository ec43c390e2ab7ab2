// internal/service/sentiment/scorer.go

package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// Category is the coarse label derived from a compound score.
type Category string

const (
	CategoryPositive Category = "Positive"
	CategoryNeutral  Category = "Neutral"
	CategoryNegative Category = "Negative"
)

// Category thresholds on the compound score, inclusive at both
// boundaries. They apply identically to single texts and blends.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// normalizationAlpha maps the unbounded valence sum into [-1, 1] via
// sum / sqrt(sum^2 + alpha).
const normalizationAlpha = 15.0

// Result is an immutable sentiment score for one text. The three
// proportions sum to 1.0 modulo rounding; Confidence equals |Compound|.
type Result struct {
	Compound   float64
	Positive   float64
	Neutral    float64
	Negative   float64
	Category   Category
	Confidence float64
}

// Weighted pairs a result with its blend weight.
type Weighted struct {
	Result Result
	Weight float64
}

// Distribution counts results per category.
type Distribution struct {
	Positive int
	Neutral  int
	Negative int
}

// Score analyzes one text blob. Empty or token-free input yields a
// neutral zero-confidence result rather than an error.
func Score(text string) Result {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return neutral()
	}

	var sum float64
	var positive, negative, plain int

	for i, token := range tokens {
		valence, ok := lexicon[token]
		if !ok || valence == 0 {
			plain++
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			valence = -valence
		}

		sum += valence
		if valence > 0 {
			positive++
		} else {
			negative++
		}
	}

	compound := sum / math.Sqrt(sum*sum+normalizationAlpha)
	total := float64(positive + negative + plain)

	return Result{
		Compound:   compound,
		Positive:   float64(positive) / total,
		Neutral:    float64(plain) / total,
		Negative:   float64(negative) / total,
		Category:   Categorize(compound),
		Confidence: math.Abs(compound),
	}
}

// ScoreAll scores each text independently.
func ScoreAll(texts []string) []Result {
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = Score(text)
	}
	return results
}

// Categorize maps a compound score to its category. The 0.05 boundaries
// are inclusive.
func Categorize(compound float64) Category {
	switch {
	case compound >= positiveThreshold:
		return CategoryPositive
	case compound <= negativeThreshold:
		return CategoryNegative
	default:
		return CategoryNeutral
	}
}

// Blend combines per-source compound scores into one overall compound as
// a weighted sum. Weights are fixed per call site and documented there;
// they need not sum to exactly 1. The result is clamped to [-1, 1].
func Blend(parts []Weighted) float64 {
	var compound float64
	for _, part := range parts {
		compound += part.Result.Compound * part.Weight
	}
	return math.Max(-1, math.Min(1, compound))
}

// Mean averages a batch of results into one, re-deriving the category
// from the mean compound. An empty batch is neutral.
func Mean(results []Result) Result {
	if len(results) == 0 {
		return neutral()
	}

	var mean Result
	for _, r := range results {
		mean.Compound += r.Compound
		mean.Positive += r.Positive
		mean.Neutral += r.Neutral
		mean.Negative += r.Negative
	}

	n := float64(len(results))
	mean.Compound /= n
	mean.Positive /= n
	mean.Neutral /= n
	mean.Negative /= n
	mean.Category = Categorize(mean.Compound)
	mean.Confidence = math.Abs(mean.Compound)
	return mean
}

// Distribute counts how many results fall into each category, using the
// same thresholds as Categorize.
func Distribute(results []Result) Distribution {
	var dist Distribution
	for _, r := range results {
		switch r.Category {
		case CategoryPositive:
			dist.Positive++
		case CategoryNegative:
			dist.Negative++
		default:
			dist.Neutral++
		}
	}
	return dist
}

func neutral() Result {
	return Result{Neutral: 1, Category: CategoryNeutral}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}
