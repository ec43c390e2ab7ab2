// internal/service/metrics/calculator.go

// Package metrics holds the pure functions that turn raw post counters
// into bounded derived scores. Every score is clamped to [0, 100] and
// rounded to the nearest integer.
package metrics

import "math"

// FormulaVersion is stamped into persisted records so historical rows
// stay comparable if a formula constant changes.
const FormulaVersion = 1

// Constant choices, fixed for FormulaVersion 1:
//   - engagement uses the 0.7/0.3 weighting with the x10000 scale, the
//     shape the original pipeline generation shipped with
//   - virality expresses the comment ratio as comments per 100 upvotes
const (
	engagementUpvoteWeight  = 0.7
	engagementCommentWeight = 0.3
	engagementScale         = 10000

	controversyMinUpvotes = 10

	viralityVelocityWeight = 0.4
	viralityCommentWeight  = 0.3
	viralityAwardWeight    = 0.3
	viralityAwardPerUnit   = 5
	viralityAwardCap       = 50
	viralitySizeLogDivisor = 7
)

// EngagementScore relates upvotes and comments to community size.
// Returns 0 when the subscriber count is absent.
func EngagementScore(upvotes, comments, subscribers int) int {
	if subscribers <= 0 {
		return 0
	}

	upvoteRatio := float64(upvotes) / float64(subscribers)
	commentRatio := float64(comments) / float64(subscribers)
	raw := (upvoteRatio*engagementUpvoteWeight + commentRatio*engagementCommentWeight) * engagementScale

	return clamp(math.Round(raw))
}

// ControversyScore is high for posts near a 50/50 vote split with heavy
// comment volume relative to upvotes. Returns 0 below the minimum upvote
// count or when the ratio is absent.
func ControversyScore(upvoteRatio float64, comments, upvotes int) int {
	if upvotes < controversyMinUpvotes || upvoteRatio <= 0 {
		return 0
	}

	balance := 1 - 2*math.Abs(0.5-upvoteRatio)
	volume := math.Min(1, float64(comments)/math.Max(1, float64(upvotes)*0.1))

	return clamp(math.Round(balance * volume * 100))
}

// ViralityScore combines upvote velocity, comment ratio and award bonus,
// normalized by the log-scaled community size. Returns 0 for zero
// upvotes or zero age.
func ViralityScore(upvotes, comments, awards int, ageHours float64, subredditSize int) int {
	if upvotes == 0 || ageHours == 0 {
		return 0
	}

	velocity := float64(upvotes) / ageHours
	commentRatio := float64(comments) / float64(upvotes) * 100
	awardBonus := math.Min(viralityAwardCap, float64(awards)*viralityAwardPerUnit)

	sizeNormalizer := 1.0
	if subredditSize > 0 {
		sizeNormalizer = math.Log10(float64(subredditSize)) / viralitySizeLogDivisor
	}

	raw := (velocity*viralityVelocityWeight +
		commentRatio*viralityCommentWeight +
		awardBonus*viralityAwardWeight) * sizeNormalizer

	return clamp(math.Round(raw))
}

// Velocity is the upvote accumulation rate in upvotes per hour.
func Velocity(upvotes int, ageHours float64) float64 {
	if ageHours <= 0 {
		return 0
	}
	return round2(float64(upvotes) / ageHours)
}

// CommentsPerUpvote is the comment-to-upvote ratio, two decimals.
func CommentsPerUpvote(comments, upvotes int) float64 {
	if upvotes <= 0 {
		return 0
	}
	return round2(float64(comments) / float64(upvotes))
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
