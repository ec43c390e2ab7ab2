// internal/service/metrics/calculator_test.go

package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name        string
		upvotes     int
		comments    int
		subscribers int
		want        int
	}{
		{
			name: "zero subscribers yields zero",
			upvotes: 500, comments: 100, subscribers: 0,
			want: 0,
		},
		{
			name: "negative subscribers yields zero",
			upvotes: 500, comments: 100, subscribers: -1,
			want: 0,
		},
		// (500/100000*0.7 + 100/100000*0.3) * 10000 = 38
		{
			name: "mid-size community",
			upvotes: 500, comments: 100, subscribers: 100000,
			want: 38,
		},
		// (1000/1000*0.7) * 10000 = 7000, clamped
		{
			name: "clamped at 100",
			upvotes: 1000, comments: 0, subscribers: 1000,
			want: 100,
		},
		{
			name: "no activity",
			upvotes: 0, comments: 0, subscribers: 50000,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EngagementScore(tt.upvotes, tt.comments, tt.subscribers))
		})
	}
}

func TestControversyScoreBelowMinimumUpvotes(t *testing.T) {
	for upvotes := 0; upvotes < 10; upvotes++ {
		for _, ratio := range []float64{0.1, 0.5, 0.9} {
			assert.Equal(t, 0, ControversyScore(ratio, 1000, upvotes),
				"upvotes %d ratio %v", upvotes, ratio)
		}
	}
}

func TestControversyScore(t *testing.T) {
	// Perfect 50/50 split with saturated comment volume.
	assert.Equal(t, 100, ControversyScore(0.5, 10, 100))

	// 0.95 ratio: balance 0.1, volume saturated.
	assert.Equal(t, 10, ControversyScore(0.95, 50, 100))

	// Balance 1 but only half the comment volume: 10 comments against
	// a 20-comment saturation point for 200 upvotes.
	assert.Equal(t, 50, ControversyScore(0.5, 10, 200))

	// Missing ratio.
	assert.Equal(t, 0, ControversyScore(0, 100, 100))
}

func TestViralityScoreZeroCases(t *testing.T) {
	assert.Equal(t, 0, ViralityScore(0, 50, 2, 5, 100000))
	assert.Equal(t, 0, ViralityScore(1000, 50, 2, 0, 100000))
}

func TestViralityScoreKnownScenario(t *testing.T) {
	// 1000 upvotes over 5 hours in a 100k community: velocity 200,
	// comment ratio 5 per 100 upvotes, award bonus 10, size
	// normalizer log10(1e5)/7.
	assert.Equal(t, 60, ViralityScore(1000, 50, 2, 5, 100000))
}

func TestViralityScoreAwardBonusIsCapped(t *testing.T) {
	few := ViralityScore(100, 10, 10, 100, 0)
	many := ViralityScore(100, 10, 1000, 100, 0)
	assert.Equal(t, few, many)
}

func TestViralityScoreWithoutCommunitySize(t *testing.T) {
	// Size normalizer falls back to 1: 10*0.4 + 100*0.3 + 0 = 34.
	assert.Equal(t, 34, ViralityScore(100, 100, 0, 10, 0))
}

func TestScoresStayBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		upvotes := rng.Intn(1_000_000)
		comments := rng.Intn(100_000)
		awards := rng.Intn(500)
		subscribers := rng.Intn(10_000_000)
		ratio := rng.Float64()
		age := rng.Float64() * 100

		engagement := EngagementScore(upvotes, comments, subscribers)
		assert.GreaterOrEqual(t, engagement, 0)
		assert.LessOrEqual(t, engagement, 100)

		controversy := ControversyScore(ratio, comments, upvotes)
		assert.GreaterOrEqual(t, controversy, 0)
		assert.LessOrEqual(t, controversy, 100)

		virality := ViralityScore(upvotes, comments, awards, age, subscribers)
		assert.GreaterOrEqual(t, virality, 0)
		assert.LessOrEqual(t, virality, 100)
	}
}

func TestVelocity(t *testing.T) {
	assert.Equal(t, 200.0, Velocity(1000, 5))
	assert.Equal(t, 0.0, Velocity(1000, 0))
	assert.Equal(t, 33.33, Velocity(100, 3))
}

func TestCommentsPerUpvote(t *testing.T) {
	assert.Equal(t, 0.05, CommentsPerUpvote(50, 1000))
	assert.Equal(t, 0.0, CommentsPerUpvote(50, 0))
	assert.Equal(t, 0.33, CommentsPerUpvote(1, 3))
}
