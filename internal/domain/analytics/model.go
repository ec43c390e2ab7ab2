// internal/domain/analytics/model.go

package analytics

import "time"

// Kind identifies which entity an analytics record describes.
type Kind string

const (
	KindPost      Kind = "post"
	KindUser      Kind = "user"
	KindSubreddit Kind = "subreddit"
)

// Breakdown holds the positive/neutral/negative proportions of a scored
// text. The three values sum to 1.0 modulo rounding.
type Breakdown struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// CategoryCounts counts individual comments per sentiment category.
type CategoryCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Sentiment is the caller-facing sentiment bundle. Components carries the
// per-source compound scores that were blended into Compound (e.g. "title",
// "body", "comments").
type Sentiment struct {
	Compound   float64            `json:"compound"`
	Category   string             `json:"category"`
	Confidence float64            `json:"confidence"`
	Breakdown  Breakdown          `json:"breakdown"`
	Components map[string]float64 `json:"components,omitempty"`

	// CommentCategories is only populated when a comment collection was
	// scored alongside the primary texts.
	CommentCategories *CategoryCounts `json:"comment_categories,omitempty"`
}

// Engagement is the caller-facing derived-metrics bundle. Score,
// ControversyScore and ViralityScore are bounded to [0, 100].
type Engagement struct {
	Score             int     `json:"score"`
	ControversyScore  int     `json:"controversy_score"`
	ViralityScore     int     `json:"virality_score"`
	CommentsPerUpvote float64 `json:"comments_per_upvote"`
	Velocity          float64 `json:"velocity"`
}

// Counters holds the raw engagement counters pulled from the upstream post.
type Counters struct {
	Upvotes     int     `json:"upvotes"`
	Comments    int     `json:"comments"`
	Awards      int     `json:"awards"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// PostMetadata holds descriptive post fields that do not feed any score.
type PostMetadata struct {
	CreatedAt time.Time `json:"created"`
	IsVideo   bool      `json:"is_video"`
	Domain    string    `json:"domain"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	URL       string    `json:"url"`
}

// PostAnalytics is the assembled record for a single post. It is
// constructed fresh on every non-cached pipeline run and never mutated
// afterwards; a later run replaces the persisted row via upsert.
type PostAnalytics struct {
	PostID         string       `json:"post_id"`
	Title          string       `json:"title"`
	Author         string       `json:"author"`
	Subreddit      string       `json:"subreddit"`
	Counters       Counters     `json:"counters"`
	Sentiment      Sentiment    `json:"sentiment"`
	Engagement     Engagement   `json:"engagement"`
	Metadata       PostMetadata `json:"metadata"`
	Insight        string       `json:"insight,omitempty"`
	FormulaVersion int          `json:"formula_version"`
	ComputedAt     time.Time    `json:"analytics_timestamp"`
}

// Karma is the per-source karma breakdown of a user.
type Karma struct {
	Total   int `json:"total"`
	Post    int `json:"post"`
	Comment int `json:"comment"`
	Awardee int `json:"awardee"`
	Awarder int `json:"awarder"`
}

// UserProfile holds descriptive account fields.
type UserProfile struct {
	CreatedAt  time.Time `json:"created"`
	IsEmployee bool      `json:"is_employee"`
	IsGold     bool      `json:"is_gold"`
	IsMod      bool      `json:"is_mod"`
	Verified   bool      `json:"verified"`
	Icon       string    `json:"icon,omitempty"`
}

// RecentPost is one entry of a user's recent submission history.
type RecentPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subreddit string    `json:"subreddit"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created"`
}

// UserActivity summarizes a user's recent submissions.
type UserActivity struct {
	RecentPosts      []RecentPost `json:"recent_posts"`
	AvgPostSentiment float64      `json:"avg_post_sentiment"`
	LastActiveAt     time.Time    `json:"last_active"`
}

// UserAnalytics is the assembled record for a user.
type UserAnalytics struct {
	Username       string       `json:"username"`
	AccountAgeDays int          `json:"account_age_days"`
	Karma          Karma        `json:"karma"`
	Profile        UserProfile  `json:"profile"`
	Activity       UserActivity `json:"activity"`
	Sentiment      Sentiment    `json:"sentiment"`
	FormulaVersion int          `json:"formula_version"`
	ComputedAt     time.Time    `json:"analytics_timestamp"`
}

// WeeklyActivity aggregates a subreddit's top posts of the past week.
type WeeklyActivity struct {
	TotalUpvotes  int     `json:"total_upvotes"`
	TotalComments int     `json:"total_comments"`
	AvgSentiment  float64 `json:"avg_sentiment"`
}

// SubredditRestrictions mirrors the upstream posting restrictions.
type SubredditRestrictions struct {
	Over18             bool `json:"over18"`
	Quarantine         bool `json:"quarantine"`
	RestrictPosting    bool `json:"restrict_posting"`
	RestrictCommenting bool `json:"restrict_commenting"`
}

// SubredditAnalytics is the assembled record for a community.
type SubredditAnalytics struct {
	Name            string                `json:"name"`
	Subscribers     int                   `json:"subscribers"`
	ActiveUsers     int                   `json:"active_users"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	Restrictions    SubredditRestrictions `json:"restrictions"`
	ActivityRatio   float64               `json:"subscribers_to_active_ratio"`
	Weekly          WeeklyActivity        `json:"weekly_activity"`
	Sentiment       Sentiment             `json:"sentiment"`
	CreatedAt       time.Time             `json:"created"`
	FormulaVersion  int                   `json:"formula_version"`
	ComputedAt      time.Time             `json:"analytics_timestamp"`
}
