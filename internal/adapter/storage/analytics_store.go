// internal/adapter/storage/analytics_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"threadscope/internal/domain/analytics"
)

// AnalyticsStore persists computed analytics records keyed on entity
// identity. Every write is an idempotent insert-or-replace; concurrent
// upserts to the same key never lose updates because the whole row is
// written atomically.
type AnalyticsStore struct {
	db *pgxpool.Pool
}

// NewAnalyticsStore creates a new analytics store.
func NewAnalyticsStore(db *pgxpool.Pool) *AnalyticsStore {
	return &AnalyticsStore{
		db: db,
	}
}

// UpsertPost inserts or replaces a post record keyed on post_id.
func (s *AnalyticsStore) UpsertPost(ctx context.Context, record *analytics.PostAnalytics) error {
	query := `
		INSERT INTO reddit_posts (
			post_id, title, author, subreddit,
			upvotes, comments, awards, upvote_ratio,
			sentiment, engagement, metadata, insight,
			formula_version, computed_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14
		)
		ON CONFLICT (post_id) DO UPDATE
		SET
			title = $2,
			author = $3,
			subreddit = $4,
			upvotes = $5,
			comments = $6,
			awards = $7,
			upvote_ratio = $8,
			sentiment = $9,
			engagement = $10,
			metadata = $11,
			insight = $12,
			formula_version = $13,
			computed_at = $14
	`

	sentimentJSON, err := json.Marshal(record.Sentiment)
	if err != nil {
		return fmt.Errorf("error marshaling sentiment: %w", err)
	}

	engagementJSON, err := json.Marshal(record.Engagement)
	if err != nil {
		return fmt.Errorf("error marshaling engagement: %w", err)
	}

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("error marshaling metadata: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		record.PostID,
		record.Title,
		record.Author,
		record.Subreddit,
		record.Counters.Upvotes,
		record.Counters.Comments,
		record.Counters.Awards,
		record.Counters.UpvoteRatio,
		sentimentJSON,
		engagementJSON,
		metadataJSON,
		record.Insight,
		record.FormulaVersion,
		record.ComputedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// UpsertUser inserts or replaces a user record keyed on username.
func (s *AnalyticsStore) UpsertUser(ctx context.Context, record *analytics.UserAnalytics) error {
	query := `
		INSERT INTO reddit_users (
			username, account_age_days,
			karma, profile, activity, sentiment,
			formula_version, computed_at
		) VALUES (
			$1, $2,
			$3, $4, $5, $6,
			$7, $8
		)
		ON CONFLICT (username) DO UPDATE
		SET
			account_age_days = $2,
			karma = $3,
			profile = $4,
			activity = $5,
			sentiment = $6,
			formula_version = $7,
			computed_at = $8
	`

	karmaJSON, err := json.Marshal(record.Karma)
	if err != nil {
		return fmt.Errorf("error marshaling karma: %w", err)
	}

	profileJSON, err := json.Marshal(record.Profile)
	if err != nil {
		return fmt.Errorf("error marshaling profile: %w", err)
	}

	activityJSON, err := json.Marshal(record.Activity)
	if err != nil {
		return fmt.Errorf("error marshaling activity: %w", err)
	}

	sentimentJSON, err := json.Marshal(record.Sentiment)
	if err != nil {
		return fmt.Errorf("error marshaling sentiment: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		record.Username,
		record.AccountAgeDays,
		karmaJSON,
		profileJSON,
		activityJSON,
		sentimentJSON,
		record.FormulaVersion,
		record.ComputedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// UpsertSubreddit inserts or replaces a community record keyed on name.
func (s *AnalyticsStore) UpsertSubreddit(ctx context.Context, record *analytics.SubredditAnalytics) error {
	query := `
		INSERT INTO subreddits (
			name, subscribers, active_users, description, category,
			restrictions, weekly_activity, sentiment, activity_ratio,
			created_at, formula_version, computed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12
		)
		ON CONFLICT (name) DO UPDATE
		SET
			subscribers = $2,
			active_users = $3,
			description = $4,
			category = $5,
			restrictions = $6,
			weekly_activity = $7,
			sentiment = $8,
			activity_ratio = $9,
			created_at = $10,
			formula_version = $11,
			computed_at = $12
	`

	restrictionsJSON, err := json.Marshal(record.Restrictions)
	if err != nil {
		return fmt.Errorf("error marshaling restrictions: %w", err)
	}

	weeklyJSON, err := json.Marshal(record.Weekly)
	if err != nil {
		return fmt.Errorf("error marshaling weekly activity: %w", err)
	}

	sentimentJSON, err := json.Marshal(record.Sentiment)
	if err != nil {
		return fmt.Errorf("error marshaling sentiment: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		record.Name,
		record.Subscribers,
		record.ActiveUsers,
		record.Description,
		record.Category,
		restrictionsJSON,
		weeklyJSON,
		sentimentJSON,
		record.ActivityRatio,
		record.CreatedAt,
		record.FormulaVersion,
		record.ComputedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetPost retrieves a persisted post record by ID.
func (s *AnalyticsStore) GetPost(ctx context.Context, postID string) (*analytics.PostAnalytics, error) {
	query := `
		SELECT
			post_id, title, author, subreddit,
			upvotes, comments, awards, upvote_ratio,
			sentiment, engagement, metadata, insight,
			formula_version, computed_at
		FROM reddit_posts
		WHERE post_id = $1
	`

	var record analytics.PostAnalytics
	var sentimentJSON, engagementJSON, metadataJSON []byte
	var computedAt time.Time

	err := s.db.QueryRow(ctx, query, postID).Scan(
		&record.PostID,
		&record.Title,
		&record.Author,
		&record.Subreddit,
		&record.Counters.Upvotes,
		&record.Counters.Comments,
		&record.Counters.Awards,
		&record.Counters.UpvoteRatio,
		&sentimentJSON,
		&engagementJSON,
		&metadataJSON,
		&record.Insight,
		&record.FormulaVersion,
		&computedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("error querying post: %w", err)
	}

	if err := json.Unmarshal(sentimentJSON, &record.Sentiment); err != nil {
		return nil, fmt.Errorf("error unmarshaling sentiment: %w", err)
	}

	if err := json.Unmarshal(engagementJSON, &record.Engagement); err != nil {
		return nil, fmt.Errorf("error unmarshaling engagement: %w", err)
	}

	if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
		return nil, fmt.Errorf("error unmarshaling metadata: %w", err)
	}

	record.ComputedAt = computedAt
	return &record, nil
}
