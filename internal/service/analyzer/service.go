// internal/service/analyzer/service.go

// Package analyzer orchestrates the fetch-aggregate-score pipeline: cache
// check, concurrent upstream fetches, per-source extraction, sentiment and
// metrics scoring, best-effort persistence and event publishing.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"threadscope/internal/cache"
	"threadscope/internal/client/reddit"
	"threadscope/internal/domain/analytics"
	"threadscope/internal/service/metrics"
	"threadscope/internal/service/sentiment"
)

// Fetcher issues rate-limited upstream fetches. FetchAll joins on all
// requests and never drops a slot.
type Fetcher interface {
	Fetch(ctx context.Context, req reddit.Request) reddit.Outcome
	FetchAll(ctx context.Context, reqs map[string]reddit.Request) map[string]reddit.Outcome
}

// Store persists computed records by identity. Failures are non-fatal to
// the read path.
type Store interface {
	UpsertPost(ctx context.Context, record *analytics.PostAnalytics) error
	UpsertUser(ctx context.Context, record *analytics.UserAnalytics) error
	UpsertSubreddit(ctx context.Context, record *analytics.SubredditAnalytics) error
}

// InsightGenerator produces text from a prompt. Optional enrichment only.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config contains the pipeline tunables.
type Config struct {
	Endpoints          reddit.Endpoints
	CommentSearchLimit int
	OverviewLimit      int
	TopPostsLimit      int
	EventsTopic        string
}

// Post sentiment blend weights: title 0.4, selftext 0.3, mean of scored
// comments 0.3.
const (
	titleWeight    = 0.4
	bodyWeight     = 0.3
	commentsWeight = 0.3
)

var (
	usernamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	subredditPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,21}$`)
)

// Service runs the analytics pipeline. The store, insight generator and
// event bus may each be nil; the pipeline degrades with warnings instead
// of failing.
type Service struct {
	fetcher Fetcher
	cache   *cache.Cache
	store   Store
	insight InsightGenerator
	events  *nats.Conn
	config  Config
	logger  *slog.Logger
}

// NewService creates a pipeline service.
func NewService(
	fetcher Fetcher,
	resultCache *cache.Cache,
	store Store,
	insightGen InsightGenerator,
	events *nats.Conn,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.CommentSearchLimit <= 0 {
		cfg.CommentSearchLimit = 100
	}
	if cfg.OverviewLimit <= 0 {
		cfg.OverviewLimit = 5
	}
	if cfg.TopPostsLimit <= 0 {
		cfg.TopPostsLimit = 5
	}
	if cfg.EventsTopic == "" {
		cfg.EventsTopic = "analytics"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		fetcher: fetcher,
		cache:   resultCache,
		store:   store,
		insight: insightGen,
		events:  events,
		config:  cfg,
		logger:  logger,
	}
}

// PostResult is the caller-facing envelope for a post pipeline run.
type PostResult struct {
	Data     *analytics.PostAnalytics
	Cached   bool
	Warnings []string
}

// UserResult is the caller-facing envelope for a user pipeline run.
type UserResult struct {
	Data     *analytics.UserAnalytics
	Cached   bool
	Warnings []string
}

// SubredditResult is the caller-facing envelope for a community run.
type SubredditResult struct {
	Data     *analytics.SubredditAnalytics
	Cached   bool
	Warnings []string
}

// AnalyzePost runs the full pipeline for a post URL. The post listing is
// the primary source; oEmbed, comment search and the subreddit profile
// are secondary and only degrade the result when they fail.
func (s *Service) AnalyzePost(ctx context.Context, rawURL string, withInsight bool) (*PostResult, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, analytics.NewError(analytics.CodeInvalidInput, "post URL is required", nil)
	}

	postID := reddit.ExtractPostID(rawURL)
	if postID == "" {
		return nil, analytics.NewError(analytics.CodeInvalidURL, "URL does not reference a post", nil)
	}

	cacheKey := "post:" + postID
	if value, ok := s.cache.Get(cacheKey); ok {
		if record, ok := value.(*analytics.PostAnalytics); ok {
			return &PostResult{Data: record, Cached: true}, nil
		}
	}

	s.logger.Info("computing post analytics", "post_id", postID)

	outcomes := s.fetcher.FetchAll(ctx, map[string]reddit.Request{
		"post": {
			URL:     s.config.Endpoints.Post(postID),
			Backoff: reddit.BackoffLinear,
		},
		"oembed": {
			URL:     s.config.Endpoints.OEmbed(rawURL),
			Backoff: reddit.BackoffExponential,
		},
		"comments": {
			URL:         s.config.Endpoints.CommentSearch(postID, s.config.CommentSearchLimit),
			MaxAttempts: 1,
			Timeout:     8 * time.Second,
		},
	})

	var warnings []string

	primary := outcomes["post"]
	if !primary.OK() {
		if primary.StatusCode == http.StatusNotFound {
			return nil, analytics.NewError(analytics.CodeNotFound, "post not found", primary.Err)
		}
		return nil, analytics.NewError(analytics.CodeUpstream, "failed to fetch post", primary.Err)
	}

	post, err := reddit.DecodePost(primary.Payload)
	if err != nil {
		return nil, analytics.NewError(analytics.CodeNotFound, "post not found", err)
	}

	var embed *reddit.OEmbed
	if out := outcomes["oembed"]; out.OK() {
		if embed, err = reddit.DecodeOEmbed(out.Payload); err != nil {
			warnings = append(warnings, analytics.WarnOEmbedMissing)
		}
	} else {
		warnings = append(warnings, analytics.WarnOEmbedMissing)
	}

	var commentTexts []string
	if out := outcomes["comments"]; out.OK() {
		if commentTexts, err = reddit.DecodeComments(out.Payload); err != nil {
			warnings = append(warnings, analytics.WarnCommentsMissing)
		}
	} else {
		warnings = append(warnings, analytics.WarnCommentsMissing)
	}

	title := post.Title
	author := post.Author
	subredditName := post.Subreddit
	thumbnail := post.Thumbnail
	if embed != nil {
		if title == "" {
			title = embed.Title
		}
		if author == "" {
			author = embed.AuthorName
		}
		if thumbnail == "" {
			thumbnail = embed.ThumbnailURL
		}
	}
	if author == "" {
		author = "Unknown"
	}

	titleResult := sentiment.Score(title)
	bodyResult := sentiment.Score(post.SelfText)
	commentResults := sentiment.ScoreAll(commentTexts)
	commentMean := sentiment.Mean(commentResults)

	parts := []sentiment.Weighted{
		{Result: titleResult, Weight: titleWeight},
		{Result: bodyResult, Weight: bodyWeight},
		{Result: commentMean, Weight: commentsWeight},
	}
	compound := sentiment.Blend(parts)
	distribution := sentiment.Distribute(commentResults)

	subscribers, subWarning := s.fetchSubscriberCount(ctx, subredditName)
	if subWarning != "" {
		warnings = append(warnings, subWarning)
	}

	createdAt := time.Time{}
	ageHours := 0.0
	if post.CreatedUTC > 0 {
		createdAt = time.Unix(int64(post.CreatedUTC), 0).UTC()
		ageHours = time.Since(createdAt).Hours()
	}

	record := &analytics.PostAnalytics{
		PostID:    postID,
		Title:     title,
		Author:    author,
		Subreddit: subredditName,
		Counters: analytics.Counters{
			Upvotes:     post.Ups,
			Comments:    post.NumComments,
			Awards:      post.TotalAwardsReceived,
			UpvoteRatio: post.UpvoteRatio,
		},
		Sentiment: analytics.Sentiment{
			Compound:   compound,
			Category:   string(sentiment.Categorize(compound)),
			Confidence: math.Abs(compound),
			Breakdown:  blendBreakdown(parts),
			Components: map[string]float64{
				"title":    titleResult.Compound,
				"body":     bodyResult.Compound,
				"comments": commentMean.Compound,
			},
			CommentCategories: &analytics.CategoryCounts{
				Positive: distribution.Positive,
				Neutral:  distribution.Neutral,
				Negative: distribution.Negative,
			},
		},
		Engagement: analytics.Engagement{
			Score:             metrics.EngagementScore(post.Ups, post.NumComments, subscribers),
			ControversyScore:  metrics.ControversyScore(post.UpvoteRatio, post.NumComments, post.Ups),
			ViralityScore:     metrics.ViralityScore(post.Ups, post.NumComments, post.TotalAwardsReceived, ageHours, subscribers),
			CommentsPerUpvote: metrics.CommentsPerUpvote(post.NumComments, post.Ups),
			Velocity:          metrics.Velocity(post.Ups, ageHours),
		},
		Metadata: analytics.PostMetadata{
			CreatedAt: createdAt,
			IsVideo:   post.IsVideo,
			Domain:    post.Domain,
			Thumbnail: thumbnail,
			URL:       firstNonEmpty(post.URL, rawURL),
		},
		FormulaVersion: metrics.FormulaVersion,
		ComputedAt:     time.Now().UTC(),
	}

	if withInsight && s.insight != nil {
		text, err := s.insight.Generate(ctx, postPrompt(record))
		if err != nil {
			s.logger.Warn("insight generation failed", "post_id", postID, "error", err)
			warnings = append(warnings, analytics.WarnInsightFailed)
		} else {
			record.Insight = text
		}
	}

	warnings = s.persistPost(ctx, record, warnings)

	s.cache.Set(cacheKey, record)
	s.publish(analytics.KindPost, record.PostID)

	return &PostResult{Data: record, Warnings: warnings}, nil
}

// AnalyzeUser runs the pipeline for a username. The about endpoint is
// primary; the overview listing is secondary.
func (s *Service) AnalyzeUser(ctx context.Context, username string) (*UserResult, error) {
	if !usernamePattern.MatchString(username) {
		return nil, analytics.NewError(analytics.CodeInvalidUsername, "invalid username format", nil)
	}

	cacheKey := "user:" + username
	if value, ok := s.cache.Get(cacheKey); ok {
		if record, ok := value.(*analytics.UserAnalytics); ok {
			return &UserResult{Data: record, Cached: true}, nil
		}
	}

	s.logger.Info("computing user analytics", "username", username)

	outcomes := s.fetcher.FetchAll(ctx, map[string]reddit.Request{
		"about": {
			URL:     s.config.Endpoints.UserAbout(username),
			Backoff: reddit.BackoffLinear,
		},
		"overview": {
			URL:     s.config.Endpoints.UserOverview(username, s.config.OverviewLimit),
			Backoff: reddit.BackoffLinear,
		},
	})

	var warnings []string

	primary := outcomes["about"]
	if !primary.OK() {
		if primary.StatusCode == http.StatusNotFound {
			return nil, analytics.NewError(analytics.CodeNotFound, "user not found", primary.Err)
		}
		return nil, analytics.NewError(analytics.CodeUpstream, "failed to fetch user", primary.Err)
	}

	about, err := reddit.DecodeUserAbout(primary.Payload)
	if err != nil {
		return nil, analytics.NewError(analytics.CodeNotFound, "user not found", err)
	}

	var recent []analytics.RecentPost
	var titleResults []sentiment.Result

	if out := outcomes["overview"]; out.OK() {
		items, err := reddit.DecodeUserOverview(out.Payload)
		if err != nil {
			warnings = append(warnings, analytics.WarnOverviewMissing)
		}
		for _, item := range items {
			recent = append(recent, analytics.RecentPost{
				ID:        item.ID,
				Title:     item.Title,
				Subreddit: item.Subreddit,
				Score:     item.Score,
				CreatedAt: time.Unix(int64(item.CreatedUTC), 0).UTC(),
			})
			if item.Title != "" {
				titleResults = append(titleResults, sentiment.Score(item.Title))
			}
		}
	} else {
		warnings = append(warnings, analytics.WarnOverviewMissing)
	}

	mean := sentiment.Mean(titleResults)
	createdAt := time.Unix(int64(about.CreatedUTC), 0).UTC()

	lastActive := createdAt
	if len(recent) > 0 {
		lastActive = recent[0].CreatedAt
	}

	record := &analytics.UserAnalytics{
		Username:       about.Name,
		AccountAgeDays: int(time.Since(createdAt).Hours() / 24),
		Karma: analytics.Karma{
			Total:   about.TotalKarma,
			Post:    about.LinkKarma,
			Comment: about.CommentKarma,
			Awardee: about.AwardeeKarma,
			Awarder: about.AwarderKarma,
		},
		Profile: analytics.UserProfile{
			CreatedAt:  createdAt,
			IsEmployee: about.IsEmployee,
			IsGold:     about.IsGold,
			IsMod:      about.IsMod,
			Verified:   about.Verified,
			Icon:       about.IconImg,
		},
		Activity: analytics.UserActivity{
			RecentPosts:      recent,
			AvgPostSentiment: mean.Compound,
			LastActiveAt:     lastActive,
		},
		Sentiment: analytics.Sentiment{
			Compound:   mean.Compound,
			Category:   string(mean.Category),
			Confidence: mean.Confidence,
			Breakdown: analytics.Breakdown{
				Positive: mean.Positive,
				Neutral:  mean.Neutral,
				Negative: mean.Negative,
			},
		},
		FormulaVersion: metrics.FormulaVersion,
		ComputedAt:     time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.UpsertUser(ctx, record); err != nil {
			s.logger.Warn("user upsert failed", "username", record.Username, "error", err)
			warnings = append(warnings, analytics.WarnStoreFailed)
		}
	} else {
		warnings = append(warnings, analytics.WarnStoreFailed)
	}

	s.cache.Set(cacheKey, record)
	s.publish(analytics.KindUser, record.Username)

	return &UserResult{Data: record, Warnings: warnings}, nil
}

// AnalyzeSubreddit runs the pipeline for a community name. The about
// endpoint is primary; the weekly top listing is secondary.
func (s *Service) AnalyzeSubreddit(ctx context.Context, name string) (*SubredditResult, error) {
	if !subredditPattern.MatchString(name) {
		return nil, analytics.NewError(analytics.CodeInvalidSubreddit, "invalid subreddit name", nil)
	}

	cacheKey := "subreddit:" + name
	if value, ok := s.cache.Get(cacheKey); ok {
		if record, ok := value.(*analytics.SubredditAnalytics); ok {
			return &SubredditResult{Data: record, Cached: true}, nil
		}
	}

	s.logger.Info("computing subreddit analytics", "subreddit", name)

	outcomes := s.fetcher.FetchAll(ctx, map[string]reddit.Request{
		"about": {
			URL:     s.config.Endpoints.SubredditAbout(name),
			Backoff: reddit.BackoffLinear,
		},
		"top": {
			URL:     s.config.Endpoints.SubredditTop(name, s.config.TopPostsLimit),
			Backoff: reddit.BackoffLinear,
		},
	})

	var warnings []string

	primary := outcomes["about"]
	if !primary.OK() {
		if primary.StatusCode == http.StatusNotFound {
			return nil, analytics.NewError(analytics.CodeNotFound, "subreddit not found", primary.Err)
		}
		return nil, analytics.NewError(analytics.CodeUpstream, "failed to fetch subreddit", primary.Err)
	}

	about, err := reddit.DecodeSubredditAbout(primary.Payload)
	if err != nil {
		return nil, analytics.NewError(analytics.CodeNotFound, "subreddit not found", err)
	}

	var weekly analytics.WeeklyActivity
	var titleResults []sentiment.Result

	if out := outcomes["top"]; out.OK() {
		posts, err := reddit.DecodeTopPosts(out.Payload)
		if err != nil {
			warnings = append(warnings, analytics.WarnTopPostsMissing)
		}
		for _, post := range posts {
			weekly.TotalUpvotes += post.Score
			weekly.TotalComments += post.NumComments
			titleResults = append(titleResults, sentiment.Score(post.Title))
		}
	} else {
		warnings = append(warnings, analytics.WarnTopPostsMissing)
	}

	mean := sentiment.Mean(titleResults)
	weekly.AvgSentiment = mean.Compound

	activityRatio := 0.0
	if about.ActiveUserCount > 0 {
		activityRatio = math.Round(float64(about.Subscribers)/float64(about.ActiveUserCount)*100) / 100
	}

	category := about.AdvertiserCategory
	if category == "" {
		category = "General"
	}

	record := &analytics.SubredditAnalytics{
		Name:        about.DisplayName,
		Subscribers: about.Subscribers,
		ActiveUsers: about.ActiveUserCount,
		Description: about.PublicDescription,
		Category:    category,
		Restrictions: analytics.SubredditRestrictions{
			Over18:             about.Over18,
			Quarantine:         about.Quarantine,
			RestrictPosting:    about.RestrictPosting,
			RestrictCommenting: about.RestrictCommenting,
		},
		ActivityRatio: activityRatio,
		Weekly:        weekly,
		Sentiment: analytics.Sentiment{
			Compound:   mean.Compound,
			Category:   string(mean.Category),
			Confidence: mean.Confidence,
			Breakdown: analytics.Breakdown{
				Positive: mean.Positive,
				Neutral:  mean.Neutral,
				Negative: mean.Negative,
			},
		},
		CreatedAt:      time.Unix(int64(about.CreatedUTC), 0).UTC(),
		FormulaVersion: metrics.FormulaVersion,
		ComputedAt:     time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.UpsertSubreddit(ctx, record); err != nil {
			s.logger.Warn("subreddit upsert failed", "subreddit", record.Name, "error", err)
			warnings = append(warnings, analytics.WarnStoreFailed)
		}
	} else {
		warnings = append(warnings, analytics.WarnStoreFailed)
	}

	s.cache.Set(cacheKey, record)
	s.publish(analytics.KindSubreddit, record.Name)

	return &SubredditResult{Data: record, Warnings: warnings}, nil
}

// fetchSubscriberCount pulls the subscriber count for engagement scoring.
// A missing subreddit or failed fetch degrades to 0 with a warning; it
// never fails the pipeline.
func (s *Service) fetchSubscriberCount(ctx context.Context, name string) (int, string) {
	if name == "" {
		return 0, analytics.WarnSubredditMissing
	}

	out := s.fetcher.Fetch(ctx, reddit.Request{
		URL:     s.config.Endpoints.SubredditAbout(name),
		Backoff: reddit.BackoffLinear,
	})
	if !out.OK() {
		return 0, analytics.WarnSubredditMissing
	}

	about, err := reddit.DecodeSubredditAbout(out.Payload)
	if err != nil {
		return 0, analytics.WarnSubredditMissing
	}

	return about.Subscribers, ""
}

func (s *Service) persistPost(ctx context.Context, record *analytics.PostAnalytics, warnings []string) []string {
	if s.store == nil {
		return append(warnings, analytics.WarnStoreFailed)
	}
	if err := s.store.UpsertPost(ctx, record); err != nil {
		s.logger.Warn("post upsert failed", "post_id", record.PostID, "error", err)
		return append(warnings, analytics.WarnStoreFailed)
	}
	return warnings
}

// publish emits a computed event on the bus, best effort.
func (s *Service) publish(kind analytics.Kind, key string) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"id":          uuid.New().String(),
		"kind":        kind,
		"key":         key,
		"computed_at": time.Now().UTC(),
	})
	if err != nil {
		return
	}

	subject := fmt.Sprintf("%s.%s.computed", s.config.EventsTopic, kind)
	if err := s.events.Publish(subject, payload); err != nil {
		s.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}

// blendBreakdown averages per-source proportions with the same weights
// used for the compound blend, normalized so the result sums to 1.
func blendBreakdown(parts []sentiment.Weighted) analytics.Breakdown {
	var breakdown analytics.Breakdown
	var total float64

	for _, part := range parts {
		breakdown.Positive += part.Result.Positive * part.Weight
		breakdown.Neutral += part.Result.Neutral * part.Weight
		breakdown.Negative += part.Result.Negative * part.Weight
		total += part.Weight
	}

	if total > 0 {
		breakdown.Positive /= total
		breakdown.Neutral /= total
		breakdown.Negative /= total
	}
	return breakdown
}

func postPrompt(record *analytics.PostAnalytics) string {
	return fmt.Sprintf(
		"Summarize in two sentences why this post is performing the way it is. "+
			"Title: %q. Subreddit: r/%s. Upvotes: %d. Comments: %d. "+
			"Sentiment: %s (%.2f). Engagement score: %d/100. Virality score: %d/100.",
		record.Title, record.Subreddit,
		record.Counters.Upvotes, record.Counters.Comments,
		record.Sentiment.Category, record.Sentiment.Compound,
		record.Engagement.Score, record.Engagement.ViralityScore,
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
