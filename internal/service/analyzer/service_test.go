// internal/service/analyzer/service_test.go

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadscope/internal/cache"
	"threadscope/internal/client/reddit"
	"threadscope/internal/domain/analytics"
)

const (
	testPostURL = "https://www.reddit.com/r/golang/comments/abc123/test_post/"
)

// fixture is a local stand-in for the upstream APIs, serving one post,
// one user and one subreddit.
type fixture struct {
	endpoints reddit.Endpoints
	requests  int32
}

// newRedditFixture builds the fake upstream. Paths listed in failures
// respond with the given status instead of their payload; unregistered
// paths respond 404 like the real API.
func newRedditFixture(t *testing.T, failures map[string]int) *fixture {
	t.Helper()

	f := &fixture{}

	postCreated := time.Now().Add(-5 * time.Hour).Unix()
	userCreated := time.Now().AddDate(-2, 0, 0).Unix()
	recentPostAt := time.Now().Add(-24 * time.Hour).Unix()
	olderPostAt := time.Now().Add(-72 * time.Hour).Unix()

	mux := http.NewServeMux()

	mux.HandleFunc("/comments/abc123.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"data":{"children":[{"data":{
			"title":"A wonderful amazing day",
			"author":"alice",
			"subreddit":"golang",
			"selftext":"I love this great community",
			"ups":1000,
			"upvote_ratio":0.95,
			"total_awards_received":2,
			"num_comments":50,
			"created_utc":%d,
			"is_video":false,
			"domain":"self.golang",
			"url":"https://example.com/link"
		}}]}}]`, postCreated)
	})

	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"title":"A wonderful amazing day",
			"author_name":"alice",
			"provider_name":"reddit",
			"thumbnail_url":"https://thumbs.example.com/abc123.png"
		}`)
	})

	mux.HandleFunc("/ps/reddit/comment/search", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[
			{"body":"I love this"},
			{"body":"terrible awful"},
			{"body":"the meeting is on tuesday"}
		]}`)
	})

	mux.HandleFunc("/r/golang/about.json", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{
			"display_name":"golang",
			"subscribers":100000,
			"active_user_count":500,
			"public_description":"Ask questions and post articles about Go",
			"created_utc":1300000000
		}}`)
	})

	mux.HandleFunc("/r/golang/top.json", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"children":[
			{"data":{"title":"great release","score":500,"num_comments":80}},
			{"data":{"title":"weekly discussion thread","score":120,"num_comments":30}}
		]}}`)
	})

	mux.HandleFunc("/user/alice/about.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{
			"name":"alice",
			"created_utc":%d,
			"total_karma":1234,
			"link_karma":1000,
			"comment_karma":234,
			"verified":true
		}}`, userCreated)
	})

	mux.HandleFunc("/user/alice/overview.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"children":[
			{"data":{"id":"p1","title":"amazing work on the compiler","subreddit":"golang","score":120,"created_utc":%d}},
			{"data":{"id":"p2","title":"weekly discussion thread","subreddit":"golang","score":40,"created_utc":%d}}
		]}}`, recentPostAt, olderPostAt)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		if status, ok := failures[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	f.endpoints = reddit.Endpoints{
		BaseURL:      server.URL,
		PushshiftURL: server.URL + "/ps",
	}
	return f
}

func (f *fixture) requestCount() int32 {
	return atomic.LoadInt32(&f.requests)
}

type fakeStore struct {
	mu    sync.Mutex
	posts int
	users int
	subs  int
	fail  bool
}

func (s *fakeStore) UpsertPost(ctx context.Context, record *analytics.PostAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection refused")
	}
	s.posts++
	return nil
}

func (s *fakeStore) UpsertUser(ctx context.Context, record *analytics.UserAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection refused")
	}
	s.users++
	return nil
}

func (s *fakeStore) UpsertSubreddit(ctx context.Context, record *analytics.SubredditAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection refused")
	}
	s.subs++
	return nil
}

type fakeInsight struct {
	text  string
	err   error
	calls int32
}

func (f *fakeInsight) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.text, f.err
}

func newTestService(t *testing.T, endpoints reddit.Endpoints, store Store, insightGen InsightGenerator) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fetcher := reddit.NewClient(reddit.Config{
		MaxAttempts:    2,
		AttemptTimeout: 2 * time.Second,
		BackoffBase:    time.Millisecond,
		WindowRequests: 10000,
		WindowInterval: time.Second,
		SustainedRPS:   10000,
	}, logger)

	resultCache := cache.New(time.Minute, 0)
	t.Cleanup(resultCache.Close)

	return NewService(fetcher, resultCache, store, insightGen, nil, Config{Endpoints: endpoints}, logger)
}

func TestAnalyzePostHappyPath(t *testing.T) {
	f := newRedditFixture(t, nil)
	store := &fakeStore{}
	service := newTestService(t, f.endpoints, store, nil)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	require.NotNil(t, result.Data)
	assert.False(t, result.Cached)
	assert.Empty(t, result.Warnings)

	record := result.Data
	assert.Equal(t, "abc123", record.PostID)
	assert.Equal(t, "A wonderful amazing day", record.Title)
	assert.Equal(t, "alice", record.Author)
	assert.Equal(t, "golang", record.Subreddit)

	assert.Equal(t, 1000, record.Counters.Upvotes)
	assert.Equal(t, 50, record.Counters.Comments)
	assert.Equal(t, 2, record.Counters.Awards)
	assert.Equal(t, 0.95, record.Counters.UpvoteRatio)

	// (1000/100000*0.7 + 50/100000*0.3) * 10000 = 71.5, rounded up.
	assert.Equal(t, 72, record.Engagement.Score)
	// balance 0.1 at a 0.95 ratio, half the saturating comment volume.
	assert.Equal(t, 5, record.Engagement.ControversyScore)
	// 200 upvotes/hour, 5 comments per 100 upvotes, 10 award bonus,
	// log10(100k)/7 size normalizer.
	assert.Equal(t, 60, record.Engagement.ViralityScore)
	assert.Equal(t, 0.05, record.Engagement.CommentsPerUpvote)
	assert.InDelta(t, 200, record.Engagement.Velocity, 1)

	assert.Greater(t, record.Sentiment.Compound, 0.05)
	assert.Equal(t, "Positive", record.Sentiment.Category)
	require.NotNil(t, record.Sentiment.CommentCategories)
	assert.Equal(t, 1, record.Sentiment.CommentCategories.Positive)
	assert.Equal(t, 1, record.Sentiment.CommentCategories.Neutral)
	assert.Equal(t, 1, record.Sentiment.CommentCategories.Negative)

	assert.Equal(t, "https://example.com/link", record.Metadata.URL)
	assert.Equal(t, "https://thumbs.example.com/abc123.png", record.Metadata.Thumbnail)
	assert.Equal(t, "self.golang", record.Metadata.Domain)

	assert.Equal(t, 1, record.FormulaVersion)
	assert.False(t, record.ComputedAt.IsZero())
	assert.Empty(t, record.Insight)

	assert.Equal(t, 1, store.posts)
}

func TestAnalyzePostServesSecondCallFromCache(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, &fakeStore{}, nil)

	first, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	upstream := f.requestCount()

	second, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)

	// The cache hit never touches the upstream.
	assert.Equal(t, upstream, f.requestCount())
}

func TestAnalyzePostRejectsBadInput(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	_, err := service.AnalyzePost(context.Background(), "", false)
	assert.Equal(t, analytics.CodeInvalidInput, analytics.CodeOf(err))

	_, err = service.AnalyzePost(context.Background(), "   ", false)
	assert.Equal(t, analytics.CodeInvalidInput, analytics.CodeOf(err))

	_, err = service.AnalyzePost(context.Background(), "https://www.reddit.com/r/golang/", false)
	assert.Equal(t, analytics.CodeInvalidURL, analytics.CodeOf(err))

	// Validation failures never reach the network.
	assert.Equal(t, int32(0), f.requestCount())
}

func TestAnalyzePostNotFound(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	result, err := service.AnalyzePost(context.Background(),
		"https://www.reddit.com/r/golang/comments/missing/gone/", false)
	assert.Nil(t, result)
	assert.Equal(t, analytics.CodeNotFound, analytics.CodeOf(err))
}

func TestAnalyzePostPrimaryUpstreamError(t *testing.T) {
	f := newRedditFixture(t, map[string]int{
		"/comments/abc123.json": http.StatusInternalServerError,
	})
	service := newTestService(t, f.endpoints, nil, nil)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	assert.Nil(t, result)
	assert.Equal(t, analytics.CodeUpstream, analytics.CodeOf(err))
}

func TestAnalyzePostDegradesWhenSubredditUnavailable(t *testing.T) {
	f := newRedditFixture(t, map[string]int{
		"/r/golang/about.json": http.StatusInternalServerError,
	})
	service := newTestService(t, f.endpoints, &fakeStore{}, nil)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	require.NotNil(t, result.Data)

	// Without a subscriber count both community-relative scores are 0.
	assert.Equal(t, 0, result.Data.Engagement.Score)
	assert.Contains(t, result.Warnings, analytics.WarnSubredditMissing)

	// Everything not depending on community size is still computed.
	assert.Equal(t, 5, result.Data.Engagement.ControversyScore)
	assert.Greater(t, result.Data.Sentiment.Compound, 0.05)
}

func TestAnalyzePostDegradesWhenCommentsUnavailable(t *testing.T) {
	f := newRedditFixture(t, map[string]int{
		"/ps/reddit/comment/search": http.StatusBadGateway,
	})
	service := newTestService(t, f.endpoints, &fakeStore{}, nil)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, analytics.WarnCommentsMissing)

	// Comment sentiment falls back to neutral; title and body still
	// drive the blend positive.
	assert.Greater(t, result.Data.Sentiment.Compound, 0.05)
	require.NotNil(t, result.Data.Sentiment.CommentCategories)
	assert.Equal(t, 0, result.Data.Sentiment.CommentCategories.Positive)
}

func TestAnalyzePostWarnsWhenStoreFails(t *testing.T) {
	f := newRedditFixture(t, nil)
	store := &fakeStore{fail: true}
	service := newTestService(t, f.endpoints, store, nil)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	require.NotNil(t, result.Data)
	assert.Contains(t, result.Warnings, analytics.WarnStoreFailed)
}

func TestAnalyzePostWarnsWithoutStore(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, analytics.WarnStoreFailed)
}

func TestAnalyzePostInsight(t *testing.T) {
	f := newRedditFixture(t, nil)
	gen := &fakeInsight{text: "Strong early velocity in a mid-size community."}
	service := newTestService(t, f.endpoints, &fakeStore{}, gen)

	result, err := service.AnalyzePost(context.Background(), testPostURL, true)
	require.NoError(t, err)
	assert.Equal(t, gen.text, result.Data.Insight)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
}

func TestAnalyzePostInsightNotRequested(t *testing.T) {
	f := newRedditFixture(t, nil)
	gen := &fakeInsight{text: "unused"}
	service := newTestService(t, f.endpoints, &fakeStore{}, gen)

	result, err := service.AnalyzePost(context.Background(), testPostURL, false)
	require.NoError(t, err)
	assert.Empty(t, result.Data.Insight)
	assert.Equal(t, int32(0), atomic.LoadInt32(&gen.calls))
}

func TestAnalyzePostInsightFailureIsWarning(t *testing.T) {
	f := newRedditFixture(t, nil)
	gen := &fakeInsight{err: errors.New("quota exceeded")}
	service := newTestService(t, f.endpoints, &fakeStore{}, gen)

	result, err := service.AnalyzePost(context.Background(), testPostURL, true)
	require.NoError(t, err)
	assert.Empty(t, result.Data.Insight)
	assert.Contains(t, result.Warnings, analytics.WarnInsightFailed)
}

func TestAnalyzeUserHappyPath(t *testing.T) {
	f := newRedditFixture(t, nil)
	store := &fakeStore{}
	service := newTestService(t, f.endpoints, store, nil)

	result, err := service.AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, result.Data)
	assert.Empty(t, result.Warnings)

	record := result.Data
	assert.Equal(t, "alice", record.Username)
	assert.InDelta(t, 730, float64(record.AccountAgeDays), 2)

	assert.Equal(t, 1234, record.Karma.Total)
	assert.Equal(t, 1000, record.Karma.Post)
	assert.Equal(t, 234, record.Karma.Comment)
	assert.True(t, record.Profile.Verified)

	require.Len(t, record.Activity.RecentPosts, 2)
	assert.Equal(t, "p1", record.Activity.RecentPosts[0].ID)
	assert.Equal(t, record.Activity.RecentPosts[0].CreatedAt, record.Activity.LastActiveAt)
	assert.Greater(t, record.Activity.AvgPostSentiment, 0.05)

	assert.Equal(t, 1, store.users)
}

func TestAnalyzeUserRejectsInvalidUsernames(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	for _, username := range []string{"", "ab", "has space", "way_too_long_username", "semi;colon"} {
		_, err := service.AnalyzeUser(context.Background(), username)
		assert.Equal(t, analytics.CodeInvalidUsername, analytics.CodeOf(err), "username %q", username)
	}

	assert.Equal(t, int32(0), f.requestCount())
}

func TestAnalyzeUserNotFound(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	result, err := service.AnalyzeUser(context.Background(), "nobody")
	assert.Nil(t, result)
	assert.Equal(t, analytics.CodeNotFound, analytics.CodeOf(err))
}

func TestAnalyzeUserDegradesWithoutOverview(t *testing.T) {
	f := newRedditFixture(t, map[string]int{
		"/user/alice/overview.json": http.StatusInternalServerError,
	})
	service := newTestService(t, f.endpoints, &fakeStore{}, nil)

	result, err := service.AnalyzeUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, analytics.WarnOverviewMissing)
	assert.Empty(t, result.Data.Activity.RecentPosts)
	assert.Equal(t, 0.0, result.Data.Activity.AvgPostSentiment)

	// Without recent activity the profile creation time stands in.
	assert.Equal(t, result.Data.Profile.CreatedAt, result.Data.Activity.LastActiveAt)
}

func TestAnalyzeSubredditHappyPath(t *testing.T) {
	f := newRedditFixture(t, nil)
	store := &fakeStore{}
	service := newTestService(t, f.endpoints, store, nil)

	result, err := service.AnalyzeSubreddit(context.Background(), "golang")
	require.NoError(t, err)
	require.NotNil(t, result.Data)
	assert.Empty(t, result.Warnings)

	record := result.Data
	assert.Equal(t, "golang", record.Name)
	assert.Equal(t, 100000, record.Subscribers)
	assert.Equal(t, 500, record.ActiveUsers)
	assert.Equal(t, 200.0, record.ActivityRatio)
	assert.Equal(t, "General", record.Category)

	assert.Equal(t, 620, record.Weekly.TotalUpvotes)
	assert.Equal(t, 110, record.Weekly.TotalComments)
	assert.Greater(t, record.Weekly.AvgSentiment, 0.05)

	assert.False(t, record.Restrictions.Over18)
	assert.Equal(t, 1, store.subs)
}

func TestAnalyzeSubredditRejectsInvalidNames(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	for _, name := range []string{"", "has space", "way_too_long_subreddit", "semi;colon"} {
		_, err := service.AnalyzeSubreddit(context.Background(), name)
		assert.Equal(t, analytics.CodeInvalidSubreddit, analytics.CodeOf(err), "name %q", name)
	}

	assert.Equal(t, int32(0), f.requestCount())
}

func TestAnalyzeSubredditNotFound(t *testing.T) {
	f := newRedditFixture(t, nil)
	service := newTestService(t, f.endpoints, nil, nil)

	result, err := service.AnalyzeSubreddit(context.Background(), "missing")
	assert.Nil(t, result)
	assert.Equal(t, analytics.CodeNotFound, analytics.CodeOf(err))
}

func TestAnalyzeSubredditDegradesWithoutTopPosts(t *testing.T) {
	f := newRedditFixture(t, map[string]int{
		"/r/golang/top.json": http.StatusInternalServerError,
	})
	service := newTestService(t, f.endpoints, &fakeStore{}, nil)

	result, err := service.AnalyzeSubreddit(context.Background(), "golang")
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, analytics.WarnTopPostsMissing)
	assert.Equal(t, 0, result.Data.Weekly.TotalUpvotes)
	assert.Equal(t, 0, result.Data.Weekly.TotalComments)
	assert.Equal(t, 0.0, result.Data.Weekly.AvgSentiment)
}
