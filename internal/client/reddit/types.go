// internal/client/reddit/types.go

package reddit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Endpoints builds the upstream URLs for each resource. Base URLs are
// injectable so tests can point the pipeline at a local server.
type Endpoints struct {
	BaseURL      string
	PushshiftURL string
}

// DefaultEndpoints returns the public API hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		BaseURL:      "https://www.reddit.com",
		PushshiftURL: "https://api.pushshift.io",
	}
}

// Post returns the listing URL for a single post.
func (e Endpoints) Post(postID string) string {
	return fmt.Sprintf("%s/comments/%s.json?limit=1", e.BaseURL, postID)
}

// OEmbed returns the oEmbed metadata URL for a post link.
func (e Endpoints) OEmbed(postURL string) string {
	return fmt.Sprintf("%s/oembed?url=%s", e.BaseURL, url.QueryEscape(postURL))
}

// CommentSearch returns the comment search URL for a post.
func (e Endpoints) CommentSearch(postID string, limit int) string {
	return fmt.Sprintf("%s/reddit/comment/search?link_id=%s&limit=%d", e.PushshiftURL, postID, limit)
}

// UserAbout returns the profile URL for a user.
func (e Endpoints) UserAbout(username string) string {
	return fmt.Sprintf("%s/user/%s/about.json", e.BaseURL, username)
}

// UserOverview returns the recent-activity URL for a user.
func (e Endpoints) UserOverview(username string, limit int) string {
	return fmt.Sprintf("%s/user/%s/overview.json?limit=%d", e.BaseURL, username, limit)
}

// SubredditAbout returns the about URL for a subreddit.
func (e Endpoints) SubredditAbout(name string) string {
	return fmt.Sprintf("%s/r/%s/about.json", e.BaseURL, name)
}

// SubredditTop returns the weekly top-posts URL for a subreddit.
func (e Endpoints) SubredditTop(name string, limit int) string {
	return fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=week", e.BaseURL, name, limit)
}

// ExtractPostID pulls the post ID out of a post permalink, returning an
// empty string when the URL does not contain a /comments/<id> segment.
func ExtractPostID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(u.Path, "/")
	for i, segment := range segments {
		if segment == "comments" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}
	return ""
}

// listingEnvelope is the generic reddit listing wrapper. Each source is
// decoded through a typed envelope here so that unknown upstream shapes
// stay contained in this file instead of leaking into the pipeline.
type listingEnvelope struct {
	Data struct {
		Children []struct {
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Post is the extracted shape of a post listing entry.
type Post struct {
	Title               string  `json:"title"`
	Author              string  `json:"author"`
	Subreddit           string  `json:"subreddit"`
	SelfText            string  `json:"selftext"`
	Ups                 int     `json:"ups"`
	UpvoteRatio         float64 `json:"upvote_ratio"`
	TotalAwardsReceived int     `json:"total_awards_received"`
	NumComments         int     `json:"num_comments"`
	CreatedUTC          float64 `json:"created_utc"`
	IsVideo             bool    `json:"is_video"`
	Domain              string  `json:"domain"`
	Thumbnail           string  `json:"thumbnail"`
	URL                 string  `json:"url"`
}

// DecodePost extracts the post from a /comments/<id>.json payload, which
// is an array of listings with the post itself first.
func DecodePost(payload []byte) (*Post, error) {
	var pages []listingEnvelope
	if err := json.Unmarshal(payload, &pages); err != nil {
		return nil, fmt.Errorf("decoding post listing: %w", err)
	}
	if len(pages) == 0 || len(pages[0].Data.Children) == 0 {
		return nil, fmt.Errorf("post listing is empty")
	}

	var post Post
	if err := json.Unmarshal(pages[0].Data.Children[0].Data, &post); err != nil {
		return nil, fmt.Errorf("decoding post: %w", err)
	}
	return &post, nil
}

// OEmbed is the extracted shape of the oEmbed endpoint.
type OEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// DecodeOEmbed extracts oEmbed metadata.
func DecodeOEmbed(payload []byte) (*OEmbed, error) {
	var embed OEmbed
	if err := json.Unmarshal(payload, &embed); err != nil {
		return nil, fmt.Errorf("decoding oembed: %w", err)
	}
	return &embed, nil
}

// DecodeComments extracts comment bodies from a comment search payload.
func DecodeComments(payload []byte) ([]string, error) {
	var envelope struct {
		Data []struct {
			Body string `json:"body"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding comment search: %w", err)
	}

	bodies := make([]string, 0, len(envelope.Data))
	for _, comment := range envelope.Data {
		if comment.Body != "" {
			bodies = append(bodies, comment.Body)
		}
	}
	return bodies, nil
}

// UserAbout is the extracted shape of a user profile.
type UserAbout struct {
	Name         string  `json:"name"`
	CreatedUTC   float64 `json:"created_utc"`
	TotalKarma   int     `json:"total_karma"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	AwardeeKarma int     `json:"awardee_karma"`
	AwarderKarma int     `json:"awarder_karma"`
	IsEmployee   bool    `json:"is_employee"`
	IsGold       bool    `json:"is_gold"`
	IsMod        bool    `json:"is_mod"`
	Verified     bool    `json:"verified"`
	IconImg      string  `json:"icon_img"`
}

// DecodeUserAbout extracts a user profile from its data envelope.
func DecodeUserAbout(payload []byte) (*UserAbout, error) {
	var envelope struct {
		Data UserAbout `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding user about: %w", err)
	}
	if envelope.Data.Name == "" {
		return nil, fmt.Errorf("user about payload has no name")
	}
	return &envelope.Data, nil
}

// OverviewItem is one entry of a user's recent-activity listing.
type OverviewItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

// DecodeUserOverview extracts recent activity entries.
func DecodeUserOverview(payload []byte) ([]OverviewItem, error) {
	var envelope listingEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding user overview: %w", err)
	}

	items := make([]OverviewItem, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		var item OverviewItem
		if err := json.Unmarshal(child.Data, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// SubredditAbout is the extracted shape of a subreddit profile.
type SubredditAbout struct {
	DisplayName        string  `json:"display_name"`
	Subscribers        int     `json:"subscribers"`
	ActiveUserCount    int     `json:"active_user_count"`
	PublicDescription  string  `json:"public_description"`
	AdvertiserCategory string  `json:"advertiser_category"`
	CreatedUTC         float64 `json:"created_utc"`
	Over18             bool    `json:"over18"`
	Quarantine         bool    `json:"quarantine"`
	RestrictPosting    bool    `json:"restrict_posting"`
	RestrictCommenting bool    `json:"restrict_commenting"`
}

// DecodeSubredditAbout extracts a subreddit profile from its envelope.
func DecodeSubredditAbout(payload []byte) (*SubredditAbout, error) {
	var envelope struct {
		Data SubredditAbout `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding subreddit about: %w", err)
	}
	if envelope.Data.DisplayName == "" {
		return nil, fmt.Errorf("subreddit about payload has no display name")
	}
	return &envelope.Data, nil
}

// TopPost is one entry of a subreddit's top listing.
type TopPost struct {
	Title       string `json:"title"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
}

// DecodeTopPosts extracts a subreddit's top posts.
func DecodeTopPosts(payload []byte) ([]TopPost, error) {
	var envelope listingEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding top posts: %w", err)
	}

	posts := make([]TopPost, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		var post TopPost
		if err := json.Unmarshal(child.Data, &post); err != nil {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}
