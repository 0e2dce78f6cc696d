package ideas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"
)

const (
	// RedditOrigin is prepended to subreddit permalinks.
	RedditOrigin = "https://www.reddit.com"
	// UserAgent identifies this client to Reddit.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) RedditResearchCLI/1.0"

	deletedAuthor = "[deleted]"
	deletedBody   = "[deleted]"
	removedBody   = "[removed]"

	defaultTitle = "No title"
	defaultBody  = "No text"

	kindComment = "t1"
)

// RedditClient talks to Reddit's public JSON API.
type RedditClient struct {
	client  *http.Client
	limiter *rate.Limiter
	origin  string
	log     *slog.Logger
}

// RedditOption configures a RedditClient.
type RedditOption func(*RedditClient)

// WithRequestRate paces Reddit requests. r <= 0 leaves requests unthrottled.
func WithRequestRate(r float64, burst int) RedditOption {
	return func(c *RedditClient) {
		if r <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithOrigin overrides the origin used to request subreddit listings.
func WithOrigin(origin string) RedditOption {
	return func(c *RedditClient) { c.origin = strings.TrimSuffix(origin, "/") }
}

// NewRedditClient builds a client. A nil httpClient uses http.DefaultClient;
// a nil log uses slog.Default().
func NewRedditClient(httpClient *http.Client, log *slog.Logger, opts ...RedditOption) *RedditClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	c := &RedditClient{
		client:  httpClient,
		limiter: rate.NewLimiter(rate.Inf, 0),
		origin:  RedditOrigin,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure RedditClient implements Fetcher
var _ Fetcher = (*RedditClient)(nil)

// listing mirrors Reddit's Listing wrapper. Pointers distinguish absent
// fields from empty ones.
type listing struct {
	Kind string       `json:"kind"`
	Data *listingData `json:"data"`
}

type listingData struct {
	Children *[]thing `json:"children"`
}

type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	Title     *string `json:"title"`
	Selftext  *string `json:"selftext"`
	Body      *string `json:"body"`
	Author    *string `json:"author"`
	Permalink *string `json:"permalink"`
}

func (l *listing) children() []thing {
	if l == nil || l.Data == nil || l.Data.Children == nil {
		return nil
	}
	return *l.Data.Children
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// FetchPost retrieves the post at cleanURL with up to maxComments top-level comments.
func (c *RedditClient) FetchPost(ctx context.Context, cleanURL string, maxComments int) (*RedditPost, error) {
	body, err := c.get(ctx, cleanURL+".json")
	if err != nil {
		c.log.Warn("Reddit request failed", "url", cleanURL, "error", err)
		return nil, fmt.Errorf("%w: failed to contact Reddit, check the URL: %s", ErrExternalService, cleanURL)
	}

	if !json.Valid(body) {
		mime := c.logNonJSON(cleanURL, body)
		return nil, fmt.Errorf("%w: Reddit returned %s, not valid JSON; the post may be private, removed, NSFW or blocked", ErrExternalService, mime)
	}

	var page []listing
	if err := json.Unmarshal(body, &page); err != nil {
		c.log.Debug("Unexpected post JSON", "url", cleanURL, "error", err)
		return nil, fmt.Errorf("%w: unexpected post JSON structure for %s", ErrExternalService, cleanURL)
	}

	post := &RedditPost{
		URL:      cleanURL,
		Title:    defaultTitle,
		Body:     defaultBody,
		Comments: []string{},
	}
	if len(page) > 0 {
		if children := page[0].children(); len(children) > 0 {
			post.Title = stringOr(children[0].Data.Title, defaultTitle)
			post.Body = stringOr(children[0].Data.Selftext, defaultBody)
		}
	}
	if len(page) > 1 {
		post.Comments = extractComments(page[1].children(), maxComments)
	}

	c.log.Debug("Fetched post", "url", cleanURL, "title", post.Title, "comments", len(post.Comments))
	return post, nil
}

// extractComments keeps live top-level comments in listing order, at most limit.
func extractComments(children []thing, limit int) []string {
	comments := make([]string, 0, max(0, min(limit, len(children))))
	for _, child := range children {
		if len(comments) >= limit {
			break
		}
		if child.Kind != kindComment || child.Data.Body == nil {
			continue
		}
		body := *child.Data.Body
		if stringOr(child.Data.Author, "") == deletedAuthor || body == deletedBody || body == removedBody {
			continue
		}
		comments = append(comments, body)
	}
	return comments
}

// FetchSubreddit returns absolute post URLs from the subreddit's hot listing.
func (c *RedditClient) FetchSubreddit(ctx context.Context, name string, limit int) ([]string, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.origin, url.PathEscape(name), limit)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		c.log.Warn("Subreddit request failed", "subreddit", name, "error", err)
		return nil, fmt.Errorf("%w: failed to fetch r/%s", ErrExternalService, name)
	}

	if !json.Valid(body) {
		mime := c.logNonJSON(endpoint, body)
		return nil, fmt.Errorf("%w: r/%s returned %s, not valid JSON", ErrExternalService, name, mime)
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil || l.Data == nil || l.Data.Children == nil {
		return nil, fmt.Errorf("%w: unexpected subreddit JSON structure for r/%s", ErrExternalService, name)
	}

	var urls []string
	for _, child := range l.children() {
		if child.Data.Permalink == nil {
			continue
		}
		urls = append(urls, RedditOrigin+strings.TrimSuffix(*child.Data.Permalink, "/"))
	}

	c.log.Debug("Fetched subreddit listing", "subreddit", name, "posts", len(urls))
	return urls, nil
}

// get issues a GET and returns the raw body regardless of status; Reddit
// error pages are diagnosed by the JSON stage.
func (c *RedditClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return body, nil
}

// logNonJSON records the raw body and returns its detected media type
// without parameters, e.g. "text/html".
func (c *RedditClient) logNonJSON(endpoint string, body []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(body).String(), ";")
	c.log.Debug("Reddit did not return JSON",
		"url", endpoint,
		"mime_type", mime,
		"body", string(body))
	return mime
}
