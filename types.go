package ideas

import (
	"context"
)

// Model represents a model identifier
type Model string

// DefaultModels is the fallback chain, fastest and cheapest first.
var DefaultModels = []Model{
	"gemini-2.5-flash",
	"gemini-flash-latest",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
}

// RedditPost is a fetched post with its top-level comments.
//
// Defaults on absence:
//
//	Title    "No title"
//	Body     "No text"
//	Comments empty
type RedditPost struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Comments []string `json:"comments"`
}

// Idea is one product concept suggested by the model.
type Idea struct {
	ProductName  string   `json:"product_name"`
	TargetUser   string   `json:"target_user"`
	CoreProblem  string   `json:"core_problem"`
	MVPFeatures  []string `json:"mvp_features"`
	Monetization string   `json:"monetization"`
	Feasibility  string   `json:"feasibility"`
}

// AnalysisResult is the outcome for one processed post.
// When Ideas is empty, IdeasText holds the unmodified model output.
type AnalysisResult struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	IdeasText string `json:"ideas_text"`
	Ideas     []Idea `json:"ideas"`
}

// Fetcher retrieves posts and subreddit listings.
type Fetcher interface {
	FetchPost(ctx context.Context, url string, maxComments int) (*RedditPost, error)
	FetchSubreddit(ctx context.Context, name string, limit int) ([]string, error)
}

// PromptProvider renders the instruction prompt for a post.
type PromptProvider interface {
	BuildPrompt(post *RedditPost) (string, error)
}

// Invoker sends a prompt to a language model and returns its text.
type Invoker interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Exporter appends parsed ideas to an external sink.
type Exporter interface {
	Export(ctx context.Context, subreddit, postURL, postTitle string, ideas []Idea) error
}

// Options represents per-run settings
type Options struct {
	MaxComments int // top-level comments per post
	Limit       int // posts per subreddit
	MaxIdeas    int // 0 → no cap (Multi only)
}

const (
	DefaultMaxComments = 10
	DefaultLimit       = 5
)

func defaultOptions() Options {
	return Options{MaxComments: DefaultMaxComments, Limit: DefaultLimit}
}

// WithMaxComments caps the number of top-level comments included per post.
func WithMaxComments(n int) func(*Options) {
	return func(o *Options) { o.MaxComments = n }
}

// WithLimit sets how many hot posts are fetched per subreddit.
func WithLimit(n int) func(*Options) {
	return func(o *Options) { o.Limit = n }
}

// WithMaxIdeas stops a Multi run once this many ideas were generated.
func WithMaxIdeas(n int) func(*Options) {
	return func(o *Options) { o.MaxIdeas = n }
}
