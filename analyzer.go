package ideas

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Analyzer runs the post pipeline in Single, Batch, Subreddit and Multi modes.
// Every mode is sequential; results keep processing order.
type Analyzer struct {
	fetcher  Fetcher
	prompts  PromptProvider
	invoker  Invoker
	exporter Exporter // nil → export disabled
	metrics  *Metrics
	log      *slog.Logger
}

// New returns an Analyzer that logs with slog.Default().
func New(fetcher Fetcher, invoker Invoker, p PromptProvider) *Analyzer {
	return NewWithLogger(fetcher, invoker, p, slog.Default())
}

// NewWithLogger lets the caller supply their own logger.
func NewWithLogger(fetcher Fetcher, invoker Invoker, p PromptProvider, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{fetcher: fetcher, invoker: invoker, prompts: p, log: log}
}

// SetExporter enables export of parsed ideas. Export failures are logged, never returned.
func (a *Analyzer) SetExporter(e Exporter) { a.exporter = e }

// SetMetrics records post and export counts into m.
func (a *Analyzer) SetMetrics(m *Metrics) { a.metrics = m }

func buildOptions(optFns []func(*Options)) Options {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// AnalyzeURL runs the pipeline for one post URL. Any failure is returned.
func (a *Analyzer) AnalyzeURL(ctx context.Context, rawURL string, optFns ...func(*Options)) (*AnalysisResult, error) {
	opts := buildOptions(optFns)
	log := a.log.With("run_id", uuid.NewString(), "mode", "single")

	res, err := a.processPost(ctx, log, ExtractSubreddit(rawURL), rawURL, opts)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AnalyzeURLs processes urls in order and stops at the first failure,
// returning no partial results.
func (a *Analyzer) AnalyzeURLs(ctx context.Context, urls []string, optFns ...func(*Options)) ([]AnalysisResult, error) {
	opts := buildOptions(optFns)
	log := a.log.With("run_id", uuid.NewString(), "mode", "batch")
	return a.processAll(ctx, log, urls, "", opts)
}

// AnalyzeFile reads one URL per line from path, skipping blank lines and
// lines starting with '#', and processes them like AnalyzeURLs.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, optFns ...func(*Options)) ([]AnalysisResult, error) {
	urls, err := ReadURLFile(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("Loaded batch file", "path", path, "urls", len(urls))
	return a.AnalyzeURLs(ctx, urls, optFns...)
}

// AnalyzeSubreddit processes the subreddit's hot posts, stopping at the first failure.
func (a *Analyzer) AnalyzeSubreddit(ctx context.Context, name string, optFns ...func(*Options)) ([]AnalysisResult, error) {
	opts := buildOptions(optFns)
	log := a.log.With("run_id", uuid.NewString(), "mode", "subreddit", "subreddit", name)

	log.Info("Fetching hot posts", "limit", opts.Limit)
	urls, err := a.fetcher.FetchSubreddit(ctx, name, opts.Limit)
	if err != nil {
		return nil, err
	}
	return a.processAll(ctx, log, urls, name, opts)
}

// AnalyzeMulti sweeps a comma-separated list of subreddits. Subreddit and
// post failures are logged and counted; the run stops early once the idea
// cap is reached. The returned stats are valid even when results are empty.
func (a *Analyzer) AnalyzeMulti(ctx context.Context, names string, optFns ...func(*Options)) ([]AnalysisResult, RunStats, error) {
	opts := buildOptions(optFns)
	stats := RunStats{MaxIdeas: opts.MaxIdeas}

	subs := SplitSubreddits(names)
	if len(subs) == 0 {
		return nil, stats, fmt.Errorf("%w: no valid subreddit names provided", ErrInvalidInput)
	}

	log := a.log.With("run_id", uuid.NewString(), "mode", "multi")
	var results []AnalysisResult

	for _, sub := range subs {
		log.Info("Scanning subreddit", "subreddit", sub)
		stats = stats.withSubreddit()

		urls, err := a.fetcher.FetchSubreddit(ctx, sub, opts.Limit)
		if err != nil {
			log.Warn("Failed to fetch subreddit, skipping", "subreddit", sub, "error", err)
			continue
		}

		for _, u := range urls {
			res, err := a.processPost(ctx, log, sub, u, opts)
			if err != nil {
				log.Warn("Failed to process post", "url", u, "error", err)
				stats = stats.withFailure()
				continue
			}
			results = append(results, res)
			stats = stats.withPost(len(res.Ideas))

			if stats.CapReached() {
				log.Info("Reached max-ideas limit", "max_ideas", stats.MaxIdeas, "ideas", stats.IdeasGenerated)
				return results, stats, nil
			}
		}
	}

	return results, stats, nil
}

func (a *Analyzer) processAll(ctx context.Context, log *slog.Logger, urls []string, subreddit string, opts Options) ([]AnalysisResult, error) {
	results := make([]AnalysisResult, 0, len(urls))
	for _, raw := range urls {
		sub := subreddit
		if sub == "" {
			sub = ExtractSubreddit(raw)
		}
		res, err := a.processPost(ctx, log, sub, raw, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// processPost is the shared per-post routine: validate, fetch, prompt,
// invoke, parse, export.
func (a *Analyzer) processPost(ctx context.Context, log *slog.Logger, subreddit, rawURL string, opts Options) (AnalysisResult, error) {
	res, err := a.analyze(ctx, log, subreddit, rawURL, opts)
	if err != nil {
		a.metrics.post(false, 0)
		return AnalysisResult{}, err
	}
	a.metrics.post(true, len(res.Ideas))
	return res, nil
}

func (a *Analyzer) analyze(ctx context.Context, log *slog.Logger, subreddit, rawURL string, opts Options) (AnalysisResult, error) {
	clean, err := ValidateURL(rawURL)
	if err != nil {
		return AnalysisResult{}, err
	}
	log.Info("Processing post", "url", clean)

	post, err := a.fetcher.FetchPost(ctx, clean, opts.MaxComments)
	if err != nil {
		return AnalysisResult{}, err
	}

	prompt, err := a.prompts.BuildPrompt(post)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("build prompt: %w", err)
	}

	raw, err := a.invoker.Generate(ctx, prompt)
	if err != nil {
		return AnalysisResult{}, err
	}

	res := NewAnalysisResult(post, raw)
	if len(res.Ideas) == 0 {
		log.Warn("Could not parse structured ideas, keeping raw model output", "url", clean)
	}
	a.export(ctx, log, subreddit, post, res.Ideas)
	return res, nil
}

// export appends ideas when an exporter is configured and there is something
// to write. Errors are logged and swallowed.
func (a *Analyzer) export(ctx context.Context, log *slog.Logger, subreddit string, post *RedditPost, ideas []Idea) {
	if a.exporter == nil || len(ideas) == 0 {
		return
	}
	if err := a.exporter.Export(ctx, subreddit, post.URL, post.Title, ideas); err != nil {
		a.metrics.export(false)
		log.Warn("Sheet export failed (continuing)", "url", post.URL, "error", err)
		return
	}
	a.metrics.export(true)
	log.Info("Exported ideas to Google Sheet", "count", len(ideas))
}

// SplitSubreddits splits a comma-separated list, trimming blanks.
func SplitSubreddits(names string) []string {
	var subs []string
	for _, s := range strings.Split(names, ",") {
		if s = strings.TrimSpace(s); s != "" {
			subs = append(subs, s)
		}
	}
	return subs
}

// ReadURLFile returns the non-blank, non-comment lines of path, trimmed.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrIO, path, err)
	}
	return urls, nil
}
