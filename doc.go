// Package ideas turns Reddit discussions into structured product ideas using
// Google's Gemini models.
//
// A single post flows through a fixed pipeline:
//
//	URL → ValidateURL → Fetcher.FetchPost → PromptProvider.BuildPrompt
//	    → Invoker.Generate → ParseIdeas → AnalysisResult
//
// The Analyzer runs that pipeline over one URL, a file of URLs, the hot
// listing of a subreddit, or a sweep across several subreddits. Runs are
// strictly sequential: one HTTP round trip finishes before the next begins.
//
// # Model fallback
//
// FallbackInvoker sends the prompt to an ordered list of models, fastest
// first. Each model gets exactly one attempt. Transport failures and
// non-success statuses advance to the next model; the last model's error is
// reported when the chain runs out. A success status whose body carries no
// text aborts the whole invocation.
//
//	backend, _ := ideas.NewGenaiBackend(ctx, apiKey, httpClient, "")
//	inv := ideas.NewFallbackInvoker(backend, ideas.DefaultModels, logger)
//	text, err := inv.Generate(ctx, prompt)
//
// # Failure isolation
//
// Single, Batch and Subreddit runs abort on the first failed post. Multi runs
// log and count failures per post and per subreddit, and stop early once the
// optional idea cap is reached:
//
//	results, stats, err := analyzer.AnalyzeMulti(ctx, "SaaS,Entrepreneur",
//	    ideas.WithLimit(5), ideas.WithMaxIdeas(20))
//
// # Parsing
//
// ParseIdeas never fails. It strips Markdown code fences, takes the text
// between the first '[' and the last ']', and decodes it into []Idea. Any
// problem yields an empty slice, in which case AnalysisResult.IdeasText keeps
// the raw model output.
package ideas
