package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ideas "github.com/vivaneiona/reddit-ideas"
)

type stubFetcher struct {
	subs     map[string][]string
	limits   []int
	comments []int
}

func (f *stubFetcher) FetchPost(ctx context.Context, url string, maxComments int) (*ideas.RedditPost, error) {
	f.comments = append(f.comments, maxComments)
	return &ideas.RedditPost{URL: url, Title: "Title for " + url, Body: "No text", Comments: []string{}}, nil
}

func (f *stubFetcher) FetchSubreddit(ctx context.Context, name string, limit int) ([]string, error) {
	f.limits = append(f.limits, limit)
	urls, ok := f.subs[name]
	if !ok {
		return nil, fmt.Errorf("%w: failed to fetch r/%s", ideas.ErrExternalService, name)
	}
	return urls, nil
}

const modelAnswer = `[{"product_name":"Alpha","target_user":"u","core_problem":"p","mvp_features":["f1","f2"],"monetization":"m","feasibility":"f"},
{"product_name":"Beta","target_user":"u","core_problem":"p","mvp_features":["f"],"monetization":"m","feasibility":"f"}]`

func runCLI(t *testing.T, fetcher *stubFetcher, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.build = func(ctx context.Context, cfg *Config, promptDir string, log *slog.Logger) (*pipeline, error) {
		return &pipeline{analyzer: ideas.NewForTesting(fetcher, modelAnswer)}, nil
	}
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	fetcher := &stubFetcher{}
	out, _, err := runCLI(t, fetcher, "analyze", "https://reddit.com/r/test/comments/abc123/title/?utm=1", "--comments", "4")
	require.NoError(t, err)

	assert.Contains(t, out, "URL: https://reddit.com/r/test/comments/abc123/title\n")
	assert.Contains(t, out, "Title: Title for https://reddit.com/r/test/comments/abc123/title\n")
	assert.Contains(t, out, "1. Alpha")
	assert.Equal(t, []int{4}, fetcher.comments)
}

func TestAnalyzeCommand_SaveAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	out, _, err := runCLI(t, &stubFetcher{}, "analyze", "https://reddit.com/r/a/comments/1/x", "--format", "json", "--save", path)
	require.NoError(t, err)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(saved)+"\n")
	assert.Contains(t, string(saved), `"product_name": "Alpha"`)
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		_, _, err := runCLI(t, &stubFetcher{}, "analyze", "https://reddit.com/r/a")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ideas.ErrInvalidInput))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := runCLI(t, &stubFetcher{}, "analyze", "https://reddit.com/r/a/comments/1", "--format", "csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})

	t.Run("missing api key", func(t *testing.T) {
		clearEnv(t)
		var stdout, stderr bytes.Buffer
		a := newApp(&stdout, &stderr)
		a.build = func(context.Context, *Config, string, *slog.Logger) (*pipeline, error) {
			t.Fatal("pipeline must not be built without an API key")
			return nil, nil
		}
		root := newRootCmd(a)
		root.SetArgs([]string{"analyze", "https://reddit.com/r/a/comments/1"})
		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
		assert.Empty(t, stdout.String())
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := runCLI(t, &stubFetcher{}, "analyze")
		assert.Error(t, err)
	})
}

func TestBatchCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"# weekly picks",
		"https://reddit.com/r/a/comments/1/x",
		"",
		"https://reddit.com/r/b/comments/2/y",
	}, "\n")), 0o644))

	fetcher := &stubFetcher{}
	out, _, err := runCLI(t, fetcher, "batch", path, "--format", "markdown", "--comments", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "## Post 1")
	assert.Contains(t, out, "## Post 2")
	assert.Equal(t, []int{2, 2}, fetcher.comments)
}

func TestSubredditCommand(t *testing.T) {
	fetcher := &stubFetcher{subs: map[string][]string{
		"golang": {"https://www.reddit.com/r/golang/comments/1/x"},
	}}
	out, _, err := runCLI(t, fetcher, "subreddit", "golang", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "URL: https://www.reddit.com/r/golang/comments/1/x")
	assert.Equal(t, []int{1}, fetcher.limits)

	_, _, err = runCLI(t, &stubFetcher{}, "subreddit", "missing")
	assert.True(t, errors.Is(err, ideas.ErrExternalService))
}

func TestMultiCommand(t *testing.T) {
	fetcher := &stubFetcher{subs: map[string][]string{
		"one":   {"https://www.reddit.com/r/one/comments/1/x"},
		"two":   {"https://www.reddit.com/r/two/comments/2/y"},
		"three": {"https://www.reddit.com/r/three/comments/3/z"},
	}}
	out, errOut, err := runCLI(t, fetcher, "multi", "one,missing,two,three", "--max-ideas", "4", "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, out, "r/one/comments/1/x")
	assert.Contains(t, out, "r/two/comments/2/y")
	assert.NotContains(t, out, "r/three")
	assert.Contains(t, errOut, "Reached max-ideas limit (4).")
	assert.Contains(t, errOut, "Subreddits processed: 3\n")
	assert.Contains(t, errOut, "Ideas generated: 4\n")
	assert.Contains(t, errOut, "Posts failed: 0\n")
}

func TestMultiCommand_NoNames(t *testing.T) {
	_, _, err := runCLI(t, &stubFetcher{}, "multi", " , ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ideas.ErrInvalidInput))
}
