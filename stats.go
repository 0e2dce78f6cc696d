package ideas

import (
	"fmt"
	"strings"
)

// RunStats accumulates Multi-run totals. It is a value: the run loop threads
// it through and replaces it with each update.
type RunStats struct {
	SubredditsProcessed int `json:"subreddits_processed"`
	PostsAnalyzed       int `json:"posts_analyzed"`
	IdeasGenerated      int `json:"ideas_generated"`
	PostsFailed         int `json:"posts_failed"`
	MaxIdeas            int `json:"max_ideas,omitempty"` // 0 → no cap
}

// withSubreddit counts a subreddit as scanned.
func (s RunStats) withSubreddit() RunStats {
	s.SubredditsProcessed++
	return s
}

// withPost counts an analyzed post and its ideas.
func (s RunStats) withPost(ideas int) RunStats {
	s.PostsAnalyzed++
	s.IdeasGenerated += ideas
	return s
}

// withFailure counts a post that could not be processed.
func (s RunStats) withFailure() RunStats {
	s.PostsFailed++
	return s
}

// CapReached reports whether the idea cap is set and met.
func (s RunStats) CapReached() bool {
	return s.MaxIdeas > 0 && s.IdeasGenerated >= s.MaxIdeas
}

// Summary renders the end-of-run block.
func (s RunStats) Summary() string {
	const rule = "────────────────────────────────────────"
	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("Scan complete.\n\n")
	sb.WriteString(fmt.Sprintf("Subreddits processed: %d\n", s.SubredditsProcessed))
	sb.WriteString(fmt.Sprintf("Posts analyzed: %d\n", s.PostsAnalyzed))
	sb.WriteString(fmt.Sprintf("Ideas generated: %d\n", s.IdeasGenerated))
	sb.WriteString(fmt.Sprintf("Posts failed: %d\n", s.PostsFailed))
	sb.WriteString(rule + "\n")
	return sb.String()
}
