package ideas

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ParseIdeas extracts the idea list from raw model output. It never fails:
// any problem yields an empty slice.
//
// Handles a leading ```/```json fence and prose around the array. A
// truncated array or an array nested inside another one is not recovered.
func ParseIdeas(raw string) []Idea {
	s := stripFence(raw)

	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end < 0 || start >= end {
		slog.Debug("No JSON array in model output", "length", len(raw))
		return []Idea{}
	}

	var ideas []Idea
	if err := json.Unmarshal([]byte(s[start:end+1]), &ideas); err != nil {
		slog.Debug("Idea JSON decode failed", "error", err)
		return []Idea{}
	}
	if ideas == nil {
		return []Idea{}
	}
	return ideas
}

// stripFence trims whitespace and, when the text opens with a code fence,
// drops the opening fence line and a trailing closing fence.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	_, rest, found := strings.Cut(s, "\n")
	if !found {
		return ""
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}

// FormatIdeasText renders ideas as a numbered, human-readable list.
func FormatIdeasText(ideas []Idea) string {
	var sb strings.Builder
	for i, idea := range ideas {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, idea.ProductName))
		sb.WriteString(fmt.Sprintf("   Target User: %s\n", idea.TargetUser))
		sb.WriteString(fmt.Sprintf("   Core Problem: %s\n", idea.CoreProblem))
		sb.WriteString("   MVP Features:\n")
		for _, f := range idea.MVPFeatures {
			sb.WriteString(fmt.Sprintf("     - %s\n", f))
		}
		sb.WriteString(fmt.Sprintf("   Monetization: %s\n", idea.Monetization))
		sb.WriteString(fmt.Sprintf("   Feasibility: %s\n", idea.Feasibility))
	}
	return sb.String()
}

// NewAnalysisResult assembles the result for a post from raw model output.
func NewAnalysisResult(post *RedditPost, raw string) AnalysisResult {
	ideas := ParseIdeas(raw)
	text := raw
	if len(ideas) > 0 {
		text = FormatIdeasText(ideas)
	}
	return AnalysisResult{
		URL:       post.URL,
		Title:     post.Title,
		IdeasText: text,
		Ideas:     ideas,
	}
}
