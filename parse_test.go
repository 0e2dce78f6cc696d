package ideas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIdeasJSON = `[
  {
    "product_name": "ShiftSwap",
    "target_user": "Hourly retail staff",
    "core_problem": "Swapping shifts needs a manager on the phone",
    "mvp_features": ["Post a shift", "Claim a shift", "Manager approval"],
    "monetization": "Per-location subscription",
    "feasibility": "CRUD app with notifications"
  },
  {
    "product_name": "ReceiptBox",
    "target_user": "Freelancers",
    "core_problem": "Receipts get lost before tax season",
    "mvp_features": ["Photo upload", "Monthly export"],
    "monetization": "Freemium",
    "feasibility": "OCR via an existing API"
  }
]`

func TestParseIdeas(t *testing.T) {
	bare := ParseIdeas(sampleIdeasJSON)
	require.Len(t, bare, 2)
	assert.Equal(t, "ShiftSwap", bare[0].ProductName)
	assert.Equal(t, []string{"Post a shift", "Claim a shift", "Manager approval"}, bare[0].MVPFeatures)
	assert.Equal(t, "Freelancers", bare[1].TargetUser)

	t.Run("fenced", func(t *testing.T) {
		assert.Equal(t, bare, ParseIdeas("```json\n"+sampleIdeasJSON+"\n```"))
		assert.Equal(t, bare, ParseIdeas("  ```\n"+sampleIdeasJSON+"\n```  \n"))
	})

	t.Run("prose around the array", func(t *testing.T) {
		assert.Equal(t, bare, ParseIdeas("Here you go:\n"+sampleIdeasJSON+"\nHope that helps."))
	})

	t.Run("failures yield empty", func(t *testing.T) {
		for name, in := range map[string]string{
			"no brackets":   "no brackets here",
			"empty":         "",
			"reversed":      "] then [",
			"truncated":     `[{"product_name": "Half`,
			"invalid json":  `[{"product_name": }]`,
			"fence only":    "```json",
			"wrong shape":   `[1, 2, 3]`,
			"nested arrays": `[[{"product_name":"A"}]]`,
		} {
			got := ParseIdeas(in)
			assert.NotNil(t, got, name)
			assert.Empty(t, got, name)
		}
	})
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, "[1]", stripFence("```json\n[1]\n```"))
	assert.Equal(t, "[1]", stripFence("```\n[1]```"))
	assert.Equal(t, "plain", stripFence("  plain \n"))
	assert.Equal(t, "", stripFence("```"))
}

func TestNewAnalysisResult(t *testing.T) {
	post := &RedditPost{URL: "https://reddit.com/r/a/comments/1", Title: "T"}

	t.Run("parsed", func(t *testing.T) {
		res := NewAnalysisResult(post, sampleIdeasJSON)
		require.Len(t, res.Ideas, 2)
		assert.Equal(t, post.URL, res.URL)
		assert.Equal(t, "T", res.Title)
		assert.Contains(t, res.IdeasText, "1. ShiftSwap\n")
		assert.Contains(t, res.IdeasText, "2. ReceiptBox\n")
		assert.Contains(t, res.IdeasText, "     - Claim a shift\n")
		assert.Contains(t, res.IdeasText, "   Monetization: Freemium\n")
	})

	t.Run("raw fallback", func(t *testing.T) {
		raw := "  I could not produce JSON, sorry.  "
		res := NewAnalysisResult(post, raw)
		assert.Empty(t, res.Ideas)
		assert.Equal(t, raw, res.IdeasText)
	})
}
