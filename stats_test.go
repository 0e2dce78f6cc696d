package ideas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStats(t *testing.T) {
	var s RunStats
	s = s.withSubreddit().withPost(3).withFailure().withSubreddit().withPost(2)

	assert.Equal(t, RunStats{SubredditsProcessed: 2, PostsAnalyzed: 2, IdeasGenerated: 5, PostsFailed: 1}, s)
	assert.False(t, s.CapReached(), "no cap configured")

	s.MaxIdeas = 5
	assert.True(t, s.CapReached())
	s.MaxIdeas = 6
	assert.False(t, s.CapReached())
}

func TestRunStats_ValueSemantics(t *testing.T) {
	base := RunStats{}
	next := base.withPost(4)
	assert.Equal(t, 0, base.IdeasGenerated)
	assert.Equal(t, 4, next.IdeasGenerated)
}

func TestRunStats_Summary(t *testing.T) {
	s := RunStats{SubredditsProcessed: 2, PostsAnalyzed: 3, IdeasGenerated: 7, PostsFailed: 1}
	out := s.Summary()
	assert.Contains(t, out, "Scan complete.")
	assert.Contains(t, out, "Subreddits processed: 2\n")
	assert.Contains(t, out, "Posts analyzed: 3\n")
	assert.Contains(t, out, "Ideas generated: 7\n")
	assert.Contains(t, out, "Posts failed: 1\n")
}
