package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleSimilarity_IdenticalTitles(t *testing.T) {
	assert.Equal(t, 1.0, TitleSimilarity("Will the Fed cut rates in March?", "Will the Fed cut rates in March?"))
}

func TestTitleSimilarity_PunctuationAndCaseAreIgnored(t *testing.T) {
	score := TitleSimilarity("Will the Fed cut rates in March?", "will the fed cut rates in march")
	assert.Equal(t, 1.0, score)
}

func TestTitleSimilarity_PartialOverlap(t *testing.T) {
	score := TitleSimilarity("Will BTC hit 100k by end of 2026", "Will Bitcoin hit 100000 by 2026")
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestTitleSimilarity_NoOverlap(t *testing.T) {
	assert.Equal(t, 0.0, TitleSimilarity("Will it rain in Seattle tomorrow", "Super Bowl winner 2027"))
}

func TestTitleSimilarity_BothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, TitleSimilarity("", ""))
}

func TestTitleSimilarity_OneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, TitleSimilarity("", "something"))
}

func TestIsLikelyMatch_Threshold(t *testing.T) {
	assert.True(t, IsLikelyMatch("Fed rate decision March 2026", "Fed rate decision March 2026", 0.6))
	assert.False(t, IsLikelyMatch("Fed rate decision March 2026", "Super Bowl winner", 0.6))
}
