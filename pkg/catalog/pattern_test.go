package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPatternEmptyMatchesEverything(t *testing.T) {
	assert.True(t, MatchPattern("", "anything"))
}

func TestMatchPatternLiteral(t *testing.T) {
	assert.True(t, MatchPattern("sales", "sales"))
	assert.False(t, MatchPattern("sales", "sales_archive"))
}

func TestMatchPatternCaseInsensitive(t *testing.T) {
	assert.True(t, MatchPattern("Sales*", "salesqa"))
	assert.True(t, MatchPattern("sales*", "SalesQA"))
}

func TestMatchPatternWildcard(t *testing.T) {
	assert.True(t, MatchPattern("sales*", "sales"))
	assert.True(t, MatchPattern("sales*", "sales_archive"))
	assert.False(t, MatchPattern("sales*", "default"))
	assert.True(t, MatchPattern("*archive", "sales_archive"))
	assert.True(t, MatchPattern("*ales*", "default_sales_archive"))
}

func TestMatchPatternCollapsesConsecutiveStars(t *testing.T) {
	assert.True(t, MatchPattern("sa**les", "sales"))
}
