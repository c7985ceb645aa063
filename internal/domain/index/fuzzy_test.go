package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyBudget(t *testing.T) {
	assert.Equal(t, 1, FuzzyBudget("ac"))
	assert.Equal(t, 1, FuzzyBudget("auth"))
	assert.Equal(t, 2, FuzzyBudget("account"))
}

func TestFuzzyMatch_FindsTypo(t *testing.T) {
	vocab := []string{"access", "account", "accounting", "management"}
	got := FuzzyMatch("acount", vocab, 2)
	require.NotEmpty(t, got)
	assert.Equal(t, "account", got[0].Term)
	assert.Equal(t, 1, got[0].Distance)
}

func TestFuzzyMatch_ExcludesOverBudget(t *testing.T) {
	got := FuzzyMatch("zzz", []string{"account", "management"}, 2)
	assert.Empty(t, got)
}

func TestFuzzyMatch_TieBreakShorterThenLexical(t *testing.T) {
	// Both "cat" and "car" are distance 1 from "cab" and equal length;
	// lexical order decides.
	got := FuzzyMatch("cab", []string{"car", "cat", "cabin"}, 1)
	require.Len(t, got, 2)
	assert.Equal(t, "car", got[0].Term)
	assert.Equal(t, "cat", got[1].Term)
}

func TestFuzzyMatch_DistanceOrdersFirst(t *testing.T) {
	got := FuzzyMatch("manage", []string{"managed", "manager", "manage"}, 2)
	require.NotEmpty(t, got)
	assert.Equal(t, "manage", got[0].Term)
	assert.Equal(t, 0, got[0].Distance)
}

func TestFuzzyMatch_EmptyQuery(t *testing.T) {
	assert.Nil(t, FuzzyMatch("", []string{"account"}, 2))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("same", "same", 3))
	assert.Equal(t, 1, editDistance("acount", "account", 3))
	assert.Equal(t, 1, editDistance("managment", "management", 3))
	assert.Equal(t, 1, editDistance("cat", "cut", 3))
}

func TestEditDistance_EarlyExit(t *testing.T) {
	// Distance is 5; with limit 2 the function gives up with limit+1.
	assert.Equal(t, 3, editDistance("aaaaa", "bbbbb", 2))
}
