package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSearchTerms_LowercasesAndSplits(t *testing.T) {
	assert.Equal(t, []string{"fix", "login", "bug"}, splitSearchTerms("Fix  LOGIN bug"))
}

func TestSplitSearchTerms_WhitespaceOnlyYieldsNoTerms(t *testing.T) {
	assert.Empty(t, splitSearchTerms("   "))
}

func TestSearchClause_BuildsOneLikePerTerm(t *testing.T) {
	clause, args := searchClause("fix login")
	assert.Equal(t, "search_vector LIKE ? AND search_vector LIKE ?", clause)
	assert.Equal(t, []any{"%fix%", "%login%"}, args)
}

func TestSearchClause_EmptyQueryYieldsEmptyClause(t *testing.T) {
	clause, args := searchClause("   ")
	assert.Empty(t, clause)
	assert.Nil(t, args)
}
