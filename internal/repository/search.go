package repository

import "strings"

// splitSearchTerms lower-cases and whitespace-splits a search query.
// Per the search component's design, a purely-whitespace query yields
// no terms (not a wildcard match of everything).
func splitSearchTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// searchClause builds a parameterized "search_vector LIKE ? AND ..."
// clause ANDing one LIKE per whitespace-separated term, so every term
// must appear somewhere in the denormalized search_vector column.
// Returns an empty clause when query has no non-whitespace terms, which
// callers treat as "no results" rather than "no filter."
func searchClause(query string) (string, []any) {
	terms := splitSearchTerms(query)
	if len(terms) == 0 {
		return "", nil
	}
	clause := ""
	args := make([]any, 0, len(terms))
	for i, term := range terms {
		if i > 0 {
			clause += " AND "
		}
		clause += "search_vector LIKE ?"
		args = append(args, "%"+term+"%")
	}
	return clause, args
}
