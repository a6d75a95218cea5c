package pagination

// Assemble trims rows fetched with one row of look-ahead down to limit.
// hasMore reports whether the look-ahead row was present; boundary is then
// the last row kept on the page, whose key resumes the walk. Assemble never
// needs a separate existence query.
func Assemble[T any](rows []T, limit int) (page []T, hasMore bool, boundary *T) {
	if limit < 0 {
		limit = 0
	}
	if len(rows) <= limit {
		return rows, false, nil
	}
	page = rows[:limit]
	if limit == 0 {
		return page, true, nil
	}
	return page, true, &page[limit-1]
}
