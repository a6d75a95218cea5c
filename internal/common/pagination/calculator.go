package pagination

// CalculateOffset calculates the database offset for offset-mode pagination.
// Page numbers are 1-based, so page 1 has offset 0.
//
// Example:
//   - page=1, pageSize=20 → offset=0
//   - page=2, pageSize=20 → offset=20
//   - page=3, pageSize=10 → offset=20
func CalculateOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// ClampPageSize caps size at max. Sizes below 1 are left for the caller to reject.
func ClampPageSize(size, max int) int {
	if max > 0 && size > max {
		return max
	}
	return size
}
