package pagination

import (
	"strconv"
	"strings"
	"time"
)

// Window restricts a source to the rows strictly after a position in the
// total order of Mode. A nil After admits every row.
type Window struct {
	Mode  SortMode
	After *Key
}

// NewWindow builds the window continuing after c. A nil cursor starts from
// the beginning.
func NewWindow(mode SortMode, c *Cursor) Window {
	w := Window{Mode: mode}
	if c != nil {
		k := c.Key
		w.After = &k
	}
	return w
}

// Admits reports whether k lies strictly after the window boundary.
func (w Window) Admits(k Key) bool {
	return w.After == nil || Compare(w.Mode, k, *w.After) > 0
}

// Placeholder renders the n-th (1-based) bind parameter of a statement.
type Placeholder func(n int) string

// Dollar renders PostgreSQL style placeholders ($1, $2, ...).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Question renders SQLite/MySQL style placeholders.
func Question(int) string { return "?" }

// KeysetColumns names the SQL expressions a source exposes for each
// component of the ordering tuple.
type KeysetColumns struct {
	// Score is the relevance expression; unused under SortLatest.
	Score     string
	CreatedAt string
	PrimaryID string
	// TimeArg converts the boundary timestamp into the column's storage
	// representation. Nil passes the time.Time through unchanged.
	TimeArg func(time.Time) any
}

// OrderBy returns the ORDER BY list matching the comparator of mode for a
// single source. The type order is constant within a source and is omitted.
func (c KeysetColumns) OrderBy(mode SortMode) string {
	parts := make([]string, 0, 3)
	if mode == SortRelevance {
		parts = append(parts, c.Score+" DESC")
	}
	parts = append(parts, c.CreatedAt+" DESC", c.PrimaryID+" DESC")
	return strings.Join(parts, ", ")
}

// SQL renders the window as a predicate over a source whose rows all carry
// typeOrder. Bind parameters are numbered from argStart and returned in the
// order they appear in the clause.
//
// The type order comparison of the lexicographic tuple is resolved here
// because it is a constant per source:
//
//	typeOrder <  boundary: rows at the boundary timestamp all come after it
//	typeOrder == boundary: rows at the boundary timestamp need a smaller id
//	typeOrder >  boundary: rows at the boundary timestamp all come before it
func (w Window) SQL(cols KeysetColumns, typeOrder int, ph Placeholder, argStart int) (string, []any) {
	if w.After == nil {
		return "TRUE", nil
	}
	k := *w.After
	b := &argBuilder{ph: ph, next: argStart}

	var sb strings.Builder
	if w.Mode == SortRelevance {
		sb.WriteString("(")
		sb.WriteString(cols.Score + " < " + b.add(k.Score))
		sb.WriteString(" OR (" + cols.Score + " = " + b.add(k.Score) + " AND ")
	}

	ts := cols.timeArg(k.CreatedAt)
	switch {
	case typeOrder < k.TypeOrder:
		sb.WriteString(cols.CreatedAt + " <= " + b.add(ts))
	case typeOrder == k.TypeOrder:
		sb.WriteString("(" + cols.CreatedAt + " < " + b.add(ts))
		sb.WriteString(" OR (" + cols.CreatedAt + " = " + b.add(ts))
		sb.WriteString(" AND " + cols.PrimaryID + " < " + b.add(k.PrimaryID) + "))")
	default:
		sb.WriteString(cols.CreatedAt + " < " + b.add(ts))
	}

	if w.Mode == SortRelevance {
		sb.WriteString("))")
	}
	return sb.String(), b.args
}

func (c KeysetColumns) timeArg(t time.Time) any {
	if c.TimeArg != nil {
		return c.TimeArg(t)
	}
	return t.UTC()
}

type argBuilder struct {
	ph   Placeholder
	next int
	args []any
}

func (b *argBuilder) add(v any) string {
	s := b.ph(b.next)
	b.next++
	b.args = append(b.args, v)
	return s
}
