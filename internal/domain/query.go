package domain

import "time"

// VideoOrder selects the ordering of a candidate query.
type VideoOrder int

const (
	// OrderPopular orders by view count, then newest first.
	OrderPopular VideoOrder = iota
	// OrderNewest orders by creation time, newest first.
	OrderNewest
)

// VideoQuery describes a bounded candidate pool. Nil slices are ignored;
// a non-nil empty IDIn, AuthorIn or HashtagIn matches nothing.
type VideoQuery struct {
	CreatedAfter   time.Time
	ExcludeIDs     []string
	IDIn           []string
	AuthorIn       []string
	HashtagIn      []string
	AuthorNotEqual string
	EligibleOnly   bool
	OrderBy        VideoOrder
	Limit          int
}

// MatchesNothing reports whether a set filter was supplied empty.
func (q *VideoQuery) MatchesNothing() bool {
	return (q.IDIn != nil && len(q.IDIn) == 0) ||
		(q.AuthorIn != nil && len(q.AuthorIn) == 0) ||
		(q.HashtagIn != nil && len(q.HashtagIn) == 0)
}
