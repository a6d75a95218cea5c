// Package review provides the read use cases over reviews: the global
// latest-reviews listing and the per-user follow feed.
package review

import "errors"

// ErrInvalidViewer indicates that the feed was requested without a valid
// user id. User ids are positive integers.
var ErrInvalidViewer = errors.New("invalid viewer")
