package review

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid review request")
	ErrReviewNotAllowed = errors.New("only guests with a completed stay can review")
	ErrAlreadyReviewed  = errors.New("property already reviewed by this user")
	ErrNotFound         = errors.New("review not found")
	ErrForbidden        = errors.New("forbidden")
)
