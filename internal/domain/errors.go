package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTweetUnavailable = errors.New("tweet data unavailable")
)
