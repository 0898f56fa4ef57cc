package storage

import "errors"

var (
	ErrFeedAlreadyExists = errors.New("feed already exists")
	ErrFeedNotFound      = errors.New("feed not found")
)
