package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrMissingTimestamp = errors.New("block timestamp missing")
	ErrFeedClosed       = errors.New("block feed closed")
	ErrWSDisconnect     = errors.New("websocket disconnected")
	ErrContextDone      = errors.New("context cancelled")
)
