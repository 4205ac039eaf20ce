package discovery

import "errors"

var (
	ErrAlreadyRunning = errors.New("discovery service is already running")
	ErrNotRunning     = errors.New("discovery service is not running")
	ErrStopTimeout    = errors.New("discovery workers did not exit in time")
	ErrInvalidConfig  = errors.New("invalid discovery configuration")
)
