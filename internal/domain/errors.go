package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrJobFailed      = errors.New("job failed")
	ErrJobNotFinished = errors.New("job not finished")
	ErrPollTimeout    = errors.New("poll timed out")
)
