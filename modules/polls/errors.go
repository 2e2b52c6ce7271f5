package polls

import "errors"

var (
	ErrInvalidPoll         = errors.New("invalid poll")
	ErrPollNotFound        = errors.New("poll not found")
	ErrInvalidOption       = errors.New("invalid option")
	ErrMalformedSubmission = errors.New("malformed submission")
	ErrMalformedAction     = errors.New("malformed action")
	ErrPlatformIO          = errors.New("platform call failed")
)
