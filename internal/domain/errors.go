package domain

import "errors"

var (
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrMalformedPayload = errors.New("malformed payload")
)
