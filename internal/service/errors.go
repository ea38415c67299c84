package service

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotAMember      = errors.New("not a member of this group")
	ErrNotFound        = errors.New("not found")
	ErrMalformed       = errors.New("malformed input")
)
