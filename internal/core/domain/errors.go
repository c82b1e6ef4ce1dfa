package domain

import "errors"

var (
	ErrUnknownPoint    = errors.New("unknown point")
	ErrReadOnly        = errors.New("point is read-only")
	ErrInvalidValue    = errors.New("invalid value")
	ErrOutOfRange      = errors.New("value out of range")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrNoSnapshot      = errors.New("no snapshot available yet")
)
