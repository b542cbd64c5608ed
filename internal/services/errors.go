package services

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCoupleNotFound      = errors.New("couple not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrPairingCodeNotFound = errors.New("invalid code or couple not found")
	ErrPairingCodeExpired  = errors.New("pairing code has expired")
)
