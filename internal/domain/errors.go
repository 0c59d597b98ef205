package domain

import "errors"

// ErrSigningFailed wraps RSA signing failures during the venue B handshake.
var ErrSigningFailed = errors.New("signing failed")
