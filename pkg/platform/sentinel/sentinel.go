package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Lower layers return these
// (optionally wrapped) and services decide how much of the fact reaches a caller.
//
//   - ErrExpired: credential is past its expiry
//   - ErrMalformed: credential could not be parsed or verified
//   - ErrUnavailable: a sink or backing service is temporarily unavailable
//   - ErrBufferFull: an async queue rejected work
var (
	ErrExpired     = errors.New("expired")
	ErrMalformed   = errors.New("malformed")
	ErrUnavailable = errors.New("unavailable")
	ErrBufferFull  = errors.New("buffer full")
)
