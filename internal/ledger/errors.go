package ledger

import "errors"

var (
	// ErrInsufficientFunds is returned for non-positive amounts.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnsupportedOperation is returned by read-only backends on writes.
	ErrUnsupportedOperation = errors.New("operation not supported by this ledger")

	// ErrRemoteUnavailable is returned when the remote ledger rejects or
	// cannot receive a write.
	ErrRemoteUnavailable = errors.New("remote ledger unavailable")
)
