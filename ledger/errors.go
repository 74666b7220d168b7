package ledger

import "errors"

var (
	// ErrMissingArguments is returned when an event arrives without its decoded fields.
	ErrMissingArguments = errors.New("missing event arguments")

	// ErrInvariantViolation is returned when locked escrow would go negative.
	ErrInvariantViolation = errors.New("locked amount should not be negative")

	// ErrDecode is returned when an exit receipt log does not have the expected shape.
	ErrDecode = errors.New("malformed exit log")

	// ErrConfiguration is returned when the chain id has no registry entry.
	ErrConfiguration = errors.New("no address registry for chain")

	// ErrDuplicateKey is returned by stores when an immutable record already exists.
	ErrDuplicateKey = errors.New("duplicate key: record already exists")

	// ErrInvalidInput is returned by stores for nil records or empty keys.
	ErrInvalidInput = errors.New("invalid input")
)
