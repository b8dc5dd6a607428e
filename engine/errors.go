package engine

import "errors"

// Submit and cancel are all-or-nothing: every error below is reported
// synchronously before any state mutation or event emission.
var (
	ErrUnknownClient     = errors.New("engine: unknown client")
	ErrInvalidSide       = errors.New("engine: side must be BUY or SELL")
	ErrInvalidPrice      = errors.New("engine: price must not be negative")
	ErrInvalidQuantity   = errors.New("engine: quantity must be positive")
	ErrUnknownOrder      = errors.New("engine: order not owned by client")
	ErrAlreadyTerminal   = errors.New("engine: order has no outstanding quantity")
	ErrBookInconsistency = errors.New("engine: book inconsistency")
)
