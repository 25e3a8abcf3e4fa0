package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds is returned when an account cannot cover a withdrawal
// under its type rules (credit limit exceeded, savings balance too low).
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnknownCurrency is returned when a currency code has no entry in the
// conversion table.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrConflict is returned when a guarded write finds the row changed since
// the caller read it. Callers re-read and retry.
var ErrConflict = errors.New("concurrent modification")
