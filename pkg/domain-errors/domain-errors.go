package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	// Token controller taxonomy. Every one of these is raised by a guard that
	// runs before any state is touched, so the failed operation has no effect.
	CodeInvalidAmount         Code = "invalid_amount"
	CodeInvalidRequestStatus  Code = "invalid_request_status"
	CodeAddressNotBlacklisted Code = "address_not_blacklisted"
	CodeCounterOverflow       Code = "counter_overflow"
	CodeInsufficientBalance   Code = "insufficient_balance"
	CodeUnauthorized          Code = "unauthorized"
	CodeContractPaused        Code = "contract_paused"
	CodeAddressBlacklisted    Code = "address_blacklisted"
)

// Canonical messages for the token controller taxonomy.
const (
	MsgInvalidAmount         = "Invalid amount."
	MsgInvalidRequestStatus  = "Invalid redemption request status for this action."
	MsgAddressNotBlacklisted = "Address is not on the blacklist."
	MsgCounterOverflow       = "Counter overflow."
	MsgInsufficientBalance   = "Insufficient token balance."
	MsgUnauthorized          = "Unauthorized access."
	MsgContractPaused        = "Contract is paused."
	MsgAddressBlacklisted    = "The address is on the transfer blacklist."
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error in the chain,
// or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func InvalidAmount() error         { return New(CodeInvalidAmount, MsgInvalidAmount) }
func InvalidRequestStatus() error  { return New(CodeInvalidRequestStatus, MsgInvalidRequestStatus) }
func AddressNotBlacklisted() error { return New(CodeAddressNotBlacklisted, MsgAddressNotBlacklisted) }
func CounterOverflow() error       { return New(CodeCounterOverflow, MsgCounterOverflow) }
func InsufficientBalance() error   { return New(CodeInsufficientBalance, MsgInsufficientBalance) }
func Unauthorized() error          { return New(CodeUnauthorized, MsgUnauthorized) }
func ContractPaused() error        { return New(CodeContractPaused, MsgContractPaused) }
func AddressBlacklisted() error    { return New(CodeAddressBlacklisted, MsgAddressBlacklisted) }
