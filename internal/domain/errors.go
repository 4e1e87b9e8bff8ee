package domain

import (
	"errors"
	"fmt"
)

// ErrorKind separates client-caused failures (safe to surface, never
// retried) from infrastructure failures (logged with cause, retryable).
type ErrorKind int

const (
	ErrorKindFunctional ErrorKind = iota
	ErrorKindTechnical
)

// ErrorCode identifies the failure. Callers dispatch on the code via
// errors.Is against the sentinel values below, never on type identity.
type ErrorCode string

const (
	CodeAlreadyRegistered      ErrorCode = "already_registered"
	CodeNotRegistered          ErrorCode = "not_registered"
	CodeAlreadyClaimed         ErrorCode = "already_claimed"
	CodeNotEnoughXPPoints      ErrorCode = "not_enough_xp_points"
	CodeTermsNotAccepted       ErrorCode = "terms_not_accepted"
	CodeUnauthorizedCountry    ErrorCode = "unauthorized_country"
	CodeInvalidEvmAddress      ErrorCode = "invalid_evm_address"
	CodeAirdropClosed          ErrorCode = "airdrop_closed"
	CodeRecordNotFound         ErrorCode = "record_not_found"
	CodeRecordStore            ErrorCode = "record_store_error"
	CodeTransferFailure        ErrorCode = "transfer_failure"
	CodeTransferPending        ErrorCode = "transfer_pending"
	CodeInvalidClaimableAmount ErrorCode = "invalid_claimable_amount"
)

// Error is the single error variant used across the core. Kind decides the
// propagation policy, Code the identity, Cause the wrapped infra error.
type Error struct {
	Code    ErrorCode
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so
// errors.Is(err, ErrAlreadyClaimed) works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Functional builds a client-caused error.
func Functional(code ErrorCode, message string) *Error {
	return &Error{Code: code, Kind: ErrorKindFunctional, Message: message}
}

// Technical builds an infrastructure error wrapping its cause.
func Technical(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Kind: ErrorKindTechnical, Message: message, Cause: cause}
}

// Sentinels for errors.Is dispatch.
var (
	ErrAlreadyRegistered      = &Error{Code: CodeAlreadyRegistered, Kind: ErrorKindFunctional}
	ErrNotRegistered          = &Error{Code: CodeNotRegistered, Kind: ErrorKindFunctional}
	ErrAlreadyClaimed         = &Error{Code: CodeAlreadyClaimed, Kind: ErrorKindFunctional}
	ErrNotEnoughXPPoints      = &Error{Code: CodeNotEnoughXPPoints, Kind: ErrorKindFunctional}
	ErrTermsNotAccepted       = &Error{Code: CodeTermsNotAccepted, Kind: ErrorKindFunctional}
	ErrUnauthorizedCountry    = &Error{Code: CodeUnauthorizedCountry, Kind: ErrorKindFunctional}
	ErrInvalidEvmAddress      = &Error{Code: CodeInvalidEvmAddress, Kind: ErrorKindFunctional}
	ErrAirdropClosed          = &Error{Code: CodeAirdropClosed, Kind: ErrorKindFunctional}
	ErrRecordNotFound         = &Error{Code: CodeRecordNotFound, Kind: ErrorKindTechnical}
	ErrRecordStore            = &Error{Code: CodeRecordStore, Kind: ErrorKindTechnical}
	ErrTransferFailure        = &Error{Code: CodeTransferFailure, Kind: ErrorKindTechnical}
	ErrTransferPending        = &Error{Code: CodeTransferPending, Kind: ErrorKindTechnical}
	ErrInvalidClaimableAmount = &Error{Code: CodeInvalidClaimableAmount, Kind: ErrorKindTechnical}
)

// IsFunctional reports whether err is a client-caused domain error.
func IsFunctional(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == ErrorKindFunctional
}
