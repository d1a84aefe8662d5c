package errors

import (
	"errors"
	"fmt"

	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

// Code is a stable, machine-readable error type mapped to process exit codes.
type Code int

const (
	CodeSuccess           Code = 0
	CodeInternal          Code = 1
	CodeUsage             Code = 2
	CodeUnauthorized      Code = 10
	CodeInsufficientFunds Code = 11
	CodeReverted          Code = 12
	CodeNotFound          Code = 13
	CodeUnsupported       Code = 14
	CodeStateLocked       Code = 15
	CodeBlocked           Code = 16
	CodeSigner            Code = 20
	CodeActionPlan        Code = 21
	CodeActionSim         Code = 22
	CodeActionTimeout     Code = 23
)

// Revert reasons that map to a dedicated code instead of CodeReverted.
const (
	reasonOnlyOwner   = "Only the owner can perform this action"
	reasonInsufficent = "Insufficient balance"
)

// Error is a typed CLI error that carries a stable error code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// FromLedger classifies a chain error. Reverts carry the contract reason and
// are split into authorization, funds and generic downstream failures.
func FromLedger(message string, err error) *Error {
	if err == nil {
		return nil
	}
	if cliErr, ok := As(err); ok {
		return cliErr
	}
	if reason, ok := ledger.RevertReason(err); ok {
		switch reason {
		case reasonOnlyOwner:
			return Wrap(CodeUnauthorized, message, err)
		case reasonInsufficent, "ERC20: transfer amount exceeds balance":
			return Wrap(CodeInsufficientFunds, message, err)
		}
		return Wrap(CodeReverted, message, err)
	}
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return Wrap(CodeInsufficientFunds, message, err)
	case errors.Is(err, ledger.ErrNotImpersonated), errors.Is(err, ledger.ErrNonceMismatch):
		return Wrap(CodeSigner, message, err)
	case errors.Is(err, ledger.ErrNoCode):
		return Wrap(CodeNotFound, message, err)
	}
	return Wrap(CodeInternal, message, err)
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	if cliErr, ok := As(err); ok {
		return int(cliErr.Code)
	}
	return int(CodeInternal)
}
