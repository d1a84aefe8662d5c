package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
	ErrNonceMismatch     = errors.New("nonce mismatch")
	ErrNotImpersonated   = errors.New("sender is not impersonated")
	ErrUnknownClass      = errors.New("unknown contract class")
	ErrNoCode            = errors.New("no contract code at address")
	ErrHistoricalState   = errors.New("historical state is not available")
)

// RevertError is returned for any call that reverted. Reason is the revert
// string exactly as the contract raised it.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

func Revert(reason string) error {
	return &RevertError{Reason: reason}
}

func Revertf(format string, args ...any) error {
	return &RevertError{Reason: fmt.Sprintf(format, args...)}
}

// RevertReason extracts the revert reason from err, if err is a revert.
func RevertReason(err error) (string, bool) {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert.Reason, true
	}
	return "", false
}
