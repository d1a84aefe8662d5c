package errors

import (
	"fmt"
	"testing"

	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

func TestFromLedgerClassifiesReverts(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{ledger.Revert("Only the owner can perform this action"), CodeUnauthorized},
		{ledger.Revert("Insufficient balance"), CodeInsufficientFunds},
		{ledger.Revert("ERC20: transfer amount exceeds balance"), CodeInsufficientFunds},
		{ledger.Revert("UniswapV2Router: EXPIRED"), CodeReverted},
		{fmt.Errorf("send: %w", ledger.ErrInsufficientFunds), CodeInsufficientFunds},
		{ledger.ErrNonceMismatch, CodeSigner},
		{ledger.ErrNoCode, CodeNotFound},
		{fmt.Errorf("boom"), CodeInternal},
		{New(CodeUsage, "bad flag"), CodeUsage},
	}
	for _, tc := range cases {
		got := FromLedger("op", tc.err)
		if got.Code != tc.want {
			t.Fatalf("%v: expected code %d, got %d", tc.err, tc.want, got.Code)
		}
	}
	if FromLedger("op", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatal("expected success exit code")
	}
	if ExitCode(Wrap(CodeReverted, "x", ledger.Revert("r"))) != int(CodeReverted) {
		t.Fatal("expected reverted exit code")
	}
	if ExitCode(fmt.Errorf("plain")) != int(CodeInternal) {
		t.Fatal("expected internal exit code")
	}
}
