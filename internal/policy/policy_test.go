package policy

import (
	"testing"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
)

func TestCheckCommandAllowed(t *testing.T) {
	if err := CheckCommandAllowed(nil, "wallet deposit"); err != nil {
		t.Fatalf("unexpected error with empty allowlist: %v", err)
	}
	if err := CheckCommandAllowed([]string{"wallet info"}, "wallet  INFO"); err != nil {
		t.Fatalf("expected command to be allowed: %v", err)
	}
	if err := CheckCommandAllowed([]string{"wallet"}, "wallet withdraw"); err != nil {
		t.Fatalf("expected group entry to allow subcommand: %v", err)
	}
	if err := CheckCommandAllowed([]string{"wallet"}, "walletx"); err == nil {
		t.Fatal("expected prefix without separator to be blocked")
	}
	if err := CheckCommandAllowed([]string{"wallet info"}, "version"); err != nil {
		t.Fatalf("expected version to stay available: %v", err)
	}
	err := CheckCommandAllowed([]string{"wallet info"}, "farm enter")
	cliErr, ok := clierr.As(err)
	if !ok || cliErr.Code != clierr.CodeBlocked {
		t.Fatalf("expected blocked error, got %v", err)
	}
}
