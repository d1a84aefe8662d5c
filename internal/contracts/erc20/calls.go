package erc20

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

// BalanceOf reads token.balanceOf(owner) from inside a contract call.
func BalanceOf(cc *ledger.Context, token, owner common.Address) (*big.Int, error) {
	out, err := cc.Exec(token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// SafeTransfer calls token.transfer and reverts on a false return value.
func SafeTransfer(cc *ledger.Context, token, to common.Address, amount *big.Int) error {
	out, err := cc.Exec(token, "transfer", to, amount)
	if err != nil {
		return err
	}
	return checkSuccess(out, "TRANSFER_FAILED")
}

func SafeTransferFrom(cc *ledger.Context, token, from, to common.Address, amount *big.Int) error {
	out, err := cc.Exec(token, "transferFrom", from, to, amount)
	if err != nil {
		return err
	}
	return checkSuccess(out, "TRANSFER_FROM_FAILED")
}

func SafeApprove(cc *ledger.Context, token, spender common.Address, amount *big.Int) error {
	out, err := cc.Exec(token, "approve", spender, amount)
	if err != nil {
		return err
	}
	return checkSuccess(out, "APPROVE_FAILED")
}

func checkSuccess(out []any, reason string) error {
	if len(out) != 1 {
		return fmt.Errorf("erc20: unexpected return arity %d", len(out))
	}
	if ok, _ := out[0].(bool); !ok {
		return ledger.Revert("TransferHelper: " + reason)
	}
	return nil
}
