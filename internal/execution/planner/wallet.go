package planner

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
)

type CreateWalletRequest struct {
	Base
	Factory common.Address
}

func BuildCreateWalletAction(req CreateWalletRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if err := requireAddress(req.Factory, "wallet factory"); err != nil {
		return execution.Action{}, err
	}
	action := req.newAction("wallet_create")
	action.ToAddress = req.Factory.Hex()
	step, err := req.callStep("create-wallet", execution.StepTypeFactoryCall, "Deploy a SushiWallet owned by the sender",
		req.Factory, nil, wallet.FactoryABI, "createWallet")
	if err != nil {
		return execution.Action{}, err
	}
	action.Steps = append(action.Steps, step)
	return action, nil
}

// WalletRequest targets an existing wallet.
type WalletRequest struct {
	Base
	Wallet common.Address
}

func (r WalletRequest) validate() error {
	if err := r.Base.validate(); err != nil {
		return err
	}
	return requireAddress(r.Wallet, "wallet")
}

func (r WalletRequest) action(intent string, amount *big.Int) execution.Action {
	action := r.newAction(intent)
	action.ToAddress = r.Wallet.Hex()
	if amount != nil {
		action.InputAmount = amount.String()
	}
	action.Metadata = map[string]any{"wallet": r.Wallet.Hex()}
	return action
}

func (r WalletRequest) single(intent, stepID, description string, value, amount *big.Int, method string, args ...any) (execution.Action, error) {
	action := r.action(intent, amount)
	step, err := r.callStep(stepID, execution.StepTypeWalletCall, description, r.Wallet, value, wallet.ABI, method, args...)
	if err != nil {
		return execution.Action{}, err
	}
	action.Steps = append(action.Steps, step)
	return action, nil
}

type DepositRequest struct {
	WalletRequest
	Amount *big.Int
}

func BuildDepositAction(req DepositRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.Amount, "deposit amount"); err != nil {
		return execution.Action{}, err
	}
	return req.single("wallet_deposit", "deposit-eth", fmt.Sprintf("Deposit %s ETH into the wallet", id.FormatUnits(req.Amount, 18)),
		req.Amount, req.Amount, "deposit")
}

type WithdrawRequest struct {
	WalletRequest
	Amount *big.Int
}

// BuildWithdrawAction sends ETH from the wallet back to its owner. A zero
// amount is allowed and only emits the withdrawal event.
func BuildWithdrawAction(req WithdrawRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if req.Amount == nil || req.Amount.Sign() < 0 {
		return execution.Action{}, clierr.New(clierr.CodeUsage, "withdraw amount must be a non-negative integer in base units")
	}
	return req.single("wallet_withdraw", "withdraw-eth", fmt.Sprintf("Withdraw %s ETH to the owner", id.FormatUnits(req.Amount, 18)),
		nil, req.Amount, "withdraw", req.Amount)
}

type TransferETHRequest struct {
	WalletRequest
	To     common.Address
	Amount *big.Int
}

func BuildTransferETHAction(req TransferETHRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if err := requireAddress(req.To, "recipient"); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.Amount, "transfer amount"); err != nil {
		return execution.Action{}, err
	}
	action, err := req.single("wallet_transfer_eth", "transfer-eth", fmt.Sprintf("Send %s ETH to %s", id.FormatUnits(req.Amount, 18), req.To.Hex()),
		nil, req.Amount, "transferETHAmount", req.To, req.Amount)
	if err != nil {
		return execution.Action{}, err
	}
	action.Metadata["recipient"] = req.To.Hex()
	return action, nil
}

type WithdrawERC20Request struct {
	WalletRequest
	Token  id.Asset
	Amount *big.Int
}

func BuildWithdrawERC20Action(req WithdrawERC20Request) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if req.Token.Native {
		return execution.Action{}, clierr.New(clierr.CodeUsage, "use withdraw for ETH, withdraw-erc20 takes a token")
	}
	if err := requireAddress(req.Token.Address, "token"); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.Amount, "token amount"); err != nil {
		return execution.Action{}, err
	}
	action, err := req.single("wallet_withdraw_erc20", "withdraw-erc20",
		fmt.Sprintf("Withdraw %s %s to the owner", id.FormatUnits(req.Amount, req.Token.Decimals), req.Token.Symbol),
		nil, req.Amount, "withdrawERC20", req.Token.Address, req.Amount)
	if err != nil {
		return execution.Action{}, err
	}
	action.Metadata["token"] = req.Token.Symbol
	return action, nil
}
