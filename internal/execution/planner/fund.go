package planner

import (
	"fmt"
	"math/big"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
)

type FundRequest struct {
	WalletRequest
	Asset  id.Asset
	Amount *big.Int
}

// BuildFundAction moves funds from the sender into the wallet: ETH through
// the wallet's receive hook, tokens through a plain ERC-20 transfer.
func BuildFundAction(req FundRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.Amount, "fund amount"); err != nil {
		return execution.Action{}, err
	}
	action := req.action("wallet_fund", req.Amount)
	action.Metadata["asset"] = req.Asset.Symbol
	description := fmt.Sprintf("Send %s %s to the wallet", id.FormatUnits(req.Amount, req.Asset.Decimals), req.Asset.Symbol)
	if req.Asset.Native {
		action.Steps = append(action.Steps, execution.ActionStep{
			StepID:      "fund-eth",
			Type:        execution.StepTypeNativeTransfer,
			Status:      execution.StepStatusPending,
			ChainID:     id.CAIP2(req.ChainID),
			Description: description,
			Target:      req.Wallet.Hex(),
			Data:        "0x",
			Value:       req.Amount.String(),
		})
		return action, nil
	}
	if err := requireAddress(req.Asset.Address, "token"); err != nil {
		return execution.Action{}, err
	}
	step, err := req.callStep("fund-token", execution.StepTypeTokenTransfer, description,
		req.Asset.Address, nil, erc20.ABI, "transfer", req.Wallet, req.Amount)
	if err != nil {
		return execution.Action{}, err
	}
	action.Steps = append(action.Steps, step)
	return action, nil
}
