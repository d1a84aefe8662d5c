package planner

import (
	"fmt"
	"math/big"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
)

type EnterFarmRequest struct {
	WalletRequest
	TokenA   id.Asset
	TokenB   id.Asset
	AmountA  *big.Int
	AmountB  *big.Int
	Deadline uint64
}

// BuildEnterFarmAction adds liquidity for the pair through the wallet and
// stakes the LP tokens in whichever MasterChef lists the pair.
func BuildEnterFarmAction(req EnterFarmRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if err := validatePair(req.TokenA, req.TokenB); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.AmountA, "amount of "+req.TokenA.Symbol); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.AmountB, "amount of "+req.TokenB.Symbol); err != nil {
		return execution.Action{}, err
	}
	if req.Deadline == 0 {
		return execution.Action{}, clierr.New(clierr.CodeUsage, "deadline is required")
	}
	action := req.action("farm_enter", nil)
	action.Constraints.Deadline = fmt.Sprintf("%d", req.Deadline)
	action.Metadata["pair"] = req.TokenA.Symbol + "/" + req.TokenB.Symbol
	action.Metadata["amount_a"] = req.AmountA.String()
	action.Metadata["amount_b"] = req.AmountB.String()
	step, err := req.callStep("execute-yield-farming", execution.StepTypeWalletCall,
		fmt.Sprintf("Provide %s %s and %s %s and stake the LP tokens",
			id.FormatUnits(req.AmountA, req.TokenA.Decimals), req.TokenA.Symbol,
			id.FormatUnits(req.AmountB, req.TokenB.Decimals), req.TokenB.Symbol),
		req.Wallet, nil, wallet.ABI, "executeYieldFarming",
		req.TokenA.Address, req.TokenB.Address, req.AmountA, req.AmountB, new(big.Int).SetUint64(req.Deadline))
	if err != nil {
		return execution.Action{}, err
	}
	action.Steps = append(action.Steps, step)
	return action, nil
}

type ExitFarmRequest struct {
	WalletRequest
	TokenA   id.Asset
	TokenB   id.Asset
	LPAmount *big.Int
}

// BuildExitFarmAction unstakes LP tokens, harvesting rewards, and removes the
// liquidity back into the wallet.
func BuildExitFarmAction(req ExitFarmRequest) (execution.Action, error) {
	if err := req.validate(); err != nil {
		return execution.Action{}, err
	}
	if err := validatePair(req.TokenA, req.TokenB); err != nil {
		return execution.Action{}, err
	}
	if err := requirePositive(req.LPAmount, "LP amount"); err != nil {
		return execution.Action{}, err
	}
	action := req.action("farm_exit", req.LPAmount)
	action.Metadata["pair"] = req.TokenA.Symbol + "/" + req.TokenB.Symbol
	step, err := req.callStep("withdraw-from-yield-farming", execution.StepTypeWalletCall,
		fmt.Sprintf("Unstake %s LP and remove %s/%s liquidity", id.FormatUnits(req.LPAmount, 18), req.TokenA.Symbol, req.TokenB.Symbol),
		req.Wallet, nil, wallet.ABI, "withdrawFromYieldFarming",
		req.TokenA.Address, req.TokenB.Address, req.LPAmount)
	if err != nil {
		return execution.Action{}, err
	}
	action.Steps = append(action.Steps, step)
	return action, nil
}

func validatePair(a, b id.Asset) error {
	if a.Native || b.Native {
		return clierr.New(clierr.CodeUsage, "farm pairs take ERC-20 tokens, use WETH instead of ETH")
	}
	if err := requireAddress(a.Address, "tokenA"); err != nil {
		return err
	}
	if err := requireAddress(b.Address, "tokenB"); err != nil {
		return err
	}
	if a.Address == b.Address {
		return clierr.New(clierr.CodeUsage, "pair tokens must differ")
	}
	return nil
}
