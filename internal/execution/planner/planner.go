// Package planner turns wallet intents into executable actions. Planning is
// pure: it encodes calldata and never touches the chain.
package planner

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
)

// Base carries what every intent shares.
type Base struct {
	ChainID  int64
	Sender   common.Address
	Simulate bool
}

func (b Base) validate() error {
	if b.ChainID <= 0 {
		return clierr.New(clierr.CodeUsage, "chain id is required")
	}
	if b.Sender == (common.Address{}) {
		return clierr.New(clierr.CodeUsage, "sender address is required")
	}
	return nil
}

func (b Base) newAction(intent string) execution.Action {
	action := execution.NewAction(execution.NewActionID(), intent, id.CAIP2(b.ChainID), execution.Constraints{Simulate: b.Simulate})
	action.FromAddress = b.Sender.Hex()
	return action
}

func (b Base) callStep(stepID string, stepType execution.StepType, description string, target common.Address, value *big.Int, contractABI abi.ABI, method string, args ...any) (execution.ActionStep, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return execution.ActionStep{}, clierr.Wrap(clierr.CodeInternal, fmt.Sprintf("pack %s calldata", method), err)
	}
	if value == nil {
		value = new(big.Int)
	}
	return execution.ActionStep{
		StepID:      stepID,
		Type:        stepType,
		Status:      execution.StepStatusPending,
		ChainID:     id.CAIP2(b.ChainID),
		Description: description,
		Method:      method,
		Target:      target.Hex(),
		Data:        "0x" + common.Bytes2Hex(data),
		Value:       value.String(),
	}, nil
}

func requirePositive(amount *big.Int, name string) error {
	if amount == nil || amount.Sign() <= 0 {
		return clierr.New(clierr.CodeUsage, fmt.Sprintf("%s must be a positive integer in base units", name))
	}
	return nil
}

func requireAddress(addr common.Address, name string) error {
	if addr == (common.Address{}) {
		return clierr.New(clierr.CodeUsage, fmt.Sprintf("%s address is required", name))
	}
	return nil
}
