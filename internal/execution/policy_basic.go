package execution

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
)

var policyTransferSelector = erc20.ABI.Methods["transfer"].ID

// validateStepPolicy checks that a persisted step still decodes into the call
// its type promises before anything is signed.
func validateStepPolicy(step *ActionStep, data []byte, value *big.Int, opts ExecuteOptions) error {
	if step == nil {
		return clierr.New(clierr.CodeInternal, "missing action step")
	}
	if !common.IsHexAddress(step.Target) {
		return clierr.New(clierr.CodeUsage, "invalid step target address")
	}
	if value.Sign() < 0 {
		return clierr.New(clierr.CodeActionPlan, "step value must be non-negative")
	}

	switch step.Type {
	case StepTypeFactoryCall:
		return validateFactoryPolicy(step, data, value, opts)
	case StepTypeWalletCall:
		return validateWalletPolicy(data, value)
	case StepTypeNativeTransfer:
		if len(data) != 0 {
			return clierr.New(clierr.CodeActionPlan, "native transfer step must not carry calldata")
		}
		if value.Sign() == 0 {
			return clierr.New(clierr.CodeActionPlan, "native transfer step must send a positive value")
		}
		return nil
	case StepTypeTokenTransfer:
		return validateTokenTransferPolicy(data, value)
	default:
		return clierr.New(clierr.CodeActionPlan, fmt.Sprintf("unsupported step type %q", step.Type))
	}
}

func validateFactoryPolicy(step *ActionStep, data []byte, value *big.Int, opts ExecuteOptions) error {
	method, _, err := decodeCall(wallet.FactoryABI, data)
	if err != nil {
		return clierr.Wrap(clierr.CodeActionPlan, "factory step calldata is invalid", err)
	}
	if method.Name != "createWallet" {
		return clierr.New(clierr.CodeActionPlan, "factory step must call createWallet")
	}
	if value.Sign() != 0 {
		return clierr.New(clierr.CodeActionPlan, "factory step must not send value")
	}
	if opts.WalletFactory != (common.Address{}) && common.HexToAddress(step.Target) != opts.WalletFactory {
		return clierr.New(clierr.CodeActionPlan, "factory step target does not match the configured wallet factory")
	}
	return nil
}

func validateWalletPolicy(data []byte, value *big.Int) error {
	method, args, err := decodeCall(wallet.ABI, data)
	if err != nil {
		return clierr.Wrap(clierr.CodeActionPlan, "wallet step calldata is invalid", err)
	}
	if value.Sign() > 0 && !method.IsPayable() {
		return clierr.New(clierr.CodeActionPlan, fmt.Sprintf("wallet method %s is not payable", method.Name))
	}
	if method.IsConstant() {
		return clierr.New(clierr.CodeActionPlan, fmt.Sprintf("wallet method %s is read-only", method.Name))
	}
	switch method.Name {
	case "transferETHAmount":
		if to, ok := toAddress(args[0]); !ok || to == (common.Address{}) {
			return clierr.New(clierr.CodeActionPlan, "transferETHAmount step has invalid recipient")
		}
	case "executeYieldFarming":
		for i, name := range []string{"amountA", "amountB"} {
			amount, ok := toBigInt(args[2+i])
			if !ok || amount.Sign() <= 0 {
				return clierr.New(clierr.CodeActionPlan, fmt.Sprintf("executeYieldFarming step has invalid %s", name))
			}
		}
	}
	return nil
}

func validateTokenTransferPolicy(data []byte, value *big.Int) error {
	if len(data) < 4 || !bytes.Equal(data[:4], policyTransferSelector) {
		return clierr.New(clierr.CodeActionPlan, "token transfer step must use ERC20 transfer(to,amount)")
	}
	if value.Sign() != 0 {
		return clierr.New(clierr.CodeActionPlan, "token transfer step must not send value")
	}
	args, err := erc20.ABI.Methods["transfer"].Inputs.Unpack(data[4:])
	if err != nil || len(args) != 2 {
		return clierr.New(clierr.CodeActionPlan, "token transfer step calldata is invalid")
	}
	to, ok := toAddress(args[0])
	if !ok || to == (common.Address{}) {
		return clierr.New(clierr.CodeActionPlan, "token transfer step has invalid recipient")
	}
	amount, ok := toBigInt(args[1])
	if !ok || amount.Sign() <= 0 {
		return clierr.New(clierr.CodeActionPlan, "token transfer step has invalid amount")
	}
	return nil
}

func decodeCall(contractABI abi.ABI, data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("calldata shorter than a selector")
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("unpack %s: %w", method.Name, err)
	}
	return method, args, nil
}

func parseBaseUnits(value string) (*big.Int, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return new(big.Int), true
	}
	parsed, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, false
	}
	return parsed, true
}

func toAddress(v any) (common.Address, bool) {
	switch value := v.(type) {
	case common.Address:
		return value, true
	case *common.Address:
		if value == nil {
			return common.Address{}, false
		}
		return *value, true
	default:
		return common.Address{}, false
	}
}

func toBigInt(v any) (*big.Int, bool) {
	switch value := v.(type) {
	case *big.Int:
		if value == nil {
			return nil, false
		}
		return value, true
	case big.Int:
		cpy := value
		return &cpy, true
	default:
		return nil, false
	}
}
