// Package wallet implements the SushiWallet custody contract and the factory
// that deploys one wallet per owner.
package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const ClassName = "sushi-wallet"

const (
	ReasonOnlyOwner           = "Only the owner can perform this action"
	ReasonInsufficientBalance = "Insufficient balance"
	ReasonNoFarm              = "No farm for pair"
)

// Farm versions reported by farmPosition and the farming events.
const (
	FarmNone uint8 = 0
	FarmV1   uint8 = 1
	FarmV2   uint8 = 2
)

var (
	ABI = ledger.MustABI(registry.SushiWalletABI)

	tagOwner        = byte(0x01)
	tagRouter       = byte(0x02)
	tagMasterChefV1 = byte(0x03)
	tagMasterChefV2 = byte(0x04)
)

func Class() ledger.Class {
	return ledger.Class{
		Name: ClassName,
		ABI:  ABI,
		New:  func(addr common.Address) ledger.Contract { return &Contract{addr: addr} },
	}
}

// Contract is a per-owner wallet. Native funds sit in the ledger balance of
// the wallet address; token balances live in the token contracts.
type Contract struct {
	addr common.Address
}

// farm locates the staking pool for an LP token.
type farm struct {
	pair    common.Address
	version uint8
	chef    common.Address
	pid     *big.Int
}

func (cont *Contract) OnCreate(cc *ledger.Context, args []any) error {
	cc.SetAddressData([]byte{tagOwner}, args[0].(common.Address))
	cc.SetAddressData([]byte{tagRouter}, args[1].(common.Address))
	cc.SetAddressData([]byte{tagMasterChefV1}, args[2].(common.Address))
	cc.SetAddressData([]byte{tagMasterChefV2}, args[3].(common.Address))
	return nil
}

func (cont *Contract) owner(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagOwner})
}

func (cont *Contract) router(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagRouter})
}

func (cont *Contract) onlyOwner(cc *ledger.Context) error {
	if cc.From() != cont.owner(cc) {
		return ledger.Revert(ReasonOnlyOwner)
	}
	return nil
}

func (cont *Contract) Receive(cc *ledger.Context) error {
	return cc.Emit("Deposited", cc.From(), cc.Value())
}

func (cont *Contract) Deposit(cc *ledger.Context) error {
	return cc.Emit("Deposited", cc.From(), cc.Value())
}

func (cont *Contract) sendNative(cc *ledger.Context, to common.Address, amount *big.Int) error {
	if amount.Cmp(cc.Balance(cc.Self())) > 0 {
		return ledger.Revert(ReasonInsufficientBalance)
	}
	return cc.Transfer(to, amount)
}

func (cont *Contract) Withdraw(cc *ledger.Context, amount *big.Int) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	owner := cont.owner(cc)
	if err := cont.sendNative(cc, owner, amount); err != nil {
		return err
	}
	return cc.Emit("Withdrawn", owner, amount)
}

func (cont *Contract) TransferETHAmount(cc *ledger.Context, to common.Address, amount *big.Int) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	if err := cont.sendNative(cc, to, amount); err != nil {
		return err
	}
	return cc.Emit("Withdrawn", to, amount)
}

func (cont *Contract) WithdrawERC20(cc *ledger.Context, token common.Address, amount *big.Int) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	owner := cont.owner(cc)
	if err := erc20.SafeTransfer(cc, token, owner, amount); err != nil {
		return err
	}
	return cc.Emit("ERC20Withdrawn", token, owner, amount)
}

func (cont *Contract) pairFor(cc *ledger.Context, tokenA, tokenB common.Address) (common.Address, error) {
	out, err := cc.Exec(cont.router(cc), "factory")
	if err != nil {
		return common.Address{}, err
	}
	out, err = cc.Exec(out[0].(common.Address), "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// findFarm scans the V2 pools first and falls back to V1. It returns nil
// when neither chef stakes the pair.
func (cont *Contract) findFarm(cc *ledger.Context, tokenA, tokenB common.Address) (*farm, error) {
	pair, err := cont.pairFor(cc, tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	if pair == (common.Address{}) {
		return nil, nil
	}
	chefs := []struct {
		version uint8
		addr    common.Address
		method  string
	}{
		{FarmV2, cc.AddressData([]byte{tagMasterChefV2}), "lpToken"},
		{FarmV1, cc.AddressData([]byte{tagMasterChefV1}), "poolInfo"},
	}
	for _, chef := range chefs {
		if chef.addr == (common.Address{}) {
			continue
		}
		out, err := cc.Exec(chef.addr, "poolLength")
		if err != nil {
			return nil, err
		}
		length := out[0].(*big.Int).Int64()
		for i := int64(0); i < length; i++ {
			pid := big.NewInt(i)
			out, err := cc.Exec(chef.addr, chef.method, pid)
			if err != nil {
				return nil, err
			}
			if out[0].(common.Address) == pair {
				return &farm{pair: pair, version: chef.version, chef: chef.addr, pid: pid}, nil
			}
		}
	}
	return nil, nil
}

func (cont *Contract) mustFindFarm(cc *ledger.Context, tokenA, tokenB common.Address) (*farm, error) {
	f, err := cont.findFarm(cc, tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ledger.Revert(ReasonNoFarm)
	}
	return f, nil
}

// ExecuteYieldFarming adds liquidity for the pair and stakes every LP token
// minted by the router.
func (cont *Contract) ExecuteYieldFarming(cc *ledger.Context, tokenA, tokenB common.Address, amountA, amountB, deadline *big.Int) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	f, err := cont.mustFindFarm(cc, tokenA, tokenB)
	if err != nil {
		return err
	}
	router := cont.router(cc)
	if err := erc20.SafeApprove(cc, tokenA, router, amountA); err != nil {
		return err
	}
	if err := erc20.SafeApprove(cc, tokenB, router, amountB); err != nil {
		return err
	}
	out, err := cc.Exec(router, "addLiquidity", tokenA, tokenB, amountA, amountB, new(big.Int), new(big.Int), cc.Self(), deadline)
	if err != nil {
		return err
	}
	liquidity := out[2].(*big.Int)
	if err := erc20.SafeApprove(cc, f.pair, f.chef, liquidity); err != nil {
		return err
	}
	if f.version == FarmV2 {
		_, err = cc.Exec(f.chef, "deposit", f.pid, liquidity, cc.Self())
	} else {
		_, err = cc.Exec(f.chef, "deposit", f.pid, liquidity)
	}
	if err != nil {
		return err
	}
	return cc.Emit("YieldFarmingExecuted", f.pair, f.version, f.pid, liquidity)
}

// WithdrawFromYieldFarming unstakes lpAmount, collecting SUSHI on the way,
// and burns the LP tokens back into the underlying pair.
func (cont *Contract) WithdrawFromYieldFarming(cc *ledger.Context, tokenA, tokenB common.Address, lpAmount *big.Int) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	f, err := cont.mustFindFarm(cc, tokenA, tokenB)
	if err != nil {
		return err
	}
	if f.version == FarmV2 {
		_, err = cc.Exec(f.chef, "withdrawAndHarvest", f.pid, lpAmount, cc.Self())
	} else {
		_, err = cc.Exec(f.chef, "withdraw", f.pid, lpAmount)
	}
	if err != nil {
		return err
	}
	router := cont.router(cc)
	if err := erc20.SafeApprove(cc, f.pair, router, lpAmount); err != nil {
		return err
	}
	deadline := new(big.Int).SetUint64(cc.Timestamp())
	if _, err := cc.Exec(router, "removeLiquidity", tokenA, tokenB, lpAmount, new(big.Int), new(big.Int), cc.Self(), deadline); err != nil {
		return err
	}
	return cc.Emit("YieldFarmingWithdrawn", f.pair, f.version, f.pid, lpAmount)
}

// FarmPosition reports where the pair is staked and how many LP tokens the
// wallet holds there. Version is FarmNone when no chef stakes the pair.
func (cont *Contract) FarmPosition(cc *ledger.Context, tokenA, tokenB common.Address) (uint8, *big.Int, *big.Int, error) {
	f, err := cont.findFarm(cc, tokenA, tokenB)
	if err != nil {
		return 0, nil, nil, err
	}
	if f == nil {
		return FarmNone, new(big.Int), new(big.Int), nil
	}
	out, err := cc.Exec(f.chef, "userInfo", f.pid, cc.Self())
	if err != nil {
		return 0, nil, nil, err
	}
	return f.version, f.pid, out[0].(*big.Int), nil
}

func (cont *Contract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	switch method {
	case "owner":
		return []any{cont.owner(cc)}, nil
	case "router":
		return []any{cont.router(cc)}, nil
	case "masterChefV1":
		return []any{cc.AddressData([]byte{tagMasterChefV1})}, nil
	case "masterChefV2":
		return []any{cc.AddressData([]byte{tagMasterChefV2})}, nil
	case "deposit":
		return nil, cont.Deposit(cc)
	case "withdraw":
		return nil, cont.Withdraw(cc, args[0].(*big.Int))
	case "transferETHAmount":
		return nil, cont.TransferETHAmount(cc, args[0].(common.Address), args[1].(*big.Int))
	case "withdrawERC20":
		return nil, cont.WithdrawERC20(cc, args[0].(common.Address), args[1].(*big.Int))
	case "executeYieldFarming":
		return nil, cont.ExecuteYieldFarming(cc, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int), args[3].(*big.Int), args[4].(*big.Int))
	case "withdrawFromYieldFarming":
		return nil, cont.WithdrawFromYieldFarming(cc, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int))
	case "farmPosition":
		version, pid, amount, err := cont.FarmPosition(cc, args[0].(common.Address), args[1].(common.Address))
		if err != nil {
			return nil, err
		}
		return []any{version, pid, amount}, nil
	}
	return nil, fmt.Errorf("sushi wallet: unhandled method %s", method)
}
