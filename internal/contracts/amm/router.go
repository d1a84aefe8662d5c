package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const RouterClassName = "sushi-router"

var (
	RouterABI = ledger.MustABI(registry.SushiRouterABI)

	tagRouterFactory = byte(0x40)
	tagRouterWETH    = byte(0x41)
)

func RouterClass() ledger.Class {
	return ledger.Class{
		Name: RouterClassName,
		ABI:  RouterABI,
		New:  func(addr common.Address) ledger.Contract { return &RouterContract{addr: addr} },
	}
}

type RouterContract struct {
	addr common.Address
}

func (cont *RouterContract) OnCreate(cc *ledger.Context, args []any) error {
	cc.SetAddressData([]byte{tagRouterFactory}, args[0].(common.Address))
	cc.SetAddressData([]byte{tagRouterWETH}, args[1].(common.Address))
	return nil
}

func (cont *RouterContract) factory(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagRouterFactory})
}

func ensure(cc *ledger.Context, deadline *big.Int) error {
	if deadline.Cmp(new(big.Int).SetUint64(cc.Timestamp())) < 0 {
		return ledger.Revert("UniswapV2Router: EXPIRED")
	}
	return nil
}

// addLiquidity picks the amounts to deposit so the pool price is preserved.
func (cont *RouterContract) addLiquidity(cc *ledger.Context, tokenA, tokenB common.Address, amountADesired, amountBDesired, amountAMin, amountBMin *big.Int) (*big.Int, *big.Int, error) {
	factory := cont.factory(cc)
	out, err := cc.Exec(factory, "getPair", tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if out[0].(common.Address) == (common.Address{}) {
		if _, err := cc.Exec(factory, "createPair", tokenA, tokenB); err != nil {
			return nil, nil, err
		}
	}
	reserveA, reserveB, err := GetReserves(cc, factory, tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if reserveA.Sign() == 0 && reserveB.Sign() == 0 {
		return amountADesired, amountBDesired, nil
	}
	amountBOptimal, err := Quote(amountADesired, reserveA, reserveB)
	if err != nil {
		return nil, nil, err
	}
	if amountBOptimal.Cmp(amountBDesired) <= 0 {
		if amountBOptimal.Cmp(amountBMin) < 0 {
			return nil, nil, ledger.Revert("UniswapV2Router: INSUFFICIENT_B_AMOUNT")
		}
		return amountADesired, amountBOptimal, nil
	}
	amountAOptimal, err := Quote(amountBDesired, reserveB, reserveA)
	if err != nil {
		return nil, nil, err
	}
	if amountAOptimal.Cmp(amountADesired) > 0 {
		return nil, nil, ledger.Revert("UniswapV2Router: INSUFFICIENT_A_AMOUNT")
	}
	if amountAOptimal.Cmp(amountAMin) < 0 {
		return nil, nil, ledger.Revert("UniswapV2Router: INSUFFICIENT_A_AMOUNT")
	}
	return amountAOptimal, amountBDesired, nil
}

func (cont *RouterContract) AddLiquidity(cc *ledger.Context, tokenA, tokenB common.Address, amountADesired, amountBDesired, amountAMin, amountBMin *big.Int, to common.Address, deadline *big.Int) (*big.Int, *big.Int, *big.Int, error) {
	if err := ensure(cc, deadline); err != nil {
		return nil, nil, nil, err
	}
	amountA, amountB, err := cont.addLiquidity(cc, tokenA, tokenB, amountADesired, amountBDesired, amountAMin, amountBMin)
	if err != nil {
		return nil, nil, nil, err
	}
	pair, err := PairFor(cont.factory(cc), tokenA, tokenB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := erc20.SafeTransferFrom(cc, tokenA, cc.From(), pair, amountA); err != nil {
		return nil, nil, nil, err
	}
	if err := erc20.SafeTransferFrom(cc, tokenB, cc.From(), pair, amountB); err != nil {
		return nil, nil, nil, err
	}
	out, err := cc.Exec(pair, "mint", to)
	if err != nil {
		return nil, nil, nil, err
	}
	return amountA, amountB, out[0].(*big.Int), nil
}

func (cont *RouterContract) RemoveLiquidity(cc *ledger.Context, tokenA, tokenB common.Address, liquidity, amountAMin, amountBMin *big.Int, to common.Address, deadline *big.Int) (*big.Int, *big.Int, error) {
	if err := ensure(cc, deadline); err != nil {
		return nil, nil, err
	}
	pair, err := PairFor(cont.factory(cc), tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if err := erc20.SafeTransferFrom(cc, pair, cc.From(), pair, liquidity); err != nil {
		return nil, nil, err
	}
	out, err := cc.Exec(pair, "burn", to)
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1 := out[0].(*big.Int), out[1].(*big.Int)
	token0, _, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	amountA, amountB := amount0, amount1
	if tokenA != token0 {
		amountA, amountB = amount1, amount0
	}
	if amountA.Cmp(amountAMin) < 0 {
		return nil, nil, ledger.Revert("UniswapV2Router: INSUFFICIENT_A_AMOUNT")
	}
	if amountB.Cmp(amountBMin) < 0 {
		return nil, nil, ledger.Revert("UniswapV2Router: INSUFFICIENT_B_AMOUNT")
	}
	return amountA, amountB, nil
}

func (cont *RouterContract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	switch method {
	case "factory":
		return []any{cont.factory(cc)}, nil
	case "WETH":
		return []any{cc.AddressData([]byte{tagRouterWETH})}, nil
	case "quote":
		amountB, err := Quote(args[0].(*big.Int), args[1].(*big.Int), args[2].(*big.Int))
		if err != nil {
			return nil, err
		}
		return []any{amountB}, nil
	case "addLiquidity":
		amountA, amountB, liquidity, err := cont.AddLiquidity(cc,
			args[0].(common.Address), args[1].(common.Address),
			args[2].(*big.Int), args[3].(*big.Int), args[4].(*big.Int), args[5].(*big.Int),
			args[6].(common.Address), args[7].(*big.Int),
		)
		if err != nil {
			return nil, err
		}
		return []any{amountA, amountB, liquidity}, nil
	case "removeLiquidity":
		amountA, amountB, err := cont.RemoveLiquidity(cc,
			args[0].(common.Address), args[1].(common.Address),
			args[2].(*big.Int), args[3].(*big.Int), args[4].(*big.Int),
			args[5].(common.Address), args[6].(*big.Int),
		)
		if err != nil {
			return nil, err
		}
		return []any{amountA, amountB}, nil
	}
	return nil, fmt.Errorf("sushi router: unhandled method %s", method)
}

// Classes lists every AMM contract class.
func Classes() []ledger.Class {
	return []ledger.Class{FactoryClass(), PairClass(), RouterClass()}
}
