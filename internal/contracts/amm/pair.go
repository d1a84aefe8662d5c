package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const PairClassName = "sushi-pair"

var (
	PairABI = ledger.MustABI(registry.SushiPairABI)

	tagFactory            = byte(0x20)
	tagToken0             = byte(0x21)
	tagToken1             = byte(0x22)
	tagReserve0           = byte(0x23)
	tagReserve1           = byte(0x24)
	tagBlockTimestampLast = byte(0x25)

	maxUint112 = new(big.Int).Sub(new(big.Int).Lsh(common.Big1, 112), common.Big1)
)

func PairClass() ledger.Class {
	return ledger.Class{
		Name: PairClassName,
		ABI:  PairABI,
		New:  func(addr common.Address) ledger.Contract { return &PairContract{addr: addr} },
	}
}

// PairContract holds the reserves of one token pair and is its own LP token.
type PairContract struct {
	addr common.Address
	erc20.Book
}

func (cont *PairContract) OnCreate(cc *ledger.Context, args []any) error {
	cont.Init(cc, "SushiSwap LP Token", "SLP", 18)
	cc.SetAddressData([]byte{tagFactory}, cc.From())
	return nil
}

func (cont *PairContract) token0(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagToken0})
}

func (cont *PairContract) token1(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagToken1})
}

func (cont *PairContract) reserves(cc *ledger.Context) (*big.Int, *big.Int, uint32) {
	ts := uint32(cc.BigData([]byte{tagBlockTimestampLast}).Uint64())
	return cc.BigData([]byte{tagReserve0}), cc.BigData([]byte{tagReserve1}), ts
}

func (cont *PairContract) update(cc *ledger.Context, balance0, balance1 *big.Int) error {
	if balance0.Cmp(maxUint112) > 0 || balance1.Cmp(maxUint112) > 0 {
		return ledger.Revert("UniswapV2: OVERFLOW")
	}
	cc.SetBigData([]byte{tagReserve0}, balance0)
	cc.SetBigData([]byte{tagReserve1}, balance1)
	cc.SetBigData([]byte{tagBlockTimestampLast}, new(big.Int).SetUint64(cc.Timestamp()%(1<<32)))
	return cc.Emit("Sync", balance0, balance1)
}

func (cont *PairContract) balances(cc *ledger.Context) (*big.Int, *big.Int, error) {
	balance0, err := erc20.BalanceOf(cc, cont.token0(cc), cc.Self())
	if err != nil {
		return nil, nil, err
	}
	balance1, err := erc20.BalanceOf(cc, cont.token1(cc), cc.Self())
	if err != nil {
		return nil, nil, err
	}
	return balance0, balance1, nil
}

// mint issues LP tokens for whatever was transferred in since the last update.
func (cont *PairContract) mint(cc *ledger.Context, to common.Address) (*big.Int, error) {
	reserve0, reserve1, _ := cont.reserves(cc)
	balance0, balance1, err := cont.balances(cc)
	if err != nil {
		return nil, err
	}
	amount0 := new(big.Int).Sub(balance0, reserve0)
	amount1 := new(big.Int).Sub(balance1, reserve1)

	var liquidity *big.Int
	totalSupply := cont.TotalSupply(cc)
	if totalSupply.Sign() == 0 {
		liquidity = new(big.Int).Sqrt(new(big.Int).Mul(amount0, amount1))
		liquidity.Sub(liquidity, big.NewInt(MinimumLiquidity))
		if liquidity.Sign() > 0 {
			if err := cont.MintLocked(cc, common.Address{}, big.NewInt(MinimumLiquidity)); err != nil {
				return nil, err
			}
		}
	} else {
		liquidity0 := new(big.Int).Mul(amount0, totalSupply)
		liquidity0.Quo(liquidity0, reserve0)
		liquidity1 := new(big.Int).Mul(amount1, totalSupply)
		liquidity1.Quo(liquidity1, reserve1)
		liquidity = liquidity0
		if liquidity1.Cmp(liquidity0) < 0 {
			liquidity = liquidity1
		}
	}
	if liquidity.Sign() <= 0 {
		return nil, ledger.Revert("UniswapV2: INSUFFICIENT_LIQUIDITY_MINTED")
	}
	if err := cont.Mint(cc, to, liquidity); err != nil {
		return nil, err
	}
	if err := cont.update(cc, balance0, balance1); err != nil {
		return nil, err
	}
	return liquidity, cc.Emit("Mint", cc.From(), amount0, amount1)
}

// burn redeems the LP tokens held by the pair itself.
func (cont *PairContract) burn(cc *ledger.Context, to common.Address) (*big.Int, *big.Int, error) {
	token0, token1 := cont.token0(cc), cont.token1(cc)
	balance0, balance1, err := cont.balances(cc)
	if err != nil {
		return nil, nil, err
	}
	liquidity := cont.BalanceOf(cc, cc.Self())
	totalSupply := cont.TotalSupply(cc)
	if totalSupply.Sign() == 0 {
		return nil, nil, ledger.Revert("UniswapV2: INSUFFICIENT_LIQUIDITY_BURNED")
	}
	amount0 := new(big.Int).Mul(liquidity, balance0)
	amount0.Quo(amount0, totalSupply)
	amount1 := new(big.Int).Mul(liquidity, balance1)
	amount1.Quo(amount1, totalSupply)
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		return nil, nil, ledger.Revert("UniswapV2: INSUFFICIENT_LIQUIDITY_BURNED")
	}
	if err := cont.Burn(cc, cc.Self(), liquidity); err != nil {
		return nil, nil, err
	}
	if err := erc20.SafeTransfer(cc, token0, to, amount0); err != nil {
		return nil, nil, err
	}
	if err := erc20.SafeTransfer(cc, token1, to, amount1); err != nil {
		return nil, nil, err
	}
	balance0, balance1, err = cont.balances(cc)
	if err != nil {
		return nil, nil, err
	}
	if err := cont.update(cc, balance0, balance1); err != nil {
		return nil, nil, err
	}
	return amount0, amount1, cc.Emit("Burn", cc.From(), amount0, amount1, to)
}

func (cont *PairContract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	if out, handled, err := cont.Book.Invoke(cc, method, args); handled {
		return out, err
	}
	switch method {
	case "MINIMUM_LIQUIDITY":
		return []any{big.NewInt(MinimumLiquidity)}, nil
	case "factory":
		return []any{cc.AddressData([]byte{tagFactory})}, nil
	case "token0":
		return []any{cont.token0(cc)}, nil
	case "token1":
		return []any{cont.token1(cc)}, nil
	case "getReserves":
		reserve0, reserve1, ts := cont.reserves(cc)
		return []any{reserve0, reserve1, ts}, nil
	case "initialize":
		if cc.From() != cc.AddressData([]byte{tagFactory}) {
			return nil, ledger.Revert("UniswapV2: FORBIDDEN")
		}
		cc.SetAddressData([]byte{tagToken0}, args[0].(common.Address))
		cc.SetAddressData([]byte{tagToken1}, args[1].(common.Address))
		return nil, nil
	case "mint":
		liquidity, err := cont.mint(cc, args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return []any{liquidity}, nil
	case "burn":
		amount0, amount1, err := cont.burn(cc, args[0].(common.Address))
		if err != nil {
			return nil, err
		}
		return []any{amount0, amount1}, nil
	case "sync":
		balance0, balance1, err := cont.balances(cc)
		if err != nil {
			return nil, err
		}
		return nil, cont.update(cc, balance0, balance1)
	}
	return nil, fmt.Errorf("sushi pair: unhandled method %s", method)
}
