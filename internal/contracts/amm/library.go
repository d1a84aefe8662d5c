package amm

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const MinimumLiquidity = 1000

// SortTokens orders a token pair the way pairs store it.
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address, error) {
	if tokenA == tokenB {
		return common.Address{}, common.Address{}, ledger.Revert("UniswapV2Library: IDENTICAL_ADDRESSES")
	}
	token0, token1 := tokenA, tokenB
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) > 0 {
		token0, token1 = tokenB, tokenA
	}
	if token0 == (common.Address{}) {
		return common.Address{}, common.Address{}, ledger.Revert("UniswapV2Library: ZERO_ADDRESS")
	}
	return token0, token1, nil
}

func pairSalt(token0, token1 common.Address) [32]byte {
	return crypto.Keccak256Hash(token0.Bytes(), token1.Bytes())
}

// PairFor computes the CREATE2 address of the pair without touching state.
func PairFor(factory, tokenA, tokenB common.Address) (common.Address, error) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.CreateAddress2(factory, pairSalt(token0, token1), registry.SushiPairInitCodeHash.Bytes()), nil
}

// Quote returns the amount of B equivalent to amountA at the given reserves.
func Quote(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if amountA.Sign() <= 0 {
		return nil, ledger.Revert("UniswapV2Library: INSUFFICIENT_AMOUNT")
	}
	if reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		return nil, ledger.Revert("UniswapV2Library: INSUFFICIENT_LIQUIDITY")
	}
	out := new(big.Int).Mul(amountA, reserveB)
	return out.Quo(out, reserveA), nil
}

// GetReserves returns the pair reserves ordered as (tokenA, tokenB).
func GetReserves(cc *ledger.Context, factory, tokenA, tokenB common.Address) (*big.Int, *big.Int, error) {
	token0, _, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	pair, err := PairFor(factory, tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	out, err := cc.Exec(pair, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	reserve0, reserve1 := out[0].(*big.Int), out[1].(*big.Int)
	if tokenA == token0 {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}
