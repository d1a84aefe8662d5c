package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const FactoryClassName = "sushi-factory"

var (
	FactoryABI = ledger.MustABI(registry.SushiFactoryABI)

	tagPair           = byte(0x30)
	tagAllPairs       = byte(0x31)
	tagAllPairsLength = byte(0x32)
)

func FactoryClass() ledger.Class {
	return ledger.Class{
		Name: FactoryClassName,
		ABI:  FactoryABI,
		New:  func(addr common.Address) ledger.Contract { return &FactoryContract{addr: addr} },
	}
}

type FactoryContract struct {
	addr common.Address
}

func (cont *FactoryContract) OnCreate(cc *ledger.Context, args []any) error {
	return nil
}

func (cont *FactoryContract) GetPair(cc *ledger.Context, tokenA, tokenB common.Address) common.Address {
	return cc.AddressData(ledger.Key(tagPair, tokenA.Bytes(), tokenB.Bytes()))
}

func (cont *FactoryContract) AllPairsLength(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagAllPairsLength})
}

func (cont *FactoryContract) CreatePair(cc *ledger.Context, tokenA, tokenB common.Address) (common.Address, error) {
	if tokenA == tokenB {
		return common.Address{}, ledger.Revert("UniswapV2: IDENTICAL_ADDRESSES")
	}
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, ledger.Revert("UniswapV2: ZERO_ADDRESS")
	}
	if cont.GetPair(cc, token0, token1) != (common.Address{}) {
		return common.Address{}, ledger.Revert("UniswapV2: PAIR_EXISTS")
	}
	pair, err := cc.Deploy2(PairClassName, pairSalt(token0, token1), registry.SushiPairInitCodeHash)
	if err != nil {
		return common.Address{}, err
	}
	if _, err := cc.Exec(pair, "initialize", token0, token1); err != nil {
		return common.Address{}, err
	}
	cc.SetAddressData(ledger.Key(tagPair, token0.Bytes(), token1.Bytes()), pair)
	cc.SetAddressData(ledger.Key(tagPair, token1.Bytes(), token0.Bytes()), pair)
	length := cont.AllPairsLength(cc)
	cc.SetAddressData(ledger.Key(tagAllPairs, ledger.BigKey(length)), pair)
	length.Add(length, common.Big1)
	cc.SetBigData([]byte{tagAllPairsLength}, length)
	return pair, cc.Emit("PairCreated", token0, token1, pair, length)
}

func (cont *FactoryContract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	switch method {
	case "getPair":
		return []any{cont.GetPair(cc, args[0].(common.Address), args[1].(common.Address))}, nil
	case "allPairs":
		return []any{cc.AddressData(ledger.Key(tagAllPairs, ledger.BigKey(args[0].(*big.Int))))}, nil
	case "allPairsLength":
		return []any{cont.AllPairsLength(cc)}, nil
	case "createPair":
		pair, err := cont.CreatePair(cc, args[0].(common.Address), args[1].(common.Address))
		if err != nil {
			return nil, err
		}
		return []any{pair}, nil
	}
	return nil, fmt.Errorf("sushi factory: unhandled method %s", method)
}
