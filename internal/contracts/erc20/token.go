package erc20

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const ClassName = "erc20"

var (
	ABI = ledger.MustABI(registry.ERC20ABI)

	tagOwner = byte(0x10)
)

func Class() ledger.Class {
	return ledger.Class{
		Name: ClassName,
		ABI:  ABI,
		New:  func(addr common.Address) ledger.Contract { return &TokenContract{addr: addr} },
	}
}

// TokenContract is an ERC-20 whose owner may mint. Ownership moves to a farm
// when the farm becomes the only issuer.
type TokenContract struct {
	addr common.Address
	Book
}

func (cont *TokenContract) Address() common.Address {
	return cont.addr
}

func (cont *TokenContract) OnCreate(cc *ledger.Context, args []any) error {
	name, symbol, decimals, owner := args[0].(string), args[1].(string), args[2].(uint8), args[3].(common.Address)
	cont.Init(cc, name, symbol, decimals)
	if owner == (common.Address{}) {
		owner = cc.From()
	}
	cc.SetAddressData([]byte{tagOwner}, owner)
	return cc.Emit("OwnershipTransferred", common.Address{}, owner)
}

func (cont *TokenContract) owner(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagOwner})
}

func (cont *TokenContract) onlyOwner(cc *ledger.Context) error {
	if cc.From() != cont.owner(cc) {
		return ledger.Revert("Ownable: caller is not the owner")
	}
	return nil
}

func (cont *TokenContract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	if out, handled, err := cont.Book.Invoke(cc, method, args); handled {
		return out, err
	}
	switch method {
	case "owner":
		return []any{cont.owner(cc)}, nil
	case "mint":
		if err := cont.onlyOwner(cc); err != nil {
			return nil, err
		}
		return nil, cont.Mint(cc, args[0].(common.Address), args[1].(*big.Int))
	case "transferOwnership":
		if err := cont.onlyOwner(cc); err != nil {
			return nil, err
		}
		next := args[0].(common.Address)
		if next == (common.Address{}) {
			return nil, ledger.Revert("Ownable: new owner is the zero address")
		}
		previous := cont.owner(cc)
		cc.SetAddressData([]byte{tagOwner}, next)
		return nil, cc.Emit("OwnershipTransferred", previous, next)
	}
	return nil, fmt.Errorf("erc20: unhandled method %s", method)
}
