package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const FactoryClassName = "sushi-wallet-factory"

const ReasonWalletExists = "Wallet already exists"

var (
	FactoryABI = ledger.MustABI(registry.SushiWalletFactoryABI)

	tagUserWallet    = byte(0x10)
	tagWalletsLength = byte(0x11)
	tagWalletAt      = byte(0x12)
)

func FactoryClass() ledger.Class {
	return ledger.Class{
		Name: FactoryClassName,
		ABI:  FactoryABI,
		New:  func(addr common.Address) ledger.Contract { return &FactoryContract{addr: addr} },
	}
}

// FactoryContract deploys wallets wired to the router and both chefs it was
// constructed with.
type FactoryContract struct {
	addr common.Address
}

func (cont *FactoryContract) OnCreate(cc *ledger.Context, args []any) error {
	cc.SetAddressData([]byte{tagRouter}, args[0].(common.Address))
	cc.SetAddressData([]byte{tagMasterChefV1}, args[1].(common.Address))
	cc.SetAddressData([]byte{tagMasterChefV2}, args[2].(common.Address))
	return nil
}

func (cont *FactoryContract) UserToWallet(cc *ledger.Context, owner common.Address) common.Address {
	return cc.AddressData(ledger.Key(tagUserWallet, owner.Bytes()))
}

func (cont *FactoryContract) WalletsLength(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagWalletsLength})
}

func (cont *FactoryContract) CreateWallet(cc *ledger.Context) (common.Address, error) {
	owner := cc.From()
	if cont.UserToWallet(cc, owner) != (common.Address{}) {
		return common.Address{}, ledger.Revert(ReasonWalletExists)
	}
	addr, err := cc.Deploy(ClassName,
		owner,
		cc.AddressData([]byte{tagRouter}),
		cc.AddressData([]byte{tagMasterChefV1}),
		cc.AddressData([]byte{tagMasterChefV2}),
	)
	if err != nil {
		return common.Address{}, err
	}
	cc.SetAddressData(ledger.Key(tagUserWallet, owner.Bytes()), addr)
	index := cont.WalletsLength(cc)
	cc.SetAddressData(ledger.Key(tagWalletAt, ledger.BigKey(index)), addr)
	cc.SetBigData([]byte{tagWalletsLength}, new(big.Int).Add(index, common.Big1))
	if err := cc.Emit("WalletCreated", owner, addr); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

func (cont *FactoryContract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	switch method {
	case "router":
		return []any{cc.AddressData([]byte{tagRouter})}, nil
	case "masterChefV1":
		return []any{cc.AddressData([]byte{tagMasterChefV1})}, nil
	case "masterChefV2":
		return []any{cc.AddressData([]byte{tagMasterChefV2})}, nil
	case "createWallet":
		addr, err := cont.CreateWallet(cc)
		if err != nil {
			return nil, err
		}
		return []any{addr}, nil
	case "userToWallet":
		return []any{cont.UserToWallet(cc, args[0].(common.Address))}, nil
	case "walletsLength":
		return []any{cont.WalletsLength(cc)}, nil
	case "wallets":
		index := args[0].(*big.Int)
		if index.Cmp(cont.WalletsLength(cc)) >= 0 {
			return nil, ledger.Revert("")
		}
		return []any{cc.AddressData(ledger.Key(tagWalletAt, ledger.BigKey(index)))}, nil
	}
	return nil, fmt.Errorf("sushi wallet factory: unhandled method %s", method)
}

// Classes lists the wallet and its factory.
func Classes() []ledger.Class {
	return []ledger.Class{Class(), FactoryClass()}
}
