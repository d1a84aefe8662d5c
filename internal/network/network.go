// Package network builds the simulated mainnet fork the wallet runs against:
// tokens, Sushi pools, both MasterChefs, funded whales and dev accounts.
package network

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/amm"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/masterchef"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

// Operator owns the fixture tokens and farms and seeds the pools.
var Operator = common.HexToAddress("0x19B3Eb3Af5D93b77a5619b047De0EED7115A19e7")

// Farm identifies a staked pair seeded at genesis.
type Farm struct {
	TokenA  string         `json:"token_a"`
	TokenB  string         `json:"token_b"`
	Pair    common.Address `json:"pair"`
	Version uint8          `json:"version"`
	PID     uint64         `json:"pid"`
}

// Account is a funded dev account with a known private key.
type Account struct {
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// Network is a chain populated by Genesis.
type Network struct {
	Chain         *ledger.Chain
	Deployment    registry.Deployment
	WalletFactory common.Address
	DummyToken    common.Address
	Farms         []Farm
}

// Classes returns every contract class the fixture deploys.
func Classes() []ledger.Class {
	classes := []ledger.Class{erc20.Class()}
	classes = append(classes, amm.Classes()...)
	classes = append(classes, masterchef.Classes()...)
	return append(classes, wallet.Classes()...)
}

// NewChain returns an empty chain that knows every fixture class.
func NewChain(cfg ledger.Config, logger *zap.Logger) *ledger.Chain {
	return ledger.NewChain(cfg, logger, Classes()...)
}

// Attach describes an already populated chain, such as one restored from disk.
func Attach(chain *ledger.Chain, d registry.Deployment) *Network {
	n := &Network{Chain: chain, Deployment: d}
	n.WalletFactory = crypto.CreateAddress(DevAccounts()[0].Address, 0)
	n.DummyToken = crypto.CreateAddress(Operator, 0)
	return n.withFarms()
}

func (n *Network) withFarms() *Network {
	d := n.Deployment
	usdcWeth, _ := amm.PairFor(d.SushiFactory, d.MustToken("USDC").Address, d.MustToken("WETH").Address)
	cvxWeth, _ := amm.PairFor(d.SushiFactory, d.MustToken("CVX").Address, d.MustToken("WETH").Address)
	n.Farms = []Farm{
		{TokenA: "USDC", TokenB: "WETH", Pair: usdcWeth, Version: wallet.FarmV1, PID: 0},
		{TokenA: "CVX", TokenB: "WETH", Pair: cvxWeth, Version: wallet.FarmV2, PID: 0},
	}
	return n
}

// New creates a chain and runs Genesis on it.
func New(ctx context.Context, cfg ledger.Config, d registry.Deployment, logger *zap.Logger) (*Network, error) {
	chain := NewChain(cfg, logger)
	if err := Genesis(ctx, chain, d); err != nil {
		return nil, err
	}
	return Attach(chain, d), nil
}

// Farm returns the genesis farm for a pair in either token order.
func (n *Network) Farm(tokenA, tokenB string) (Farm, bool) {
	for _, farm := range n.Farms {
		if (farm.TokenA == tokenA && farm.TokenB == tokenB) || (farm.TokenA == tokenB && farm.TokenB == tokenA) {
			return farm, true
		}
	}
	return Farm{}, false
}

// Units scales a whole-token amount by decimals.
func Units(amount int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, big.NewInt(amount))
}

// Ether is n whole units of the native currency.
func Ether(n int64) *big.Int {
	return Units(n, 18)
}
