package network

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/amm"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/masterchef"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

// Farm parameters seeded at genesis.
var (
	SushiPerBlock    = Ether(100)
	V1PoolAlloc      = big.NewInt(1000)
	V1DummyAlloc     = big.NewInt(500)
	V2PoolAlloc      = big.NewInt(100)
	V2SushiReserve   = Ether(1_000_000)
	DevAccountFunds  = Ether(10_000)
	masterPid        = big.NewInt(1)
	operatorEthFunds = Ether(1_000)
)

type poolSeed struct {
	tokenA, tokenB   string
	amountA, amountB int64
}

var (
	usdcWethSeed = poolSeed{tokenA: "USDC", tokenB: "WETH", amountA: 20_000_000, amountB: 10_000}
	cvxWethSeed  = poolSeed{tokenA: "CVX", tokenB: "WETH", amountA: 5_000_000, amountB: 10_000}
)

type whaleSeed struct {
	account common.Address
	token   string
	amount  int64
}

var whaleSeeds = []whaleSeed{
	{account: registry.Binance8, token: "USDC", amount: 100_000_000},
	{account: registry.Binance8, token: "CVX", amount: 10_000_000},
	{account: registry.AaveWETH, token: "WETH", amount: 1_000},
}

// Genesis deploys the Sushi stack at the addresses of d and seeds liquidity,
// farms, whales and dev accounts. chain must be empty.
func Genesis(ctx context.Context, chain *ledger.Chain, d registry.Deployment) error {
	op := &operator{client: NewClient(chain), from: Operator}
	chain.SetBalance(Operator, operatorEthFunds)
	chain.Impersonate(Operator)
	defer chain.StopImpersonating(Operator)

	// The dummy token must be the operator's first deployment so its address
	// stays derivable from the operator nonce.
	dummy, err := chain.Deploy(ctx, Operator, erc20.ClassName, nil, "MasterChefV2 Dummy", "MCV2-DUMMY", uint8(18), common.Address{})
	if err != nil {
		return fmt.Errorf("deploy dummy token: %w", err)
	}
	for _, token := range d.Tokens {
		at := token.Address
		if _, err := chain.Deploy(ctx, Operator, erc20.ClassName, &at, token.Name, token.Symbol, token.Decimals, common.Address{}); err != nil {
			return fmt.Errorf("deploy %s: %w", token.Symbol, err)
		}
	}
	weth := d.MustToken("WETH").Address
	sushi := d.MustToken("SUSHI").Address

	factory := d.SushiFactory
	if _, err := chain.Deploy(ctx, Operator, amm.FactoryClassName, &factory); err != nil {
		return fmt.Errorf("deploy sushi factory: %w", err)
	}
	router := d.SushiRouter
	if _, err := chain.Deploy(ctx, Operator, amm.RouterClassName, &router, factory, weth); err != nil {
		return fmt.Errorf("deploy sushi router: %w", err)
	}

	usdcWeth, err := seedPool(ctx, op, d, usdcWethSeed)
	if err != nil {
		return err
	}
	cvxWeth, err := seedPool(ctx, op, d, cvxWethSeed)
	if err != nil {
		return err
	}

	chefV1 := d.MasterChefV1
	if _, err := chain.Deploy(ctx, Operator, masterchef.V1ClassName, &chefV1, sushi, Operator, SushiPerBlock, new(big.Int), new(big.Int)); err != nil {
		return fmt.Errorf("deploy masterchef v1: %w", err)
	}
	// V2 pays harvests from its SUSHI balance, so it gets a reserve before
	// V1 becomes the only issuer.
	if err := op.call(ctx, sushi, "mint", d.MasterChefV2, V2SushiReserve); err != nil {
		return err
	}
	if err := op.call(ctx, sushi, "transferOwnership", chefV1); err != nil {
		return err
	}
	if err := op.call(ctx, chefV1, "add", V1PoolAlloc, usdcWeth, false); err != nil {
		return err
	}
	if err := op.call(ctx, chefV1, "add", V1DummyAlloc, dummy, false); err != nil {
		return err
	}

	chefV2 := d.MasterChefV2
	if _, err := chain.Deploy(ctx, Operator, masterchef.V2ClassName, &chefV2, chefV1, sushi, masterPid); err != nil {
		return fmt.Errorf("deploy masterchef v2: %w", err)
	}
	if err := op.call(ctx, dummy, "mint", Operator, common.Big1); err != nil {
		return err
	}
	if err := op.call(ctx, dummy, "approve", chefV2, common.Big1); err != nil {
		return err
	}
	if err := op.call(ctx, chefV2, "init", dummy); err != nil {
		return err
	}
	if err := op.call(ctx, chefV2, "add", V2PoolAlloc, cvxWeth, common.Address{}); err != nil {
		return err
	}

	if err := stakeHalf(ctx, op, usdcWeth, chefV1, func(amount *big.Int) error {
		return op.call(ctx, chefV1, "deposit", common.Big0, amount)
	}); err != nil {
		return err
	}
	if err := stakeHalf(ctx, op, cvxWeth, chefV2, func(amount *big.Int) error {
		return op.call(ctx, chefV2, "deposit", common.Big0, amount, Operator)
	}); err != nil {
		return err
	}

	for _, seed := range whaleSeeds {
		token := d.MustToken(seed.token)
		if err := op.call(ctx, token.Address, "mint", seed.account, Units(seed.amount, token.Decimals)); err != nil {
			return fmt.Errorf("fund whale %s: %w", seed.account.Hex(), err)
		}
	}

	for _, account := range DevAccounts() {
		chain.SetBalance(account.Address, DevAccountFunds)
	}
	deployer := DevAccounts()[0].Address
	if _, err := chain.Deploy(ctx, deployer, wallet.FactoryClassName, nil, router, chefV1, chefV2); err != nil {
		return fmt.Errorf("deploy wallet factory: %w", err)
	}
	return nil
}

// seedPool mints both sides of the pool to the operator and adds them
// through the router, creating the pair.
func seedPool(ctx context.Context, op *operator, d registry.Deployment, seed poolSeed) (common.Address, error) {
	tokenA, tokenB := d.MustToken(seed.tokenA), d.MustToken(seed.tokenB)
	amountA, amountB := Units(seed.amountA, tokenA.Decimals), Units(seed.amountB, tokenB.Decimals)
	for _, leg := range []struct {
		token  registry.Token
		amount *big.Int
	}{{tokenA, amountA}, {tokenB, amountB}} {
		if err := op.call(ctx, leg.token.Address, "mint", op.from, leg.amount); err != nil {
			return common.Address{}, err
		}
		if err := op.call(ctx, leg.token.Address, "approve", d.SushiRouter, leg.amount); err != nil {
			return common.Address{}, err
		}
	}
	deadline := new(big.Int).Set(math.MaxBig256)
	if err := op.call(ctx, d.SushiRouter, "addLiquidity", tokenA.Address, tokenB.Address, amountA, amountB, new(big.Int), new(big.Int), op.from, deadline); err != nil {
		return common.Address{}, fmt.Errorf("seed %s/%s: %w", seed.tokenA, seed.tokenB, err)
	}
	pair, err := amm.PairFor(d.SushiFactory, tokenA.Address, tokenB.Address)
	if err != nil {
		return common.Address{}, err
	}
	return pair, nil
}

// operator submits fixture transactions as the impersonated Operator.
type operator struct {
	client *Client
	from   common.Address
}

func (o *operator) call(ctx context.Context, to common.Address, method string, args ...any) error {
	if _, err := o.client.TransactAs(ctx, o.from, to, nil, method, args...); err != nil {
		return fmt.Errorf("%s on %s: %w", method, to.Hex(), err)
	}
	return nil
}

func stakeHalf(ctx context.Context, op *operator, lp, chef common.Address, deposit func(*big.Int) error) error {
	balance, err := op.client.TokenBalance(ctx, lp, op.from)
	if err != nil {
		return err
	}
	half := new(big.Int).Rsh(balance, 1)
	if err := op.call(ctx, lp, "approve", chef, half); err != nil {
		return err
	}
	return deposit(half)
}
