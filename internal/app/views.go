package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const walletClassName = wallet.ClassName

func parseAddress(input, flag string) (common.Address, error) {
	return id.ParseAddress(input, flag)
}

func amountInfo(amount *big.Int, decimals uint8) model.AmountInfo {
	if amount == nil {
		amount = new(big.Int)
	}
	return model.AmountInfo{BaseUnits: amount.String(), Decimal: id.FormatUnits(amount, decimals), Decimals: decimals}
}

func call(ctx context.Context, net *network.Network, to common.Address, method string, args ...any) ([]any, error) {
	out, err := network.NewClient(net.Chain).Call(ctx, common.Address{}, to, method, args...)
	if err != nil {
		return nil, clierr.FromLedger(fmt.Sprintf("read %s", method), err)
	}
	return out, nil
}

func walletOf(ctx context.Context, net *network.Network, owner common.Address) (common.Address, error) {
	out, err := call(ctx, net, net.WalletFactory, "userToWallet", owner)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

func nativeBalance(ctx context.Context, net *network.Network, addr common.Address) (model.TokenBalance, error) {
	balance, err := net.Chain.BalanceAt(ctx, addr, nil)
	if err != nil {
		return model.TokenBalance{}, clierr.Wrap(clierr.CodeInternal, "read balance", err)
	}
	return model.TokenBalance{Symbol: id.NativeSymbol, Amount: amountInfo(balance, 18)}, nil
}

func tokenBalance(ctx context.Context, net *network.Network, token registry.Token, owner common.Address) (model.TokenBalance, error) {
	balance, err := network.NewClient(net.Chain).TokenBalance(ctx, token.Address, owner)
	if err != nil {
		return model.TokenBalance{}, clierr.FromLedger("read "+token.Symbol+" balance", err)
	}
	return model.TokenBalance{Symbol: token.Symbol, Address: token.Address.Hex(), Amount: amountInfo(balance, token.Decimals)}, nil
}

func walletInfo(ctx context.Context, net *network.Network, addr common.Address) (model.WalletInfo, error) {
	info := model.WalletInfo{Address: addr.Hex(), Tokens: []model.TokenBalance{}}
	fields := []struct {
		method string
		dst    *string
	}{
		{"owner", &info.Owner},
		{"router", &info.Router},
		{"masterChefV1", &info.ChefV1},
		{"masterChefV2", &info.ChefV2},
	}
	for _, field := range fields {
		out, err := call(ctx, net, addr, field.method)
		if err != nil {
			return model.WalletInfo{}, err
		}
		*field.dst = out[0].(common.Address).Hex()
	}
	eth, err := nativeBalance(ctx, net, addr)
	if err != nil {
		return model.WalletInfo{}, err
	}
	info.Balance = eth.Amount
	for _, token := range net.Deployment.Tokens {
		balance, err := tokenBalance(ctx, net, token, addr)
		if err != nil {
			return model.WalletInfo{}, err
		}
		info.Tokens = append(info.Tokens, balance)
	}
	for _, farm := range net.Farms {
		position, err := farmPosition(ctx, net, addr, net.Deployment.MustToken(farm.TokenA), net.Deployment.MustToken(farm.TokenB))
		if err != nil {
			return model.WalletInfo{}, err
		}
		if position.Deployed {
			info.Positions = append(info.Positions, position)
		}
	}
	return info, nil
}

// farmPosition reads the wallet's stake in the farm of a pair along with the
// SUSHI it could harvest now.
func farmPosition(ctx context.Context, net *network.Network, walletAddr common.Address, tokenA, tokenB registry.Token) (model.FarmPosition, error) {
	position := model.FarmPosition{
		Wallet:  walletAddr.Hex(),
		TokenA:  tokenA.Symbol,
		TokenB:  tokenB.Symbol,
		Staked:  amountInfo(nil, 18),
		Pending: amountInfo(nil, 18),
	}
	if farm, ok := net.Farm(tokenA.Symbol, tokenB.Symbol); ok {
		position.Pair = farm.Pair.Hex()
	}
	out, err := call(ctx, net, walletAddr, "farmPosition", tokenA.Address, tokenB.Address)
	if err != nil {
		return model.FarmPosition{}, err
	}
	version, pid, staked := out[0].(uint8), out[1].(*big.Int), out[2].(*big.Int)
	position.Version = version
	position.PID = pid.Uint64()
	position.Staked = amountInfo(staked, 18)
	position.Deployed = staked.Sign() > 0

	chef := chefFor(net, version)
	if chef == (common.Address{}) {
		return position, nil
	}
	pending, err := call(ctx, net, chef, "pendingSushi", pid, walletAddr)
	if err != nil {
		return model.FarmPosition{}, err
	}
	position.Pending = amountInfo(pending[0].(*big.Int), 18)
	return position, nil
}

func chefFor(net *network.Network, version uint8) common.Address {
	switch version {
	case wallet.FarmV1:
		return net.Deployment.MasterChefV1
	case wallet.FarmV2:
		return net.Deployment.MasterChefV2
	default:
		return common.Address{}
	}
}

func farmInfo(ctx context.Context, net *network.Network, farm network.Farm) (model.FarmInfo, error) {
	chef := chefFor(net, farm.Version)
	info := model.FarmInfo{
		TokenA:  farm.TokenA,
		TokenB:  farm.TokenB,
		Pair:    farm.Pair.Hex(),
		Version: farm.Version,
		PID:     farm.PID,
		Chef:    chef.Hex(),
	}
	pid := new(big.Int).SetUint64(farm.PID)
	out, err := call(ctx, net, chef, "poolInfo", pid)
	if err != nil {
		return model.FarmInfo{}, err
	}
	if farm.Version == wallet.FarmV1 {
		info.AllocPoint = out[1].(*big.Int).String()
	} else {
		info.AllocPoint = new(big.Int).SetUint64(out[2].(uint64)).String()
	}
	staked, err := network.NewClient(net.Chain).TokenBalance(ctx, farm.Pair, chef)
	if err != nil {
		return model.FarmInfo{}, clierr.FromLedger("read staked LP", err)
	}
	info.TotalStakedLP = staked.String()
	return info, nil
}

func networkInfo(ctx context.Context, net *network.Network, statePath string) (model.NetworkInfo, error) {
	header, err := net.Chain.HeaderByNumber(ctx, nil)
	if err != nil {
		return model.NetworkInfo{}, clierr.Wrap(clierr.CodeInternal, "read head", err)
	}
	chainID, _ := net.Chain.ChainID(ctx)
	d := net.Deployment
	info := model.NetworkInfo{
		ChainID:       chainID.Int64(),
		BlockNumber:   header.Number.Uint64(),
		Timestamp:     header.Time,
		StatePath:     statePath,
		SushiFactory:  d.SushiFactory.Hex(),
		SushiRouter:   d.SushiRouter.Hex(),
		MasterChefV1:  d.MasterChefV1.Hex(),
		MasterChefV2:  d.MasterChefV2.Hex(),
		WalletFactory: net.WalletFactory.Hex(),
		Tokens:        []model.TokenInfo{},
		Farms:         []model.FarmInfo{},
	}
	out, err := call(ctx, net, net.WalletFactory, "walletsLength")
	if err != nil {
		return model.NetworkInfo{}, err
	}
	info.Wallets = out[0].(*big.Int).Uint64()
	for _, token := range d.Tokens {
		supply, err := call(ctx, net, token.Address, "totalSupply")
		if err != nil {
			return model.NetworkInfo{}, err
		}
		info.Tokens = append(info.Tokens, model.TokenInfo{
			Symbol:      token.Symbol,
			Name:        token.Name,
			Address:     token.Address.Hex(),
			TotalSupply: amountInfo(supply[0].(*big.Int), token.Decimals),
		})
	}
	for _, farm := range net.Farms {
		fi, err := farmInfo(ctx, net, farm)
		if err != nil {
			return model.NetworkInfo{}, err
		}
		info.Farms = append(info.Farms, fi)
	}
	return info, nil
}
