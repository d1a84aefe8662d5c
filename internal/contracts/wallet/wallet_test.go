package wallet_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/masterchef"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

type WalletSuite struct {
	suite.Suite
	ctx      context.Context
	net      *network.Network
	client   *network.Client
	owner    network.Account
	stranger network.Account
	wallet   common.Address
}

func TestWalletSuite(t *testing.T) {
	suite.Run(t, new(WalletSuite))
}

func (s *WalletSuite) SetupTest() {
	s.ctx = context.Background()
	net, err := network.New(s.ctx, ledger.DefaultConfig(), registry.Mainnet(), zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	s.net = net
	s.client = network.NewClient(net.Chain)
	accounts := network.DevAccounts()
	s.owner, s.stranger = accounts[0], accounts[2]

	_, err = s.client.Transact(s.ctx, s.owner.Key, net.WalletFactory, nil, "createWallet")
	s.Require().NoError(err)
	out, err := s.client.Call(s.ctx, s.owner.Address, net.WalletFactory, "userToWallet", s.owner.Address)
	s.Require().NoError(err)
	s.wallet = out[0].(common.Address)
}

func (s *WalletSuite) balance(addr common.Address) *big.Int {
	balance, err := s.net.Chain.BalanceAt(s.ctx, addr, nil)
	s.Require().NoError(err)
	return balance
}

func (s *WalletSuite) tokenBalance(symbol string, owner common.Address) *big.Int {
	balance, err := s.client.TokenBalance(s.ctx, s.net.Deployment.MustToken(symbol).Address, owner)
	s.Require().NoError(err)
	return balance
}

func (s *WalletSuite) requireRevert(err error, reason string) {
	s.Require().Error(err)
	got, ok := ledger.RevertReason(err)
	s.Require().True(ok, "expected revert, got %v", err)
	s.Require().Equal(reason, got)
}

// fund moves tokens from the whales into the wallet the way a fork test would.
func (s *WalletSuite) fund(amounts map[string]*big.Int) {
	chain := s.net.Chain
	for _, whale := range registry.Whales() {
		amount, ok := amounts[whale.Token]
		if !ok {
			continue
		}
		if s.balance(whale.Account).Sign() == 0 {
			chain.SetBalance(whale.Account, network.Ether(1))
		}
		chain.Impersonate(whale.Account)
		token := s.net.Deployment.MustToken(whale.Token).Address
		_, err := s.client.TransactAs(s.ctx, whale.Account, token, nil, "transfer", s.wallet, amount)
		s.Require().NoError(err)
		chain.StopImpersonating(whale.Account)
	}
}

func (s *WalletSuite) TestCreateWalletBindsOwner() {
	s.Require().NotEqual(common.Address{}, s.wallet)
	out, err := s.client.Call(s.ctx, s.owner.Address, s.wallet, "owner")
	s.Require().NoError(err)
	s.Require().Equal(s.owner.Address, out[0].(common.Address))

	out, err = s.client.Call(s.ctx, s.owner.Address, s.net.WalletFactory, "userToWallet", s.stranger.Address)
	s.Require().NoError(err)
	s.Require().Equal(common.Address{}, out[0].(common.Address))

	out, err = s.client.Call(s.ctx, s.owner.Address, s.wallet, "router")
	s.Require().NoError(err)
	s.Require().Equal(s.net.Deployment.SushiRouter, out[0].(common.Address))
}

func (s *WalletSuite) TestCreateWalletTwiceReverts() {
	head, err := s.net.Chain.BlockNumber(s.ctx)
	s.Require().NoError(err)
	_, err = s.client.Transact(s.ctx, s.owner.Key, s.net.WalletFactory, nil, "createWallet")
	s.requireRevert(err, wallet.ReasonWalletExists)

	after, err := s.net.Chain.BlockNumber(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(head, after)

	out, err := s.client.Call(s.ctx, s.owner.Address, s.net.WalletFactory, "walletsLength")
	s.Require().NoError(err)
	s.Require().Equal(int64(1), out[0].(*big.Int).Int64())
}

func (s *WalletSuite) TestWalletCreatedEvent() {
	logs, err := s.net.Chain.FilterLogs(s.ctx, ethereum.FilterQuery{
		Addresses: []common.Address{s.net.WalletFactory},
		Topics: [][]common.Hash{
			{wallet.FactoryABI.Events["WalletCreated"].ID},
			{common.BytesToHash(s.owner.Address.Bytes())},
		},
	})
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Require().Equal(s.wallet, common.BytesToAddress(logs[0].Data))
}

func (s *WalletSuite) TestDepositAndWithdraw() {
	one := network.Ether(1)
	_, err := s.client.Transact(s.ctx, s.owner.Key, s.wallet, one, "deposit")
	s.Require().NoError(err)
	s.Require().Equal(one, s.balance(s.wallet))

	before := s.balance(s.owner.Address)
	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "withdraw", one)
	s.Require().NoError(err)
	s.Require().Zero(s.balance(s.wallet).Sign())
	s.Require().Equal(new(big.Int).Add(before, one), s.balance(s.owner.Address))
}

func (s *WalletSuite) TestNonOwnerWithdrawReverts() {
	one := network.Ether(1)
	_, err := s.client.Transact(s.ctx, s.owner.Key, s.wallet, one, "deposit")
	s.Require().NoError(err)

	_, err = s.client.Transact(s.ctx, s.stranger.Key, s.wallet, nil, "withdraw", one)
	s.requireRevert(err, wallet.ReasonOnlyOwner)
	s.Require().Equal(one, s.balance(s.wallet))
}

func (s *WalletSuite) TestNonOwnerWithdrawBeyondBalanceIsUnauthorized() {
	_, err := s.client.Transact(s.ctx, s.owner.Key, s.wallet, network.Ether(1), "deposit")
	s.Require().NoError(err)

	_, err = s.client.Transact(s.ctx, s.stranger.Key, s.wallet, nil, "withdraw", network.Ether(5))
	s.requireRevert(err, wallet.ReasonOnlyOwner)
	s.Require().Equal(network.Ether(1), s.balance(s.wallet))
}

func (s *WalletSuite) TestWithdrawMoreThanBalanceReverts() {
	_, err := s.client.Transact(s.ctx, s.owner.Key, s.wallet, network.Ether(1), "deposit")
	s.Require().NoError(err)
	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "withdraw", network.Ether(2))
	s.requireRevert(err, wallet.ReasonInsufficientBalance)
	s.Require().Equal(network.Ether(1), s.balance(s.wallet))
}

func (s *WalletSuite) TestAnyoneCanDepositAndReceive() {
	_, err := s.client.Transact(s.ctx, s.stranger.Key, s.wallet, network.Ether(1), "deposit")
	s.Require().NoError(err)
	receipt, err := s.client.Transact(s.ctx, s.stranger.Key, s.wallet, network.Ether(2), "")
	s.Require().NoError(err)
	s.Require().Len(receipt.Logs, 1)
	s.Require().Equal(wallet.ABI.Events["Deposited"].ID, receipt.Logs[0].Topics[0])
	s.Require().Equal(network.Ether(3), s.balance(s.wallet))
}

func (s *WalletSuite) TestTransferETHAmount() {
	_, err := s.client.Transact(s.ctx, s.owner.Key, s.wallet, network.Ether(3), "deposit")
	s.Require().NoError(err)
	recipient := crypto.CreateAddress(s.owner.Address, 1000)

	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "transferETHAmount", recipient, network.Ether(2))
	s.Require().NoError(err)
	s.Require().Equal(network.Ether(2), s.balance(recipient))
	s.Require().Equal(network.Ether(1), s.balance(s.wallet))

	_, err = s.client.Transact(s.ctx, s.stranger.Key, s.wallet, nil, "transferETHAmount", recipient, network.Ether(1))
	s.requireRevert(err, wallet.ReasonOnlyOwner)
}

func (s *WalletSuite) TestYieldFarmingAcrossBothChefs() {
	d := s.net.Deployment
	usdc, weth, cvx, sushi := d.MustToken("USDC").Address, d.MustToken("WETH").Address, d.MustToken("CVX").Address, d.MustToken("SUSHI").Address
	s.fund(map[string]*big.Int{
		"USDC": network.Units(10_000, 6),
		"WETH": network.Ether(10),
		"CVX":  network.Ether(1_000),
	})
	s.Require().Zero(s.tokenBalance("SUSHI", s.wallet).Sign())

	head, err := s.net.Chain.HeaderByNumber(s.ctx, nil)
	s.Require().NoError(err)
	deadline := new(big.Int).SetUint64(head.Time * 2)
	startBlock := new(big.Int).Add(head.Number, common.Big1)

	// CVX/WETH is staked in MasterChef V2.
	cvxBalance := s.tokenBalance("CVX", s.wallet)
	wethBalance := s.tokenBalance("WETH", s.wallet)
	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "executeYieldFarming",
		cvx, weth, cvxBalance, new(big.Int).Rsh(wethBalance, 1), deadline)
	s.Require().NoError(err)

	// USDC/WETH is staked in MasterChef V1.
	usdcBalance := s.tokenBalance("USDC", s.wallet)
	wethBalance = s.tokenBalance("WETH", s.wallet)
	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "executeYieldFarming",
		usdc, weth, usdcBalance, new(big.Int).Rsh(wethBalance, 1), deadline)
	s.Require().NoError(err)

	v2Deposit := masterchef.V2ABI.Events["Deposit"]
	v1Deposit := masterchef.V1ABI.Events["Deposit"]
	s.Require().Equal("Deposit(address,uint256,uint256,address)", v2Deposit.Sig)
	s.Require().Equal("Deposit(address,uint256,uint256)", v1Deposit.Sig)
	walletTopic := common.BytesToHash(s.wallet.Bytes())
	for _, probe := range []struct {
		chef  common.Address
		topic common.Hash
	}{
		{d.MasterChefV2, v2Deposit.ID},
		{d.MasterChefV1, v1Deposit.ID},
	} {
		logs, err := s.net.Chain.FilterLogs(s.ctx, ethereum.FilterQuery{
			FromBlock: startBlock,
			Addresses: []common.Address{probe.chef},
			Topics:    [][]common.Hash{{probe.topic}, {walletTopic}},
		})
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		s.Require().Positive(new(big.Int).SetBytes(logs[0].Data).Sign())
	}

	v1Version, v1Pid, v1Amount := s.position(usdc, weth)
	s.Require().Equal(wallet.FarmV1, v1Version)
	s.Require().Zero(v1Pid.Sign())
	s.Require().Positive(v1Amount.Sign())
	v2Version, _, v2Amount := s.position(cvx, weth)
	s.Require().Equal(wallet.FarmV2, v2Version)
	s.Require().Positive(v2Amount.Sign())

	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "withdrawFromYieldFarming", usdc, weth, v1Amount)
	s.Require().NoError(err)
	afterV1 := s.tokenBalance("SUSHI", s.wallet)
	s.Require().Positive(afterV1.Sign())

	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "withdrawFromYieldFarming", cvx, weth, v2Amount)
	s.Require().NoError(err)
	afterV2 := s.tokenBalance("SUSHI", s.wallet)
	s.Require().Equal(1, afterV2.Cmp(afterV1))

	_, _, left := s.position(cvx, weth)
	s.Require().Zero(left.Sign())
	s.Require().Positive(s.tokenBalance("CVX", s.wallet).Sign())

	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "withdrawERC20", sushi, afterV2)
	s.Require().NoError(err)
	s.Require().Equal(afterV2, s.tokenBalance("SUSHI", s.owner.Address))
	s.Require().Zero(s.tokenBalance("SUSHI", s.wallet).Sign())
}

func (s *WalletSuite) position(tokenA, tokenB common.Address) (uint8, *big.Int, *big.Int) {
	out, err := s.client.Call(s.ctx, s.owner.Address, s.wallet, "farmPosition", tokenA, tokenB)
	s.Require().NoError(err)
	return out[0].(uint8), out[1].(*big.Int), out[2].(*big.Int)
}

func (s *WalletSuite) TestExpiredDeadlineRollsBack() {
	d := s.net.Deployment
	s.fund(map[string]*big.Int{"USDC": network.Units(1_000, 6), "WETH": network.Ether(1)})
	head, err := s.net.Chain.HeaderByNumber(s.ctx, nil)
	s.Require().NoError(err)

	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "executeYieldFarming",
		d.MustToken("USDC").Address, d.MustToken("WETH").Address, network.Units(1_000, 6), network.Ether(1), new(big.Int).SetUint64(head.Time))
	s.requireRevert(err, "UniswapV2Router: EXPIRED")
	s.Require().Equal(network.Units(1_000, 6), s.tokenBalance("USDC", s.wallet))

	out, err := s.client.Call(s.ctx, s.owner.Address, d.MustToken("USDC").Address, "allowance", s.wallet, d.SushiRouter)
	s.Require().NoError(err)
	s.Require().Zero(out[0].(*big.Int).Sign())
}

func (s *WalletSuite) TestYieldFarmingRequiresOwnerAndFarm() {
	d := s.net.Deployment
	usdc, cvx, sushi := d.MustToken("USDC").Address, d.MustToken("CVX").Address, d.MustToken("SUSHI").Address
	_, err := s.client.Transact(s.ctx, s.stranger.Key, s.wallet, nil, "executeYieldFarming", usdc, cvx, common.Big1, common.Big1, common.Big1)
	s.requireRevert(err, wallet.ReasonOnlyOwner)

	_, err = s.client.Transact(s.ctx, s.owner.Key, s.wallet, nil, "withdrawFromYieldFarming", usdc, sushi, common.Big1)
	s.requireRevert(err, wallet.ReasonNoFarm)

	version, _, _ := s.position(usdc, sushi)
	s.Require().Equal(wallet.FarmNone, version)
}

func TestWithdrawERC20OnlyOwner(t *testing.T) {
	ctx := context.Background()
	net, err := network.New(ctx, ledger.DefaultConfig(), registry.Mainnet(), nil)
	require.NoError(t, err)
	client := network.NewClient(net.Chain)
	owner, stranger := network.DevAccounts()[1], network.DevAccounts()[2]
	_, err = client.Transact(ctx, owner.Key, net.WalletFactory, nil, "createWallet")
	require.NoError(t, err)
	out, err := client.Call(ctx, owner.Address, net.WalletFactory, "userToWallet", owner.Address)
	require.NoError(t, err)
	addr := out[0].(common.Address)

	cvx := net.Deployment.MustToken("CVX").Address
	net.Chain.Impersonate(registry.Binance8)
	net.Chain.SetBalance(registry.Binance8, network.Ether(1))
	_, err = client.TransactAs(ctx, registry.Binance8, cvx, nil, "transfer", addr, network.Ether(5))
	require.NoError(t, err)

	_, err = client.Transact(ctx, stranger.Key, addr, nil, "withdrawERC20", cvx, network.Ether(5))
	reason, ok := ledger.RevertReason(err)
	require.True(t, ok)
	require.Equal(t, wallet.ReasonOnlyOwner, reason)

	_, err = client.Transact(ctx, owner.Key, addr, nil, "withdrawERC20", cvx, network.Ether(6))
	reason, _ = ledger.RevertReason(err)
	require.Equal(t, "ERC20: transfer amount exceeds balance", reason)

	_, err = client.Transact(ctx, owner.Key, addr, nil, "withdrawERC20", cvx, network.Ether(5))
	require.NoError(t, err)
	balance, err := client.TokenBalance(ctx, cvx, owner.Address)
	require.NoError(t, err)
	require.Equal(t, network.Ether(5), balance)
}
