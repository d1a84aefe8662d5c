package execution_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/execution/planner"
	"github.com/ggonzalez94/sushi-wallet/internal/execution/signer"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

type harness struct {
	ctx      context.Context
	net      *network.Network
	store    *execution.Store
	executor *execution.Executor
	opts     execution.ExecuteOptions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	net, err := network.New(ctx, ledger.DefaultConfig(), registry.Mainnet(), logger)
	require.NoError(t, err)
	dir := t.TempDir()
	store, err := execution.OpenStore(filepath.Join(dir, "actions.db"), filepath.Join(dir, "actions.lock"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	opts := execution.DefaultExecuteOptions()
	opts.WalletFactory = net.WalletFactory
	return &harness{ctx: ctx, net: net, store: store, executor: execution.NewExecutor(net.Chain, store, logger), opts: opts}
}

func devSigner(t *testing.T, i int) *signer.LocalSigner {
	t.Helper()
	s, err := signer.NewLocalSignerFromInputs(signer.KeySourceDev, network.DevKeyHex(i))
	require.NoError(t, err)
	return s
}

func (h *harness) base(s signer.Signer) planner.Base {
	return planner.Base{ChainID: 31337, Sender: s.Address(), Simulate: h.opts.Simulate}
}

func (h *harness) createWallet(t *testing.T, owner signer.Signer) common.Address {
	t.Helper()
	action, err := planner.BuildCreateWalletAction(planner.CreateWalletRequest{Base: h.base(owner), Factory: h.net.WalletFactory})
	require.NoError(t, err)
	require.NoError(t, h.executor.ExecuteAction(h.ctx, &action, owner, h.opts))
	out, err := network.NewClient(h.net.Chain).Call(h.ctx, owner.Address(), h.net.WalletFactory, "userToWallet", owner.Address())
	require.NoError(t, err)
	addr := out[0].(common.Address)
	require.NotEqual(t, common.Address{}, addr)
	return addr
}

func TestExecuteCreateAndDeposit(t *testing.T) {
	h := newHarness(t)
	owner := devSigner(t, 0)
	walletAddr := h.createWallet(t, owner)

	deposit, err := planner.BuildDepositAction(planner.DepositRequest{
		WalletRequest: planner.WalletRequest{Base: h.base(owner), Wallet: walletAddr},
		Amount:        network.Ether(2),
	})
	require.NoError(t, err)
	require.NoError(t, h.executor.ExecuteAction(h.ctx, &deposit, owner, h.opts))

	require.Equal(t, execution.ActionStatusCompleted, deposit.Status)
	step := deposit.Steps[0]
	require.Equal(t, execution.StepStatusConfirmed, step.Status)
	require.NotEmpty(t, step.TxHash)
	require.NotZero(t, step.BlockNumber)
	require.Equal(t, 1, step.LogCount)

	balance, err := h.net.Chain.BalanceAt(h.ctx, walletAddr, nil)
	require.NoError(t, err)
	require.Equal(t, 0, balance.Cmp(network.Ether(2)))

	stored, err := h.store.Get(deposit.ActionID)
	require.NoError(t, err)
	require.Equal(t, execution.ActionStatusCompleted, stored.Status)
	require.Equal(t, step.TxHash, stored.Steps[0].TxHash)
}

func TestExecuteNonOwnerWithdrawIsUnauthorized(t *testing.T) {
	for _, simulate := range []bool{true, false} {
		h := newHarness(t)
		h.opts.Simulate = simulate
		owner, stranger := devSigner(t, 0), devSigner(t, 2)
		walletAddr := h.createWallet(t, owner)

		action, err := planner.BuildWithdrawAction(planner.WithdrawRequest{
			WalletRequest: planner.WalletRequest{Base: h.base(stranger), Wallet: walletAddr},
			Amount:        new(big.Int),
		})
		require.NoError(t, err)
		head, err := h.net.Chain.BlockNumber(h.ctx)
		require.NoError(t, err)

		err = h.executor.ExecuteAction(h.ctx, &action, stranger, h.opts)
		cliErr, ok := clierr.As(err)
		require.True(t, ok, "expected cli error, got %v", err)
		require.Equal(t, clierr.CodeUnauthorized, cliErr.Code)

		require.Equal(t, execution.ActionStatusFailed, action.Status)
		require.Equal(t, execution.StepStatusFailed, action.Steps[0].Status)
		require.Equal(t, wallet.ReasonOnlyOwner, action.Steps[0].RevertReason)

		after, err := h.net.Chain.BlockNumber(h.ctx)
		require.NoError(t, err)
		require.Equal(t, head, after, "a reverted call must not mine a block")

		stored, err := h.store.Get(action.ActionID)
		require.NoError(t, err)
		require.Equal(t, execution.ActionStatusFailed, stored.Status)
	}
}

func TestExecuteRejectsMismatchedSigner(t *testing.T) {
	h := newHarness(t)
	owner, other := devSigner(t, 0), devSigner(t, 1)
	action, err := planner.BuildCreateWalletAction(planner.CreateWalletRequest{Base: h.base(owner), Factory: h.net.WalletFactory})
	require.NoError(t, err)
	err = h.executor.ExecuteAction(h.ctx, &action, other, h.opts)
	cliErr, ok := clierr.As(err)
	require.True(t, ok)
	require.Equal(t, clierr.CodeSigner, cliErr.Code)
}

func TestExecutePolicyRejectsForeignFactory(t *testing.T) {
	h := newHarness(t)
	owner := devSigner(t, 0)
	action, err := planner.BuildCreateWalletAction(planner.CreateWalletRequest{
		Base:    h.base(owner),
		Factory: common.HexToAddress("0x00000000000000000000000000000000000000ee"),
	})
	require.NoError(t, err)
	err = h.executor.ExecuteAction(h.ctx, &action, owner, h.opts)
	cliErr, ok := clierr.As(err)
	require.True(t, ok)
	require.Equal(t, clierr.CodeActionPlan, cliErr.Code)
	require.Equal(t, execution.ActionStatusFailed, action.Status)
}

func TestExecuteSkipsConfirmedSteps(t *testing.T) {
	h := newHarness(t)
	owner := devSigner(t, 0)
	walletAddr := h.createWallet(t, owner)

	fund, err := planner.BuildFundAction(planner.FundRequest{
		WalletRequest: planner.WalletRequest{Base: h.base(owner), Wallet: walletAddr},
		Asset:         mustAsset(t, "ETH"),
		Amount:        network.Ether(1),
	})
	require.NoError(t, err)
	require.NoError(t, h.executor.ExecuteAction(h.ctx, &fund, owner, h.opts))
	head, err := h.net.Chain.BlockNumber(h.ctx)
	require.NoError(t, err)

	require.NoError(t, h.executor.ExecuteAction(h.ctx, &fund, owner, h.opts))
	after, err := h.net.Chain.BlockNumber(h.ctx)
	require.NoError(t, err)
	require.Equal(t, head, after)

	balance, err := h.net.Chain.BalanceAt(h.ctx, walletAddr, nil)
	require.NoError(t, err)
	require.Equal(t, 0, balance.Cmp(network.Ether(1)))
}

func mustAsset(t *testing.T, symbol string) id.Asset {
	t.Helper()
	asset, err := id.ParseAsset(symbol, registry.Mainnet(), 31337)
	require.NoError(t, err)
	return asset
}
