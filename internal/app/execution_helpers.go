package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/execution/planner"
	execsigner "github.com/ggonzalez94/sushi-wallet/internal/execution/signer"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
)

// actionResult is returned by every command that executes an action.
type actionResult struct {
	Action   execution.Action    `json:"action"`
	Wallet   *model.WalletInfo   `json:"wallet,omitempty"`
	Position *model.FarmPosition `json:"position,omitempty"`
}

func (s *runtimeState) newSigner() (execsigner.Signer, error) {
	source := strings.ToLower(strings.TrimSpace(s.settings.KeySource))
	override := ""
	if source == execsigner.KeySourceDev {
		accounts := network.DevAccounts()
		if s.settings.DevAccount < 0 || s.settings.DevAccount >= len(accounts) {
			return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("--dev-account must be between 0 and %d", len(accounts)-1))
		}
		override = network.DevKeyHex(s.settings.DevAccount)
	}
	txSigner, err := execsigner.NewLocalSignerFromInputs(source, override)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeSigner, "load signer", err)
	}
	return txSigner, nil
}

func (s *runtimeState) planBase(txSigner execsigner.Signer) planner.Base {
	return planner.Base{ChainID: s.chainID(), Sender: txSigner.Address(), Simulate: s.settings.Simulate}
}

// execute persists action as planned and runs it against the session chain.
func (s *runtimeState) execute(ctx context.Context, net *network.Network, action *execution.Action, txSigner execsigner.Signer) error {
	if err := s.ensureActionStore(); err != nil {
		return err
	}
	if err := s.actionStore.Save(*action); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "persist planned action", err)
	}
	opts := execution.DefaultExecuteOptions()
	opts.Simulate = s.settings.Simulate && action.Constraints.Simulate
	opts.WalletFactory = net.WalletFactory
	s.logger.Info("executing action",
		zap.String("action_id", action.ActionID),
		zap.String("intent", action.IntentType),
		zap.String("from", action.FromAddress))
	return execution.NewExecutor(net.Chain, s.actionStore, s.logger).ExecuteAction(ctx, action, txSigner, opts)
}

// resolveWallet returns the wallet named by input, or the wallet owned by
// owner when input is empty.
func resolveWallet(ctx context.Context, net *network.Network, input string, owner common.Address) (common.Address, error) {
	if strings.TrimSpace(input) != "" {
		addr, err := parseAddress(input, "wallet")
		if err != nil {
			return common.Address{}, err
		}
		if class, ok := net.Chain.ClassAt(addr); !ok || class.Name != walletClassName {
			return common.Address{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("no SushiWallet at %s", addr.Hex()))
		}
		return addr, nil
	}
	addr, err := walletOf(ctx, net, owner)
	if err != nil {
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("%s has no wallet, run wallet create", owner.Hex()))
	}
	return addr, nil
}
