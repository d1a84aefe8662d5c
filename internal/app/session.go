package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
	"github.com/ggonzalez94/sushi-wallet/internal/statestore"
)

// session holds the state lock and the chain restored from it for the
// lifetime of one command.
type session struct {
	store *statestore.Store
	net   *network.Network
	fresh bool
}

func (ss *session) close() {
	if ss.store != nil {
		_ = ss.store.Close()
	}
}

func (s *runtimeState) openState(ctx context.Context) (*session, error) {
	if s.session != nil {
		return s.session, nil
	}
	store, err := statestore.Open(s.settings.StatePath, s.settings.StateLockPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "open chain state", err)
	}
	if err := store.Lock(ctx, s.settings.Timeout); err != nil {
		_ = store.Close()
		if errors.Is(err, statestore.ErrLocked) {
			return nil, clierr.Wrap(clierr.CodeStateLocked, "acquire chain state lock", err)
		}
		return nil, clierr.Wrap(clierr.CodeInternal, "acquire chain state lock", err)
	}
	s.session = &session{store: store}
	return s.session, nil
}

// loadNetwork restores the persisted chain, running genesis when nothing has
// been saved yet.
func (s *runtimeState) loadNetwork(ctx context.Context) (*network.Network, error) {
	sess, err := s.openState(ctx)
	if err != nil {
		return nil, err
	}
	if sess.net != nil {
		return sess.net, nil
	}
	snap, ok, err := sess.store.Load(statestore.DefaultName)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "read chain state", err)
	}
	if !ok {
		s.logger.Info("no saved chain state, running genesis", zap.String("path", s.settings.StatePath))
		net, err := network.New(ctx, s.settings.Chain, s.settings.Deployment, s.logger)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "run genesis", err)
		}
		sess.net, sess.fresh = net, true
	} else {
		if snap.ChainID != s.chainID() {
			return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("chain state was created for chain %d but chain %d is configured, run network init --reset", snap.ChainID, s.chainID()))
		}
		chain := network.NewChain(s.settings.Chain, s.logger)
		if err := chain.Restore(snap.Dump); err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "restore chain state", err)
		}
		sess.net = network.Attach(chain, snap.Deployment)
		s.logger.Debug("restored chain state", zap.Uint64("block", snap.BlockNumber))
	}
	s.lastBlock, _ = sess.net.Chain.BlockNumber(ctx)
	return sess.net, nil
}

// commit writes the session chain back to the state store.
func (s *runtimeState) commit(ctx context.Context) error {
	sess := s.session
	if sess == nil || sess.net == nil {
		return nil
	}
	head, err := sess.net.Chain.BlockNumber(ctx)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "read head", err)
	}
	s.lastBlock = head
	err = sess.store.Save(statestore.Snapshot{
		Name:       statestore.DefaultName,
		ChainID:    s.chainID(),
		Deployment: sess.net.Deployment,
		Dump:       sess.net.Chain.Export(),
	})
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "persist chain state", err)
	}
	sess.fresh = false
	s.logger.Debug("persisted chain state", zap.Uint64("block", head))
	return nil
}

type chainFn func(ctx context.Context, net *network.Network) (any, error)

// runOnChain loads the chain, runs fn and renders its result. State is written
// back after mutating commands and after an implicit genesis, also when fn
// fails so that blocks mined before the failure are kept.
func (s *runtimeState) runOnChain(cmd *cobra.Command, fn chainFn) error {
	ctx, cancel := s.commandContext()
	defer cancel()
	net, err := s.loadNetwork(ctx)
	if err != nil {
		return err
	}
	data, runErr := fn(ctx, net)
	if isMutating(cmd) || s.session.fresh {
		if err := s.commit(ctx); err != nil && runErr == nil {
			runErr = err
		}
	} else {
		s.lastBlock, _ = net.Chain.BlockNumber(ctx)
	}
	if runErr != nil {
		return runErr
	}
	return s.emitSuccess(trimRootPath(cmd.CommandPath()), data, s.lastWarnings)
}

func (s *runtimeState) ensureActionStore() error {
	if s.actionStore != nil {
		return nil
	}
	store, err := execution.OpenStore(s.settings.ActionStorePath, s.settings.ActionLockPath)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "open action store", err)
	}
	s.actionStore = store
	return nil
}
