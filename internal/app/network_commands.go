package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
	"github.com/ggonzalez94/sushi-wallet/internal/statestore"
)

func (s *runtimeState) newNetworkCommand() *cobra.Command {
	root := &cobra.Command{Use: "network", Short: "Simulated mainnet fork lifecycle"}

	var reset bool
	initCmd := mutating(&cobra.Command{
		Use:   "init",
		Short: "Run genesis and persist the chain (no-op when state exists unless --reset)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			sess, err := s.openState(ctx)
			if err != nil {
				return err
			}
			if reset {
				if err := sess.store.Delete(statestore.DefaultName); err != nil {
					return clierr.Wrap(clierr.CodeInternal, "reset chain state", err)
				}
				s.logger.Info("chain state reset", zap.String("path", s.settings.StatePath))
			}
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				if !s.session.fresh {
					s.lastWarnings = append(s.lastWarnings, "chain state already initialized, pass --reset to start over")
				}
				return networkInfo(ctx, net, s.settings.StatePath)
			})
		},
	})
	initCmd.Flags().BoolVar(&reset, "reset", false, "Discard the saved chain and run genesis again")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show chain head, contract addresses, tokens and farms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				return networkInfo(ctx, net, s.settings.StatePath)
			})
		},
	}

	root.AddCommand(initCmd)
	root.AddCommand(infoCmd)
	return root
}

func (s *runtimeState) newAccountsCommand() *cobra.Command {
	root := &cobra.Command{Use: "accounts", Short: "Funded dev accounts"}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List dev accounts with balances, nonces and wallets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				accounts := network.DevAccounts()
				items := make([]model.AccountInfo, 0, len(accounts))
				for i, account := range accounts {
					eth, err := nativeBalance(ctx, net, account.Address)
					if err != nil {
						return nil, err
					}
					nonce, err := net.Chain.NonceAt(ctx, account.Address, nil)
					if err != nil {
						return nil, clierr.Wrap(clierr.CodeInternal, "read nonce", err)
					}
					walletAddr, err := walletOf(ctx, net, account.Address)
					if err != nil {
						return nil, err
					}
					item := model.AccountInfo{Index: i, Address: account.Address.Hex(), Balance: eth.Amount, Nonce: nonce}
					if walletAddr != (common.Address{}) {
						item.Wallet = walletAddr.Hex()
					}
					items = append(items, item)
				}
				return items, nil
			})
		},
	}
	root.AddCommand(listCmd)
	return root
}
