package app

import (
	"context"
	"math/big"

	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/execution/planner"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const defaultDeadlineSeconds = 600

// pairFlags names the two tokens of a farm.
type pairFlags struct {
	tokenA string
	tokenB string
}

func (p *pairFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.tokenA, "token-a", "", "First token of the pair")
	cmd.Flags().StringVar(&p.tokenB, "token-b", "", "Second token of the pair")
	_ = cmd.MarkFlagRequired("token-a")
	_ = cmd.MarkFlagRequired("token-b")
}

func (p pairFlags) resolve(net *network.Network, chainID int64) (id.Asset, id.Asset, error) {
	a, err := id.ParseAsset(p.tokenA, net.Deployment, chainID)
	if err != nil {
		return id.Asset{}, id.Asset{}, err
	}
	b, err := id.ParseAsset(p.tokenB, net.Deployment, chainID)
	if err != nil {
		return id.Asset{}, id.Asset{}, err
	}
	return a, b, nil
}

func tokenOf(net *network.Network, asset id.Asset) registry.Token {
	if token, ok := net.Deployment.TokenByAddress(asset.Address); ok {
		return token
	}
	return registry.Token{Symbol: asset.Symbol, Address: asset.Address, Decimals: asset.Decimals}
}

func (s *runtimeState) newFarmCommand() *cobra.Command {
	root := &cobra.Command{Use: "farm", Short: "Provide liquidity and stake it in MasterChef through the wallet"}

	var enterWallet string
	var enterPair pairFlags
	var amountA, amountB amountFlags
	var deadlineSeconds uint64
	enterCmd := mutating(&cobra.Command{
		Use:   "enter",
		Short: "Add liquidity for a pair and stake the LP tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deadlineSeconds == 0 {
				return clierr.New(clierr.CodeUsage, "--deadline-seconds must be positive")
			}
			return s.farmAction(cmd, enterWallet, enterPair, func(ctx context.Context, net *network.Network, req planner.WalletRequest, a, b id.Asset) (execution.Action, error) {
				valueA, err := amountA.parse(a.Decimals)
				if err != nil {
					return execution.Action{}, err
				}
				valueB, err := amountB.parse(b.Decimals)
				if err != nil {
					return execution.Action{}, err
				}
				head, err := net.Chain.HeaderByNumber(ctx, nil)
				if err != nil {
					return execution.Action{}, clierr.Wrap(clierr.CodeInternal, "read head", err)
				}
				return planner.BuildEnterFarmAction(planner.EnterFarmRequest{
					WalletRequest: req,
					TokenA:        a,
					TokenB:        b,
					AmountA:       valueA,
					AmountB:       valueB,
					Deadline:      head.Time + deadlineSeconds,
				})
			})
		},
	})
	enterCmd.Flags().StringVar(&enterWallet, "wallet", "", "Wallet address (default: wallet of the signer)")
	enterPair.bind(enterCmd)
	amountA.bind(enterCmd, "amount-a", "token A base units")
	amountB.bind(enterCmd, "amount-b", "token B base units")
	enterCmd.Flags().Uint64Var(&deadlineSeconds, "deadline-seconds", defaultDeadlineSeconds, "Seconds after the head block timestamp before the router rejects the trade")

	var exitWallet string
	var exitPair pairFlags
	var lpAmount amountFlags
	var exitAll bool
	exitCmd := mutating(&cobra.Command{
		Use:   "exit",
		Short: "Unstake LP tokens, harvest SUSHI and remove the liquidity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.farmAction(cmd, exitWallet, exitPair, func(ctx context.Context, net *network.Network, req planner.WalletRequest, a, b id.Asset) (execution.Action, error) {
				var value *big.Int
				if exitAll {
					if lpAmount.base != "" || lpAmount.decimal != "" {
						return execution.Action{}, clierr.New(clierr.CodeUsage, "--all cannot be combined with --lp-amount")
					}
					position, err := farmPosition(ctx, net, req.Wallet, tokenOf(net, a), tokenOf(net, b))
					if err != nil {
						return execution.Action{}, err
					}
					if !position.Deployed {
						return execution.Action{}, clierr.New(clierr.CodeNotFound, "wallet has no staked LP for "+a.Symbol+"/"+b.Symbol)
					}
					value, _ = new(big.Int).SetString(position.Staked.BaseUnits, 10)
				} else {
					parsed, err := lpAmount.parse(18)
					if err != nil {
						return execution.Action{}, err
					}
					value = parsed
				}
				return planner.BuildExitFarmAction(planner.ExitFarmRequest{WalletRequest: req, TokenA: a, TokenB: b, LPAmount: value})
			})
		},
	})
	exitCmd.Flags().StringVar(&exitWallet, "wallet", "", "Wallet address (default: wallet of the signer)")
	exitPair.bind(exitCmd)
	lpAmount.bind(exitCmd, "lp-amount", "LP base units")
	exitCmd.Flags().BoolVar(&exitAll, "all", false, "Exit the whole staked position")

	var posWallet, posOwner string
	var posPair pairFlags
	positionCmd := &cobra.Command{
		Use:   "position",
		Short: "Show the staked LP and pending SUSHI of a wallet for a pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				owner, err := s.ownerFor(posWallet, posOwner)
				if err != nil {
					return nil, err
				}
				walletAddr, err := resolveWallet(ctx, net, posWallet, owner)
				if err != nil {
					return nil, err
				}
				a, b, err := posPair.resolve(net, s.chainID())
				if err != nil {
					return nil, err
				}
				return farmPosition(ctx, net, walletAddr, tokenOf(net, a), tokenOf(net, b))
			})
		},
	}
	positionCmd.Flags().StringVar(&posWallet, "wallet", "", "Wallet address (default: wallet of the signer)")
	positionCmd.Flags().StringVar(&posOwner, "owner", "", "Look up the wallet of this owner")
	posPair.bind(positionCmd)

	root.AddCommand(enterCmd)
	root.AddCommand(exitCmd)
	root.AddCommand(positionCmd)
	return root
}

// farmAction is walletAction for pair commands; the result also carries the
// position after execution.
func (s *runtimeState) farmAction(cmd *cobra.Command, walletInput string, pair pairFlags, plan func(ctx context.Context, net *network.Network, req planner.WalletRequest, a, b id.Asset) (execution.Action, error)) error {
	txSigner, err := s.newSigner()
	if err != nil {
		return err
	}
	return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
		walletAddr, err := resolveWallet(ctx, net, walletInput, txSigner.Address())
		if err != nil {
			return nil, err
		}
		a, b, err := pair.resolve(net, s.chainID())
		if err != nil {
			return nil, err
		}
		action, err := plan(ctx, net, planner.WalletRequest{Base: s.planBase(txSigner), Wallet: walletAddr}, a, b)
		if err != nil {
			return nil, err
		}
		if err := s.execute(ctx, net, &action, txSigner); err != nil {
			return nil, err
		}
		position, err := farmPosition(ctx, net, walletAddr, tokenOf(net, a), tokenOf(net, b))
		if err != nil {
			return nil, err
		}
		return actionResult{Action: action, Position: &position}, nil
	})
}
