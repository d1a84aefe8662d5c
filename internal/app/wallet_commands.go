package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/execution/planner"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
)

// amountFlags is the --amount / --amount-decimal pair shared by value
// carrying commands.
type amountFlags struct {
	base    string
	decimal string
}

func (a *amountFlags) bind(cmd *cobra.Command, name, unit string) {
	cmd.Flags().StringVar(&a.base, name, "", fmt.Sprintf("Amount in base units (%s)", unit))
	cmd.Flags().StringVar(&a.decimal, name+"-decimal", "", "Amount in decimal units")
}

func (a amountFlags) parse(decimals uint8) (*big.Int, error) {
	return id.ParseAmount(a.base, a.decimal, decimals)
}

// whaleFunding is returned by wallet fund --from-whale, which bypasses the
// action pipeline.
type whaleFunding struct {
	Whale   string             `json:"whale"`
	Account string             `json:"account"`
	TxHash  string             `json:"tx_hash"`
	Wallet  string             `json:"wallet"`
	Balance model.TokenBalance `json:"balance"`
}

func (s *runtimeState) newWalletCommand() *cobra.Command {
	root := &cobra.Command{Use: "wallet", Short: "Create and operate SushiWallets"}

	createCmd := mutating(&cobra.Command{
		Use:   "create",
		Short: "Deploy a wallet owned by the signer through the wallet factory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txSigner, err := s.newSigner()
			if err != nil {
				return err
			}
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				action, err := planner.BuildCreateWalletAction(planner.CreateWalletRequest{
					Base:    s.planBase(txSigner),
					Factory: net.WalletFactory,
				})
				if err != nil {
					return nil, err
				}
				if err := s.execute(ctx, net, &action, txSigner); err != nil {
					return nil, err
				}
				walletAddr, err := walletOf(ctx, net, txSigner.Address())
				if err != nil {
					return nil, err
				}
				info, err := walletInfo(ctx, net, walletAddr)
				if err != nil {
					return nil, err
				}
				s.logger.Info("wallet created", zap.String("wallet", walletAddr.Hex()), zap.String("owner", txSigner.Address().Hex()))
				return actionResult{Action: action, Wallet: &info}, nil
			})
		},
	})

	var infoWallet, infoOwner string
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show a wallet's configuration, balances and farm positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				owner, err := s.ownerFor(infoWallet, infoOwner)
				if err != nil {
					return nil, err
				}
				walletAddr, err := resolveWallet(ctx, net, infoWallet, owner)
				if err != nil {
					return nil, err
				}
				return walletInfo(ctx, net, walletAddr)
			})
		},
	}
	infoCmd.Flags().StringVar(&infoWallet, "wallet", "", "Wallet address (default: wallet of the signer)")
	infoCmd.Flags().StringVar(&infoOwner, "owner", "", "Look up the wallet of this owner")

	root.AddCommand(createCmd)
	root.AddCommand(infoCmd)
	root.AddCommand(s.newDepositCommand())
	root.AddCommand(s.newWithdrawCommand())
	root.AddCommand(s.newTransferETHCommand())
	root.AddCommand(s.newWithdrawERC20Command())
	root.AddCommand(s.newFundCommand())
	return root
}

// ownerFor picks the owner whose wallet a read command targets: the explicit
// owner, else the configured signer. An explicit wallet needs neither.
func (s *runtimeState) ownerFor(walletInput, ownerInput string) (common.Address, error) {
	if walletInput != "" {
		return common.Address{}, nil
	}
	if ownerInput != "" {
		return parseAddress(ownerInput, "owner")
	}
	txSigner, err := s.newSigner()
	if err != nil {
		return common.Address{}, err
	}
	return txSigner.Address(), nil
}

// walletAction runs the common flow of commands acting on the signer's
// wallet: resolve the wallet, plan, execute and report the wallet afterwards.
func (s *runtimeState) walletAction(cmd *cobra.Command, walletInput string, plan func(ctx context.Context, net *network.Network, req planner.WalletRequest) (execution.Action, error)) error {
	txSigner, err := s.newSigner()
	if err != nil {
		return err
	}
	return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
		walletAddr, err := resolveWallet(ctx, net, walletInput, txSigner.Address())
		if err != nil {
			return nil, err
		}
		action, err := plan(ctx, net, planner.WalletRequest{Base: s.planBase(txSigner), Wallet: walletAddr})
		if err != nil {
			return nil, err
		}
		if err := s.execute(ctx, net, &action, txSigner); err != nil {
			return nil, err
		}
		info, err := walletInfo(ctx, net, walletAddr)
		if err != nil {
			return nil, err
		}
		return actionResult{Action: action, Wallet: &info}, nil
	})
}

func (s *runtimeState) newDepositCommand() *cobra.Command {
	var walletInput string
	var amount amountFlags
	cmd := mutating(&cobra.Command{
		Use:   "deposit",
		Short: "Send ETH from the signer into the wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := amount.parse(18)
			if err != nil {
				return err
			}
			return s.walletAction(cmd, walletInput, func(_ context.Context, _ *network.Network, req planner.WalletRequest) (execution.Action, error) {
				return planner.BuildDepositAction(planner.DepositRequest{WalletRequest: req, Amount: value})
			})
		},
	})
	cmd.Flags().StringVar(&walletInput, "wallet", "", "Wallet address (default: wallet of the signer)")
	amount.bind(cmd, "amount", "wei")
	return cmd
}

func (s *runtimeState) newWithdrawCommand() *cobra.Command {
	var walletInput string
	var amount amountFlags
	cmd := mutating(&cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw ETH from the wallet to its owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := amount.parse(18)
			if err != nil {
				return err
			}
			return s.walletAction(cmd, walletInput, func(_ context.Context, _ *network.Network, req planner.WalletRequest) (execution.Action, error) {
				return planner.BuildWithdrawAction(planner.WithdrawRequest{WalletRequest: req, Amount: value})
			})
		},
	})
	cmd.Flags().StringVar(&walletInput, "wallet", "", "Wallet address (default: wallet of the signer)")
	amount.bind(cmd, "amount", "wei")
	return cmd
}

func (s *runtimeState) newTransferETHCommand() *cobra.Command {
	var walletInput, to string
	var amount amountFlags
	cmd := mutating(&cobra.Command{
		Use:   "transfer-eth",
		Short: "Send ETH held by the wallet to an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipient, err := parseAddress(to, "to")
			if err != nil {
				return err
			}
			value, err := amount.parse(18)
			if err != nil {
				return err
			}
			return s.walletAction(cmd, walletInput, func(_ context.Context, _ *network.Network, req planner.WalletRequest) (execution.Action, error) {
				return planner.BuildTransferETHAction(planner.TransferETHRequest{WalletRequest: req, To: recipient, Amount: value})
			})
		},
	})
	cmd.Flags().StringVar(&walletInput, "wallet", "", "Wallet address (default: wallet of the signer)")
	cmd.Flags().StringVar(&to, "to", "", "Recipient address")
	amount.bind(cmd, "amount", "wei")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (s *runtimeState) newWithdrawERC20Command() *cobra.Command {
	var walletInput, tokenInput string
	var amount amountFlags
	cmd := mutating(&cobra.Command{
		Use:   "withdraw-erc20",
		Short: "Send tokens held by the wallet to its owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.walletAction(cmd, walletInput, func(_ context.Context, net *network.Network, req planner.WalletRequest) (execution.Action, error) {
				token, err := id.ParseAsset(tokenInput, net.Deployment, s.chainID())
				if err != nil {
					return execution.Action{}, err
				}
				value, err := amount.parse(token.Decimals)
				if err != nil {
					return execution.Action{}, err
				}
				return planner.BuildWithdrawERC20Action(planner.WithdrawERC20Request{WalletRequest: req, Token: token, Amount: value})
			})
		},
	})
	cmd.Flags().StringVar(&walletInput, "wallet", "", "Wallet address (default: wallet of the signer)")
	cmd.Flags().StringVar(&tokenInput, "token", "", "Token symbol, address or CAIP-19 id")
	amount.bind(cmd, "amount", "token base units")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func (s *runtimeState) newFundCommand() *cobra.Command {
	var walletInput, assetInput string
	var fromWhale bool
	var amount amountFlags
	cmd := mutating(&cobra.Command{
		Use:   "fund",
		Short: "Move ETH or tokens into the wallet from the signer or a whale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromWhale {
				return s.fundFromWhale(cmd, walletInput, assetInput, amount)
			}
			return s.walletAction(cmd, walletInput, func(_ context.Context, net *network.Network, req planner.WalletRequest) (execution.Action, error) {
				asset, err := id.ParseAsset(assetInput, net.Deployment, s.chainID())
				if err != nil {
					return execution.Action{}, err
				}
				value, err := amount.parse(asset.Decimals)
				if err != nil {
					return execution.Action{}, err
				}
				return planner.BuildFundAction(planner.FundRequest{WalletRequest: req, Asset: asset, Amount: value})
			})
		},
	})
	cmd.Flags().StringVar(&walletInput, "wallet", "", "Wallet address (default: wallet of the signer)")
	cmd.Flags().StringVar(&assetInput, "asset", "", "ETH or a token symbol, address or CAIP-19 id")
	cmd.Flags().BoolVar(&fromWhale, "from-whale", false, "Transfer the tokens from an impersonated whale instead of the signer")
	amount.bind(cmd, "amount", "base units")
	_ = cmd.MarkFlagRequired("asset")
	return cmd
}

func (s *runtimeState) fundFromWhale(cmd *cobra.Command, walletInput, assetInput string, amount amountFlags) error {
	owner, err := s.ownerFor(walletInput, "")
	if err != nil {
		return err
	}
	return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
		walletAddr, err := resolveWallet(ctx, net, walletInput, owner)
		if err != nil {
			return nil, err
		}
		asset, err := id.ParseAsset(assetInput, net.Deployment, s.chainID())
		if err != nil {
			return nil, err
		}
		if asset.Native {
			return nil, clierr.New(clierr.CodeUsage, "ETH has no whale, use chain set-balance or fund without --from-whale")
		}
		whale, ok := network.WhaleFor(asset.Symbol)
		if !ok {
			return nil, clierr.New(clierr.CodeUnsupported, fmt.Sprintf("no whale holds %s", asset.Symbol))
		}
		value, err := amount.parse(asset.Decimals)
		if err != nil {
			return nil, err
		}
		if value.Sign() <= 0 {
			return nil, clierr.New(clierr.CodeUsage, "amount must be positive")
		}
		txHash, err := net.FundFromWhale(ctx, asset.Symbol, walletAddr, value)
		if err != nil {
			return nil, clierr.FromLedger("fund from whale", err)
		}
		s.logger.Info("funded from whale",
			zap.String("whale", whale.Label),
			zap.String("token", asset.Symbol),
			zap.String("wallet", walletAddr.Hex()),
			zap.String("amount", value.String()))
		balance, err := tokenBalance(ctx, net, tokenOf(net, asset), walletAddr)
		if err != nil {
			return nil, err
		}
		return whaleFunding{
			Whale:   whale.Label,
			Account: whale.Account.Hex(),
			TxHash:  txHash.Hex(),
			Wallet:  walletAddr.Hex(),
			Balance: balance,
		}, nil
	})
}
