package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
	"github.com/ggonzalez94/sushi-wallet/internal/network"
)

func (s *runtimeState) newChainCommand() *cobra.Command {
	root := &cobra.Command{Use: "chain", Short: "Inspect and steer the simulated chain"}

	var blockNumber int64
	blockCmd := &cobra.Command{
		Use:   "block",
		Short: "Show a block header (default: head)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				var number *big.Int
				if blockNumber >= 0 {
					number = big.NewInt(blockNumber)
				}
				header, err := net.Chain.HeaderByNumber(ctx, number)
				if err != nil {
					return nil, clierr.Wrap(clierr.CodeNotFound, "read block", err)
				}
				return model.BlockInfo{
					Number:     header.Number.Uint64(),
					Hash:       header.Hash().Hex(),
					ParentHash: header.ParentHash.Hex(),
					Timestamp:  header.Time,
				}, nil
			})
		},
	}
	blockCmd.Flags().Int64Var(&blockNumber, "number", -1, "Block number")

	var balanceAddress, balanceToken string
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the ETH or token balance of an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := parseAddress(balanceAddress, "address")
			if err != nil {
				return err
			}
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				if balanceToken == "" {
					return nativeBalance(ctx, net, addr)
				}
				asset, err := id.ParseAsset(balanceToken, net.Deployment, s.chainID())
				if err != nil {
					return nil, err
				}
				if asset.Native {
					return nativeBalance(ctx, net, addr)
				}
				return tokenBalance(ctx, net, tokenOf(net, asset), addr)
			})
		},
	}
	balanceCmd.Flags().StringVar(&balanceAddress, "address", "", "Account address")
	balanceCmd.Flags().StringVar(&balanceToken, "token", "", "Token symbol, address or CAIP-19 id (default: ETH)")
	_ = balanceCmd.MarkFlagRequired("address")

	var setAddress, setAmount, setAmountDecimal string
	setBalanceCmd := mutating(&cobra.Command{
		Use:   "set-balance",
		Short: "Overwrite the ETH balance of an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := parseAddress(setAddress, "address")
			if err != nil {
				return err
			}
			amount, err := id.ParseAmount(setAmount, setAmountDecimal, 18)
			if err != nil {
				return err
			}
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				net.Chain.SetBalance(addr, amount)
				return nativeBalance(ctx, net, addr)
			})
		},
	})
	setBalanceCmd.Flags().StringVar(&setAddress, "address", "", "Account address")
	setBalanceCmd.Flags().StringVar(&setAmount, "amount", "", "Balance in wei")
	setBalanceCmd.Flags().StringVar(&setAmountDecimal, "amount-decimal", "", "Balance in ETH")
	_ = setBalanceCmd.MarkFlagRequired("address")

	var mineBlocks int
	mineCmd := mutating(&cobra.Command{
		Use:   "mine",
		Short: "Mine empty blocks to advance farm rewards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mineBlocks <= 0 {
				return clierr.New(clierr.CodeUsage, "--blocks must be positive")
			}
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				net.Chain.Mine(mineBlocks)
				header, err := net.Chain.HeaderByNumber(ctx, nil)
				if err != nil {
					return nil, clierr.Wrap(clierr.CodeInternal, "read head", err)
				}
				return model.BlockInfo{
					Number:     header.Number.Uint64(),
					Hash:       header.Hash().Hex(),
					ParentHash: header.ParentHash.Hex(),
					Timestamp:  header.Time,
				}, nil
			})
		},
	})
	mineCmd.Flags().IntVar(&mineBlocks, "blocks", 1, "Number of blocks to mine")

	var logAddresses, logTopics []string
	var logEvent string
	var logFrom, logTo int64
	var logLimit int
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Filter event logs and decode known events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := ethereum.FilterQuery{}
			for _, raw := range logAddresses {
				addr, err := parseAddress(raw, "address")
				if err != nil {
					return err
				}
				query.Addresses = append(query.Addresses, addr)
			}
			topics, err := topicQuery(logEvent, logTopics)
			if err != nil {
				return err
			}
			query.Topics = topics
			if logFrom > 0 {
				query.FromBlock = big.NewInt(logFrom)
			}
			if logTo >= 0 {
				query.ToBlock = big.NewInt(logTo)
			}
			return s.runOnChain(cmd, func(ctx context.Context, net *network.Network) (any, error) {
				logs, err := net.Chain.FilterLogs(ctx, query)
				if err != nil {
					return nil, clierr.Wrap(clierr.CodeUsage, "filter logs", err)
				}
				if logLimit > 0 && len(logs) > logLimit {
					logs = logs[len(logs)-logLimit:]
				}
				entries := make([]model.LogEntry, 0, len(logs))
				for _, log := range logs {
					entries = append(entries, logEntry(log))
				}
				return entries, nil
			})
		},
	}
	logsCmd.Flags().StringSliceVar(&logAddresses, "address", nil, "Emitting contract address (repeatable)")
	logsCmd.Flags().StringVar(&logEvent, "event", "", "Event name, e.g. Deposited or YieldFarmingExecuted")
	logsCmd.Flags().StringSliceVar(&logTopics, "topic", nil, "Indexed argument topics in order; empty matches any")
	logsCmd.Flags().Int64Var(&logFrom, "from-block", 0, "First block")
	logsCmd.Flags().Int64Var(&logTo, "to-block", -1, "Last block (default: head)")
	logsCmd.Flags().IntVar(&logLimit, "limit", 0, "Keep only the most recent N logs")

	root.AddCommand(blockCmd)
	root.AddCommand(balanceCmd)
	root.AddCommand(setBalanceCmd)
	root.AddCommand(mineCmd)
	root.AddCommand(logsCmd)
	return root
}
