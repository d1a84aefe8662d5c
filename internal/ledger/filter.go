package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FilterLogs returns the logs matching q. A nil FromBlock starts at genesis, a
// nil ToBlock ends at the head, and negative bounds are clamped to genesis.
func (c *Chain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	from := uint64(0)
	to := c.head().Number.Uint64()
	if q.BlockHash == nil {
		if q.FromBlock != nil && q.FromBlock.Sign() > 0 {
			if !q.FromBlock.IsUint64() {
				return nil, fmt.Errorf("invalid from block %s", q.FromBlock)
			}
			from = q.FromBlock.Uint64()
		}
		if q.ToBlock != nil && q.ToBlock.Sign() >= 0 && q.ToBlock.IsUint64() && q.ToBlock.Uint64() < to {
			to = q.ToBlock.Uint64()
		}
		if from > to {
			return nil, fmt.Errorf("invalid block range %d-%d", from, to)
		}
	}

	var out []types.Log
	for _, log := range c.logs {
		if q.BlockHash != nil {
			if log.BlockHash != *q.BlockHash {
				continue
			}
		} else if log.BlockNumber < from || log.BlockNumber > to {
			continue
		}
		if !matchAddress(q.Addresses, log.Address) || !matchTopics(q.Topics, log.Topics) {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func matchAddress(addresses []common.Address, addr common.Address) bool {
	if len(addresses) == 0 {
		return true
	}
	for _, candidate := range addresses {
		if candidate == addr {
			return true
		}
	}
	return false
}

func matchTopics(query [][]common.Hash, topics []common.Hash) bool {
	if len(query) > len(topics) {
		return false
	}
	for i, alternatives := range query {
		if len(alternatives) == 0 {
			continue
		}
		found := false
		for _, candidate := range alternatives {
			if candidate == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
