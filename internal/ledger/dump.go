package ledger

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Dump is the committed chain content, used to persist a chain between runs.
type Dump struct {
	Headers      []*types.Header
	Entries      []Entry
	Logs         []types.Log
	Receipts     []*types.Receipt
	Impersonated []common.Address
}

func (c *Chain) Export() *Dump {
	c.mu.Lock()
	defer c.mu.Unlock()
	dump := &Dump{
		Headers: make([]*types.Header, 0, len(c.headers)),
		Entries: c.state.Entries(),
		Logs:    append([]types.Log(nil), c.logs...),
	}
	for _, header := range c.headers {
		dump.Headers = append(dump.Headers, types.CopyHeader(header))
	}
	for _, receipt := range c.receipts {
		dump.Receipts = append(dump.Receipts, receipt)
	}
	sort.Slice(dump.Receipts, func(i, j int) bool {
		return dump.Receipts[i].BlockNumber.Cmp(dump.Receipts[j].BlockNumber) < 0
	})
	for addr := range c.impersonated {
		dump.Impersonated = append(dump.Impersonated, addr)
	}
	sort.Slice(dump.Impersonated, func(i, j int) bool {
		return dump.Impersonated[i].Cmp(dump.Impersonated[j]) < 0
	})
	return dump
}

// Restore replaces the chain content with dump.
func (c *Chain) Restore(dump *Dump) error {
	if dump == nil || len(dump.Headers) == 0 {
		return errors.New("restore: dump has no headers")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	state := NewState()
	for _, entry := range dump.Entries {
		state.Set(string(entry.Key), entry.Value)
	}
	c.state = state
	c.headers = make([]*types.Header, 0, len(dump.Headers))
	for _, header := range dump.Headers {
		c.headers = append(c.headers, types.CopyHeader(header))
	}
	c.logs = append([]types.Log(nil), dump.Logs...)
	c.receipts = make(map[common.Hash]*types.Receipt, len(dump.Receipts))
	for _, receipt := range dump.Receipts {
		c.receipts[receipt.TxHash] = receipt
	}
	c.impersonated = make(map[common.Address]struct{}, len(dump.Impersonated))
	for _, addr := range dump.Impersonated {
		c.impersonated[addr] = struct{}{}
	}
	return nil
}
