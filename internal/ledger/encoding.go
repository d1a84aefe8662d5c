package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// Consensus RLP of logs and receipts drops the block and transaction
// coordinates, so dumps carry their own records.
type encodedLog struct {
	Address     common.Address
	Topics      []common.Hash
	Data        []byte
	BlockNumber uint64
	BlockHash   common.Hash
	TxHash      common.Hash
	Index       uint64
}

type encodedReceipt struct {
	TxHash          common.Hash
	BlockHash       common.Hash
	BlockNumber     uint64
	ContractAddress common.Address
}

type encodedDump struct {
	Headers      []*types.Header
	Entries      []Entry
	Logs         []encodedLog
	Receipts     []encodedReceipt
	Impersonated []common.Address
}

// MarshalBinary encodes the dump as RLP.
func (d *Dump) MarshalBinary() ([]byte, error) {
	enc := encodedDump{
		Headers:      d.Headers,
		Entries:      d.Entries,
		Impersonated: d.Impersonated,
	}
	for _, log := range d.Logs {
		enc.Logs = append(enc.Logs, encodedLog{
			Address:     log.Address,
			Topics:      log.Topics,
			Data:        log.Data,
			BlockNumber: log.BlockNumber,
			BlockHash:   log.BlockHash,
			TxHash:      log.TxHash,
			Index:       uint64(log.Index),
		})
	}
	for _, receipt := range d.Receipts {
		enc.Receipts = append(enc.Receipts, encodedReceipt{
			TxHash:          receipt.TxHash,
			BlockHash:       receipt.BlockHash,
			BlockNumber:     receipt.BlockNumber.Uint64(),
			ContractAddress: receipt.ContractAddress,
		})
	}
	return rlp.EncodeToBytes(&enc)
}

// UnmarshalBinary decodes a dump produced by MarshalBinary. Receipt logs are
// rebuilt from the log list.
func (d *Dump) UnmarshalBinary(data []byte) error {
	var enc encodedDump
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return fmt.Errorf("decode dump: %w", err)
	}
	byTx := make(map[common.Hash][]*types.Log)
	logs := make([]types.Log, 0, len(enc.Logs))
	for _, l := range enc.Logs {
		log := types.Log{
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			BlockNumber: l.BlockNumber,
			BlockHash:   l.BlockHash,
			TxHash:      l.TxHash,
			Index:       uint(l.Index),
		}
		logs = append(logs, log)
		copied := log
		byTx[l.TxHash] = append(byTx[l.TxHash], &copied)
	}
	receipts := make([]*types.Receipt, 0, len(enc.Receipts))
	for _, r := range enc.Receipts {
		txLogs := byTx[r.TxHash]
		if txLogs == nil {
			txLogs = []*types.Log{}
		}
		receipts = append(receipts, &types.Receipt{
			Type:            types.DynamicFeeTxType,
			Status:          types.ReceiptStatusSuccessful,
			Logs:            txLogs,
			TxHash:          r.TxHash,
			BlockHash:       r.BlockHash,
			BlockNumber:     new(big.Int).SetUint64(r.BlockNumber),
			ContractAddress: r.ContractAddress,
		})
	}
	*d = Dump{
		Headers:      enc.Headers,
		Entries:      enc.Entries,
		Logs:         logs,
		Receipts:     receipts,
		Impersonated: enc.Impersonated,
	}
	return nil
}
