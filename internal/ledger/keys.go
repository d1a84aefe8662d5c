package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	tagBalance = byte(0x01)
	tagNonce   = byte(0x02)
	tagCode    = byte(0x03)
	tagStorage = byte(0x04)
)

func accountKey(tag byte, addr common.Address) string {
	key := make([]byte, 0, 1+common.AddressLength)
	key = append(key, tag)
	key = append(key, addr.Bytes()...)
	return string(key)
}

func storageKey(addr common.Address, key []byte) string {
	out := make([]byte, 0, 1+common.AddressLength+len(key))
	out = append(out, tagStorage)
	out = append(out, addr.Bytes()...)
	out = append(out, key...)
	return string(out)
}

// Key builds a contract storage key from a tag byte and key parts.
func Key(tag byte, parts ...[]byte) []byte {
	size := 1
	for _, part := range parts {
		size += len(part)
	}
	out := make([]byte, 0, size)
	out = append(out, tag)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

// Uint64Key encodes n as 8 big-endian bytes for use in Key.
func Uint64Key(n uint64) []byte {
	return new(big.Int).SetUint64(n).FillBytes(make([]byte, 8))
}

// BigKey encodes a non-negative n as 32 big-endian bytes for use in Key.
func BigKey(n *big.Int) []byte {
	return common.BigToHash(n).Bytes()
}
