package network

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

// Client packs calls with the ABI of the contract deployed at the target and
// submits them to a chain.
type Client struct {
	chain *ledger.Chain
}

func NewClient(chain *ledger.Chain) *Client {
	return &Client{chain: chain}
}

func (c *Client) Chain() *ledger.Chain {
	return c.chain
}

func (c *Client) pack(to common.Address, method string, args []any) (ledger.Class, []byte, error) {
	class, ok := c.chain.ClassAt(to)
	if !ok {
		return ledger.Class{}, nil, fmt.Errorf("%w: %s", ledger.ErrNoCode, to.Hex())
	}
	data, err := class.ABI.Pack(method, args...)
	if err != nil {
		return ledger.Class{}, nil, fmt.Errorf("pack %s.%s: %w", class.Name, method, err)
	}
	return class, data, nil
}

// Call runs a read-only call and unpacks its outputs.
func (c *Client) Call(ctx context.Context, from, to common.Address, method string, args ...any) ([]any, error) {
	class, data, err := c.pack(to, method, args)
	if err != nil {
		return nil, err
	}
	out, err := c.chain.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return class.ABI.Unpack(method, out)
}

// Transact signs a dynamic fee transaction with key and returns its receipt.
// A nil value sends nothing. An empty method sends value with no calldata.
func (c *Client) Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, value *big.Int, method string, args ...any) (*types.Receipt, error) {
	var data []byte
	if method != "" {
		_, packed, err := c.pack(to, method, args)
		if err != nil {
			return nil, err
		}
		data = packed
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	chainID, err := c.chain.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := c.chain.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int),
		Gas:       30_000_000,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := c.chain.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	return c.chain.TransactionReceipt(ctx, signed.Hash())
}

// TransactAs submits a call from an impersonated account.
func (c *Client) TransactAs(ctx context.Context, from, to common.Address, value *big.Int, method string, args ...any) (*types.Receipt, error) {
	var data []byte
	if method != "" {
		_, packed, err := c.pack(to, method, args)
		if err != nil {
			return nil, err
		}
		data = packed
	}
	hash, err := c.chain.SendImpersonated(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
	if err != nil {
		return nil, err
	}
	return c.chain.TransactionReceipt(ctx, hash)
}

// TokenBalance reads balanceOf(owner) on token.
func (c *Client) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.Call(ctx, owner, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}
