package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap/zaptest"
)

const counterABI = `[
	{"type":"constructor","inputs":[{"name":"start","type":"uint256"}]},
	{"type":"receive","stateMutability":"payable"},
	{"name":"count","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"increment","type":"function","stateMutability":"nonpayable","inputs":[{"name":"by","type":"uint256"}],"outputs":[]},
	{"name":"incrementThenFail","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"name":"forward","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"by","type":"uint256"}],"outputs":[]},
	{"name":"tryForward","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"}],"outputs":[]},
	{"name":"pay","type":"function","stateMutability":"payable","inputs":[],"outputs":[]},
	{"name":"Counted","type":"event","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"total","type":"uint256","indexed":false}]}
]`

var counterClass = Class{
	Name: "counter",
	ABI:  MustABI(counterABI),
	New:  func(addr common.Address) Contract { return &counter{} },
}

type counter struct{}

func (counter) OnCreate(cc *Context, args []any) error {
	cc.SetBigData([]byte("count"), args[0].(*big.Int))
	return nil
}

func (counter) Receive(cc *Context) error {
	return nil
}

func (c counter) add(cc *Context, by *big.Int) error {
	total := new(big.Int).Add(cc.BigData([]byte("count")), by)
	cc.SetBigData([]byte("count"), total)
	return cc.Emit("Counted", cc.From(), total)
}

func (c counter) Invoke(cc *Context, method string, args []any) ([]any, error) {
	switch method {
	case "count":
		return []any{cc.BigData([]byte("count"))}, nil
	case "increment":
		return nil, c.add(cc, args[0].(*big.Int))
	case "incrementThenFail":
		if err := c.add(cc, common.Big1); err != nil {
			return nil, err
		}
		return nil, Revert("boom")
	case "forward":
		if err := c.add(cc, common.Big1); err != nil {
			return nil, err
		}
		_, err := cc.Exec(args[0].(common.Address), "increment", args[1].(*big.Int))
		return nil, err
	case "tryForward":
		if err := c.add(cc, common.Big1); err != nil {
			return nil, err
		}
		// The failed nested call is swallowed; only its own writes roll back.
		_, _ = cc.Exec(args[0].(common.Address), "incrementThenFail")
		return nil, nil
	case "pay":
		return nil, nil
	}
	return nil, fmt.Errorf("counter: unhandled %s", method)
}

var (
	testKey, _ = crypto.HexToECDSA("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	testAddr   = crypto.PubkeyToAddress(testKey.PublicKey)
)

func newTestChain(t *testing.T) *Chain {
	t.Helper()
	chain := NewChain(DefaultConfig(), zaptest.NewLogger(t), counterClass)
	chain.SetBalance(testAddr, big.NewInt(1e18))
	return chain
}

func deployCounter(t *testing.T, chain *Chain) common.Address {
	t.Helper()
	addr, err := chain.Deploy(context.Background(), testAddr, "counter", nil, big.NewInt(5))
	if err != nil {
		t.Fatalf("deploy counter: %v", err)
	}
	return addr
}

func signedCall(t *testing.T, chain *Chain, to common.Address, value *big.Int, method string, args ...any) (*types.Transaction, error) {
	t.Helper()
	var data []byte
	if method != "" {
		packed, err := counterClass.ABI.Pack(method, args...)
		if err != nil {
			t.Fatalf("pack %s: %v", method, err)
		}
		data = packed
	}
	nonce, _ := chain.PendingNonceAt(context.Background(), testAddr)
	if value == nil {
		value = new(big.Int)
	}
	tx := types.MustSignNewTx(testKey, types.LatestSignerForChainID(chain.Config().ChainID), &types.DynamicFeeTx{
		ChainID:   chain.Config().ChainID,
		Nonce:     nonce,
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int),
		Gas:       100_000,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	return tx, chain.SendTransaction(context.Background(), tx)
}

func readCount(t *testing.T, chain *Chain, addr common.Address) int64 {
	t.Helper()
	data, _ := counterClass.ABI.Pack("count")
	out, err := chain.CallContract(context.Background(), ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		t.Fatalf("call count: %v", err)
	}
	values, err := counterClass.ABI.Unpack("count", out)
	if err != nil {
		t.Fatalf("unpack count: %v", err)
	}
	return values[0].(*big.Int).Int64()
}

func TestDeployAddressFollowsNonce(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	if want := crypto.CreateAddress(testAddr, 0); addr != want {
		t.Fatalf("expected %s, got %s", want.Hex(), addr.Hex())
	}
	if got := readCount(t, chain, addr); got != 5 {
		t.Fatalf("expected constructor value 5, got %d", got)
	}
	head, _ := chain.BlockNumber(context.Background())
	if head != 1 {
		t.Fatalf("expected deployment block 1, got %d", head)
	}
}

func TestSignedTransactionMinesBlockWithLogs(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)

	tx, err := signedCall(t, chain, addr, nil, "increment", big.NewInt(3))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	receipt, err := chain.TransactionReceipt(context.Background(), tx.Hash())
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful || len(receipt.Logs) != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if receipt.Logs[0].Topics[1] != common.BytesToHash(testAddr.Bytes()) {
		t.Fatalf("expected caller topic, got %s", receipt.Logs[0].Topics[1].Hex())
	}
	if got := readCount(t, chain, addr); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
	header, _ := chain.HeaderByNumber(context.Background(), nil)
	genesis, _ := chain.HeaderByNumber(context.Background(), common.Big0)
	if header.Time-genesis.Time != 24 {
		t.Fatalf("expected two 12s blocks, got %d seconds", header.Time-genesis.Time)
	}
	nonce, _ := chain.NonceAt(context.Background(), testAddr, nil)
	if nonce != 2 {
		t.Fatalf("expected nonce 2, got %d", nonce)
	}
}

func TestRevertedTransactionLeavesNoTrace(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	head, _ := chain.BlockNumber(context.Background())

	_, err := signedCall(t, chain, addr, nil, "incrementThenFail")
	reason, ok := RevertReason(err)
	if !ok || reason != "boom" {
		t.Fatalf("expected revert boom, got %v", err)
	}
	if got := readCount(t, chain, addr); got != 5 {
		t.Fatalf("expected count unchanged, got %d", got)
	}
	if after, _ := chain.BlockNumber(context.Background()); after != head {
		t.Fatalf("expected no block for reverted tx, head %d -> %d", head, after)
	}
	if nonce, _ := chain.NonceAt(context.Background(), testAddr, nil); nonce != 1 {
		t.Fatalf("expected nonce 1, got %d", nonce)
	}
	logs, _ := chain.FilterLogs(context.Background(), ethereum.FilterQuery{Addresses: []common.Address{addr}})
	if len(logs) != 0 {
		t.Fatalf("expected no logs, got %d", len(logs))
	}
}

func TestNestedFailureRevertsWholeTransaction(t *testing.T) {
	chain := newTestChain(t)
	a := deployCounter(t, chain)
	b := deployCounter(t, chain)

	if _, err := signedCall(t, chain, a, nil, "forward", b, big.NewInt(2)); err != nil {
		t.Fatalf("forward: %v", err)
	}
	if readCount(t, chain, a) != 6 || readCount(t, chain, b) != 7 {
		t.Fatalf("unexpected counts %d %d", readCount(t, chain, a), readCount(t, chain, b))
	}

	// A caught inner failure only drops the inner frame.
	if _, err := signedCall(t, chain, a, nil, "tryForward", b); err != nil {
		t.Fatalf("tryForward: %v", err)
	}
	if readCount(t, chain, a) != 7 || readCount(t, chain, b) != 7 {
		t.Fatalf("unexpected counts after tryForward %d %d", readCount(t, chain, a), readCount(t, chain, b))
	}
}

func TestValueRules(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)

	if _, err := signedCall(t, chain, addr, big.NewInt(10), "increment", common.Big1); err == nil {
		t.Fatal("expected non-payable method to reject value")
	}
	if _, err := signedCall(t, chain, addr, big.NewInt(10), "pay"); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := signedCall(t, chain, addr, big.NewInt(5), ""); err != nil {
		t.Fatalf("receive: %v", err)
	}
	balance, _ := chain.BalanceAt(context.Background(), addr, nil)
	if balance.Int64() != 15 {
		t.Fatalf("expected 15 wei, got %s", balance)
	}
	_, err := signedCall(t, chain, addr, big.NewInt(2e18), "pay")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestSendTransactionChecksNonceAndChain(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	data, _ := counterClass.ABI.Pack("increment", common.Big1)

	stale := types.MustSignNewTx(testKey, types.LatestSignerForChainID(chain.Config().ChainID), &types.DynamicFeeTx{
		ChainID: chain.Config().ChainID, Nonce: 0, Gas: 100_000, To: &addr, Value: new(big.Int), Data: data,
		GasTipCap: new(big.Int), GasFeeCap: new(big.Int),
	})
	if err := chain.SendTransaction(context.Background(), stale); !errors.Is(err, ErrNonceMismatch) {
		t.Fatalf("expected nonce mismatch, got %v", err)
	}

	other := big.NewInt(1)
	wrongChain := types.MustSignNewTx(testKey, types.LatestSignerForChainID(other), &types.DynamicFeeTx{
		ChainID: other, Nonce: 1, Gas: 100_000, To: &addr, Value: new(big.Int), Data: data,
		GasTipCap: new(big.Int), GasFeeCap: new(big.Int),
	})
	if err := chain.SendTransaction(context.Background(), wrongChain); err == nil {
		t.Fatal("expected chain id mismatch")
	}
}

func TestImpersonation(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	whale := common.HexToAddress("0xf977814e90da44bfa03b6295a0616a897441acec")
	data, _ := counterClass.ABI.Pack("increment", common.Big1)
	msg := ethereum.CallMsg{From: whale, To: &addr, Data: data}

	if _, err := chain.SendImpersonated(context.Background(), msg); !errors.Is(err, ErrNotImpersonated) {
		t.Fatalf("expected not impersonated, got %v", err)
	}
	chain.Impersonate(whale)
	hash, err := chain.SendImpersonated(context.Background(), msg)
	if err != nil {
		t.Fatalf("impersonated send: %v", err)
	}
	if _, err := chain.TransactionReceipt(context.Background(), hash); err != nil {
		t.Fatalf("receipt: %v", err)
	}
	chain.StopImpersonating(whale)
	if chain.IsImpersonated(whale) {
		t.Fatal("expected impersonation stopped")
	}
}

func TestFilterLogsByRangeAndTopic(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	for i := 0; i < 3; i++ {
		if _, err := signedCall(t, chain, addr, nil, "increment", common.Big1); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	event := counterClass.ABI.Events["Counted"]
	logs, err := chain.FilterLogs(context.Background(), ethereum.FilterQuery{
		FromBlock: big.NewInt(3),
		Addresses: []common.Address{addr},
		Topics:    [][]common.Hash{{event.ID}, {common.BytesToHash(testAddr.Bytes())}},
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs from block 3, got %d", len(logs))
	}
	logs, _ = chain.FilterLogs(context.Background(), ethereum.FilterQuery{
		Topics: [][]common.Hash{{event.ID}, {common.HexToHash("0x01")}},
	})
	if len(logs) != 0 {
		t.Fatalf("expected no logs for other caller, got %d", len(logs))
	}
	if _, err := chain.FilterLogs(context.Background(), ethereum.FilterQuery{FromBlock: big.NewInt(100)}); err == nil {
		t.Fatal("expected invalid range error")
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	if _, err := signedCall(t, chain, addr, nil, "increment", big.NewInt(4)); err != nil {
		t.Fatalf("increment: %v", err)
	}
	dump := chain.Export()

	restored := NewChain(DefaultConfig(), nil, counterClass)
	if err := restored.Restore(dump); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := readCount(t, restored, addr); got != 9 {
		t.Fatalf("expected restored count 9, got %d", got)
	}
	head, _ := restored.BlockNumber(context.Background())
	if head != 2 {
		t.Fatalf("expected head 2, got %d", head)
	}
	if _, err := signedCall(t, restored, addr, nil, "increment", common.Big1); err != nil {
		t.Fatalf("increment after restore: %v", err)
	}
}

func TestMineAdvancesTime(t *testing.T) {
	chain := newTestChain(t)
	chain.Mine(5)
	header, _ := chain.HeaderByNumber(context.Background(), nil)
	if header.Number.Uint64() != 5 {
		t.Fatalf("expected block 5, got %d", header.Number.Uint64())
	}
	if _, err := chain.BalanceAt(context.Background(), testAddr, big.NewInt(1)); !errors.Is(err, ErrHistoricalState) {
		t.Fatalf("expected historical state error, got %v", err)
	}
}

func TestDumpBinaryRoundTrip(t *testing.T) {
	chain := newTestChain(t)
	addr := deployCounter(t, chain)
	tx, err := signedCall(t, chain, addr, nil, "increment", big.NewInt(2))
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	receipt, err := chain.TransactionReceipt(context.Background(), tx.Hash())
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	raw, err := chain.Export().MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var dump Dump
	if err := dump.UnmarshalBinary(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restored := NewChain(DefaultConfig(), nil, counterClass)
	if err := restored.Restore(&dump); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := readCount(t, restored, addr); got != 7 {
		t.Fatalf("expected restored count 7, got %d", got)
	}
	head, _ := restored.HeaderByNumber(context.Background(), nil)
	orig, _ := chain.HeaderByNumber(context.Background(), nil)
	if head.Hash() != orig.Hash() {
		t.Fatalf("header hash changed: %s != %s", head.Hash(), orig.Hash())
	}
	got, err := restored.TransactionReceipt(context.Background(), receipt.TxHash)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if len(got.Logs) != len(receipt.Logs) || got.BlockNumber.Cmp(receipt.BlockNumber) != 0 {
		t.Fatalf("receipt mismatch: %+v", got)
	}
	logs, err := restored.FilterLogs(context.Background(), ethereum.FilterQuery{Addresses: []common.Address{addr}})
	if err != nil || len(logs) != len(receipt.Logs) {
		t.Fatalf("expected %d restored logs, got %d (%v)", len(receipt.Logs), len(logs), err)
	}
}
