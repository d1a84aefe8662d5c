package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const defaultGasLimit = 30_000_000

type Config struct {
	ChainID     *big.Int
	BlockTime   time.Duration
	GenesisTime time.Time
}

func DefaultConfig() Config {
	return Config{
		ChainID:     big.NewInt(31337),
		BlockTime:   12 * time.Second,
		GenesisTime: time.Unix(1_700_000_000, 0).UTC(),
	}
}

// Chain is an in-process ledger that executes Go contracts. Every successful
// transaction is mined into its own block; a failed one leaves no trace.
type Chain struct {
	mu           sync.Mutex
	cfg          Config
	classes      map[string]Class
	state        *State
	headers      []*types.Header
	logs         []types.Log
	receipts     map[common.Hash]*types.Receipt
	impersonated map[common.Address]struct{}
	logger       *zap.Logger
}

func NewChain(cfg Config, logger *zap.Logger, classes ...Class) *Chain {
	defaults := DefaultConfig()
	if cfg.ChainID == nil {
		cfg.ChainID = defaults.ChainID
	}
	if cfg.BlockTime <= 0 {
		cfg.BlockTime = defaults.BlockTime
	}
	if cfg.GenesisTime.IsZero() {
		cfg.GenesisTime = defaults.GenesisTime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Chain{
		cfg:          cfg,
		classes:      make(map[string]Class, len(classes)),
		state:        NewState(),
		receipts:     map[common.Hash]*types.Receipt{},
		impersonated: map[common.Address]struct{}{},
		logger:       logger,
	}
	for _, class := range classes {
		c.classes[class.Name] = class
	}
	c.headers = []*types.Header{c.makeHeader(nil, uint64(cfg.GenesisTime.Unix()))}
	return c
}

func (c *Chain) makeHeader(parent *types.Header, timestamp uint64) *types.Header {
	header := &types.Header{
		UncleHash:  types.EmptyUncleHash,
		Difficulty: new(big.Int),
		Number:     new(big.Int),
		GasLimit:   defaultGasLimit,
		Time:       timestamp,
		Extra:      []byte{},
		BaseFee:    new(big.Int),
	}
	if parent != nil {
		header.ParentHash = parent.Hash()
		header.Number = new(big.Int).Add(parent.Number, common.Big1)
	}
	return header
}

func (c *Chain) head() *types.Header {
	return c.headers[len(c.headers)-1]
}

func (c *Chain) nextHeader() *types.Header {
	parent := c.head()
	return c.makeHeader(parent, parent.Time+uint64(c.cfg.BlockTime/time.Second))
}

func (c *Chain) Config() Config {
	return c.cfg
}

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.cfg.ChainID), nil
}

func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head().Number.Uint64(), nil
}

// HeaderByNumber returns the header at number, or the latest one for nil.
func (c *Chain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if number == nil {
		return types.CopyHeader(c.head()), nil
	}
	if number.Sign() < 0 || !number.IsUint64() || number.Uint64() >= uint64(len(c.headers)) {
		return nil, ethereum.NotFound
	}
	return types.CopyHeader(c.headers[number.Uint64()]), nil
}

func (c *Chain) checkLatest(blockNumber *big.Int) error {
	if blockNumber == nil || blockNumber.Cmp(c.head().Number) == 0 {
		return nil
	}
	return fmt.Errorf("%w: block %s", ErrHistoricalState, blockNumber)
}

func (c *Chain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLatest(blockNumber); err != nil {
		return nil, err
	}
	return c.balance(account), nil
}

func (c *Chain) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLatest(blockNumber); err != nil {
		return 0, err
	}
	return c.nonce(account), nil
}

func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.NonceAt(ctx, account, nil)
}

// ClassAt returns the contract class deployed at addr.
func (c *Chain) ClassAt(addr common.Address) (Class, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classAt(addr)
}

func (c *Chain) classAt(addr common.Address) (Class, bool) {
	name := c.state.Get(accountKey(tagCode, addr))
	if len(name) == 0 {
		return Class{}, false
	}
	class, ok := c.classes[string(name)]
	return class, ok
}

func (c *Chain) balance(addr common.Address) *big.Int {
	return new(big.Int).SetBytes(c.state.Get(accountKey(tagBalance, addr)))
}

func (c *Chain) setBalance(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		c.state.Delete(accountKey(tagBalance, addr))
		return
	}
	c.state.Set(accountKey(tagBalance, addr), amount.Bytes())
}

func (c *Chain) move(from, to common.Address, amount *big.Int) error {
	have := c.balance(from)
	if have.Cmp(amount) < 0 {
		return fmt.Errorf("%w: address %s have %s want %s", ErrInsufficientFunds, from.Hex(), have, amount)
	}
	c.setBalance(from, have.Sub(have, amount))
	c.setBalance(to, new(big.Int).Add(c.balance(to), amount))
	return nil
}

func (c *Chain) nonce(addr common.Address) uint64 {
	return new(big.Int).SetBytes(c.state.Get(accountKey(tagNonce, addr))).Uint64()
}

func (c *Chain) setNonce(addr common.Address, nonce uint64) {
	c.state.Set(accountKey(tagNonce, addr), new(big.Int).SetUint64(nonce).Bytes())
}

// SetBalance overwrites the native balance of addr without mining a block.
func (c *Chain) SetBalance(addr common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setBalance(addr, amount)
}

// Impersonate lets SendImpersonated submit transactions from addr without a key.
func (c *Chain) Impersonate(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.impersonated[addr] = struct{}{}
}

func (c *Chain) StopImpersonating(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.impersonated, addr)
}

func (c *Chain) IsImpersonated(addr common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.impersonated[addr]
	return ok
}

// Mine appends n empty blocks.
func (c *Chain) Mine(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < n; i++ {
		c.headers = append(c.headers, c.nextHeader())
	}
	c.logger.Debug("mined empty blocks", zap.Int("count", n), zap.Uint64("head", c.head().Number.Uint64()))
}

// CallContract executes msg against the latest state and discards every change.
func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, errors.New("call without target address")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLatest(blockNumber); err != nil {
		return nil, err
	}
	env := &execEnv{chain: c, header: c.head(), origin: msg.From}
	sn := c.state.Snapshot()
	defer c.state.Revert(sn)
	return env.call(msg.From, *msg.To, msg.Value, msg.Data, 0)
}

// SendTransaction executes a signed transaction and mines it into a new block.
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if tx.ChainId().Cmp(c.cfg.ChainID) != 0 {
		return fmt.Errorf("invalid chain id %s, want %s", tx.ChainId(), c.cfg.ChainID)
	}
	from, err := types.Sender(types.LatestSignerForChainID(c.cfg.ChainID), tx)
	if err != nil {
		return fmt.Errorf("recover sender: %w", err)
	}
	if want := c.nonce(from); tx.Nonce() != want {
		return fmt.Errorf("%w: address %s have %d want %d", ErrNonceMismatch, from.Hex(), tx.Nonce(), want)
	}
	_, err = c.apply(from, tx.To(), tx.Value(), tx.Data(), tx.Hash())
	return err
}

// SendImpersonated executes msg on behalf of an impersonated account and
// returns the transaction hash.
func (c *Chain) SendImpersonated(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.impersonated[msg.From]; !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrNotImpersonated, msg.From.Hex())
	}
	hash := syntheticTxHash(msg.From, c.nonce(msg.From), msg.To, msg.Value, msg.Data)
	receipt, err := c.apply(msg.From, msg.To, msg.Value, msg.Data, hash)
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

// Deploy creates a contract of className from deployer and mines the creation.
// A nil at derives the address from the deployer nonce; a fixed address is
// used to place contracts at well-known locations.
func (c *Chain) Deploy(ctx context.Context, deployer common.Address, className string, at *common.Address, args ...any) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	nonce := c.nonce(deployer)
	addr := crypto.CreateAddress(deployer, nonce)
	if at != nil {
		addr = *at
	}
	next := c.nextHeader()
	env := &execEnv{chain: c, header: next, origin: deployer}
	sn := c.state.Snapshot()
	if err := env.create(deployer, addr, className, args, 0); err != nil {
		c.state.Revert(sn)
		c.logger.Debug("deployment reverted", zap.String("class", className), zap.Error(err))
		return common.Address{}, err
	}
	c.setNonce(deployer, nonce+1)
	c.state.Commit(sn)
	hash := syntheticTxHash(deployer, nonce, nil, nil, []byte(className))
	receipt := c.seal(next, hash)
	receipt.ContractAddress = addr
	return addr, nil
}

func (c *Chain) apply(from common.Address, to *common.Address, value *big.Int, data []byte, hash common.Hash) (*types.Receipt, error) {
	if to == nil {
		return nil, errors.New("contract creation transactions are not supported, use Deploy")
	}
	next := c.nextHeader()
	env := &execEnv{chain: c, header: next, origin: from}
	nonce := c.nonce(from)
	sn := c.state.Snapshot()
	if _, err := env.call(from, *to, value, data, 0); err != nil {
		c.state.Revert(sn)
		c.logger.Debug("transaction reverted",
			zap.String("from", from.Hex()),
			zap.String("to", to.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	c.setNonce(from, nonce+1)
	c.state.Commit(sn)
	return c.seal(next, hash), nil
}

// seal mines header with the logs committed by the last transaction.
func (c *Chain) seal(header *types.Header, txHash common.Hash) *types.Receipt {
	header.TxHash = txHash
	blockHash := header.Hash()
	pending := c.state.drainLogs()
	logs := make([]*types.Log, 0, len(pending))
	for i, log := range pending {
		log.BlockNumber = header.Number.Uint64()
		log.BlockHash = blockHash
		log.TxHash = txHash
		log.Index = uint(i)
		logs = append(logs, log)
		c.logs = append(c.logs, *log)
	}
	c.headers = append(c.headers, header)
	receipt := &types.Receipt{
		Type:             types.DynamicFeeTxType,
		Status:           types.ReceiptStatusSuccessful,
		Logs:             logs,
		TxHash:           txHash,
		BlockHash:        blockHash,
		BlockNumber:      new(big.Int).Set(header.Number),
		TransactionIndex: 0,
	}
	c.receipts[txHash] = receipt
	c.logger.Debug("mined block",
		zap.Uint64("number", header.Number.Uint64()),
		zap.String("tx", txHash.Hex()),
		zap.Int("logs", len(logs)),
	)
	return receipt
}

func (c *Chain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func syntheticTxHash(from common.Address, nonce uint64, to *common.Address, value *big.Int, data []byte) common.Hash {
	parts := [][]byte{from.Bytes(), new(big.Int).SetUint64(nonce).Bytes()}
	if to != nil {
		parts = append(parts, to.Bytes())
	}
	if value != nil {
		parts = append(parts, value.Bytes())
	}
	parts = append(parts, data)
	return crypto.Keccak256Hash(parts...)
}
