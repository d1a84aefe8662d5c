package execution

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution/signer"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

// Backend is the slice of a chain client the executor needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*ledger.Chain)(nil)

type ExecuteOptions struct {
	Simulate      bool
	PollInterval  time.Duration
	StepTimeout   time.Duration
	GasLimit      uint64
	WalletFactory common.Address
}

func DefaultExecuteOptions() ExecuteOptions {
	return ExecuteOptions{
		Simulate:     true,
		PollInterval: 50 * time.Millisecond,
		StepTimeout:  30 * time.Second,
		GasLimit:     30_000_000,
	}
}

type Executor struct {
	backend Backend
	store   *Store
	logger  *zap.Logger
}

// NewExecutor wires an executor. store may be nil, in which case progress is
// not persisted.
func NewExecutor(backend Backend, store *Store, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{backend: backend, store: store, logger: logger}
}

func (e *Executor) save(action *Action) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(*action); err != nil {
		e.logger.Warn("persist action", zap.String("action_id", action.ActionID), zap.Error(err))
	}
}

// ExecuteAction runs every unconfirmed step of action in order. A failed step
// stops the action; confirmed steps are skipped on resume.
func (e *Executor) ExecuteAction(ctx context.Context, action *Action, txSigner signer.Signer, opts ExecuteOptions) error {
	if action == nil {
		return clierr.New(clierr.CodeInternal, "missing action")
	}
	if txSigner == nil {
		return clierr.New(clierr.CodeSigner, "missing signer")
	}
	if len(action.Steps) == 0 {
		return clierr.New(clierr.CodeUsage, "action has no executable steps")
	}
	if action.FromAddress != "" && !strings.EqualFold(action.FromAddress, txSigner.Address().Hex()) {
		return clierr.New(clierr.CodeSigner, fmt.Sprintf("action was planned for %s but signer is %s", action.FromAddress, txSigner.Address().Hex()))
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 30 * time.Second
	}
	if opts.GasLimit == 0 {
		opts.GasLimit = 30_000_000
	}
	action.Status = ActionStatusRunning
	action.FromAddress = txSigner.Address().Hex()
	action.Touch()
	e.save(action)

	for i := range action.Steps {
		step := &action.Steps[i]
		if step.Status == StepStatusConfirmed {
			continue
		}
		log := e.logger.With(
			zap.String("action_id", action.ActionID),
			zap.String("step_id", step.StepID),
			zap.String("type", string(step.Type)),
		)
		if err := e.executeStep(ctx, txSigner, step, opts); err != nil {
			markStepFailed(action, step, err)
			e.save(action)
			log.Info("step failed", zap.Error(err))
			return err
		}
		log.Debug("step confirmed", zap.String("tx", step.TxHash), zap.Uint64("block", step.BlockNumber))
		action.Touch()
		e.save(action)
	}
	action.Status = ActionStatusCompleted
	action.Touch()
	e.save(action)
	return nil
}

func (e *Executor) executeStep(ctx context.Context, txSigner signer.Signer, step *ActionStep, opts ExecuteOptions) error {
	chainID, err := e.backend.ChainID(ctx)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "read chain id", err)
	}
	if step.ChainID != "" {
		expected := id.CAIP2(chainID.Int64())
		if !strings.EqualFold(strings.TrimSpace(step.ChainID), expected) {
			return clierr.New(clierr.CodeActionPlan, fmt.Sprintf("step chain mismatch: expected %s, got %s", expected, step.ChainID))
		}
	}
	data, err := decodeHex(step.Data)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "decode step calldata", err)
	}
	value, ok := parseBaseUnits(step.Value)
	if !ok {
		return clierr.New(clierr.CodeUsage, "invalid step value")
	}
	if err := validateStepPolicy(step, data, value, opts); err != nil {
		return err
	}
	target := common.HexToAddress(step.Target)
	msg := ethereum.CallMsg{From: txSigner.Address(), To: &target, Value: value, Data: data}

	if opts.Simulate {
		if _, err := e.backend.CallContract(ctx, msg, nil); err != nil {
			return wrapChainError(clierr.CodeActionSim, "simulate step "+step.StepID, err)
		}
		step.Status = StepStatusSimulated
	}

	header, err := e.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "fetch latest header", err)
	}
	feeCap := header.BaseFee
	if feeCap == nil {
		feeCap = new(big.Int)
	}
	nonce, err := e.backend.PendingNonceAt(ctx, txSigner.Address())
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "fetch nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int).Set(feeCap),
		Gas:       opts.GasLimit,
		To:        &target,
		Value:     value,
		Data:      data,
	})
	signed, err := txSigner.SignTx(chainID, tx)
	if err != nil {
		return clierr.Wrap(clierr.CodeSigner, "sign transaction", err)
	}
	if err := e.backend.SendTransaction(ctx, signed); err != nil {
		return wrapChainError(clierr.CodeReverted, "send step "+step.StepID, err)
	}
	step.Status = StepStatusSubmitted
	step.TxHash = signed.Hash().Hex()

	receipt, err := e.waitReceipt(ctx, signed.Hash(), opts)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return clierr.New(clierr.CodeReverted, "transaction reverted on-chain")
	}
	step.Status = StepStatusConfirmed
	step.BlockNumber = receipt.BlockNumber.Uint64()
	step.LogCount = len(receipt.Logs)
	return nil
}

func (e *Executor) waitReceipt(ctx context.Context, hash common.Hash, opts ExecuteOptions) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, opts.StepTimeout)
	defer cancel()
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()
	for {
		receipt, err := e.backend.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			e.logger.Debug("receipt poll failed", zap.String("tx", hash.Hex()), zap.Error(err))
		}
		select {
		case <-waitCtx.Done():
			return nil, clierr.Wrap(clierr.CodeActionTimeout, "timed out waiting for receipt", waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// wrapChainError keeps the revert classification of contract failures and
// files everything else under fallback.
func wrapChainError(fallback clierr.Code, message string, err error) error {
	if _, ok := ledger.RevertReason(err); ok {
		return clierr.FromLedger(message, err)
	}
	if classified := clierr.FromLedger(message, err); classified.Code != clierr.CodeInternal {
		return classified
	}
	return clierr.Wrap(fallback, message, err)
}

func markStepFailed(action *Action, step *ActionStep, err error) {
	step.Status = StepStatusFailed
	step.Error = err.Error()
	if reason, ok := ledger.RevertReason(err); ok {
		step.RevertReason = reason
	}
	action.Status = ActionStatusFailed
	action.Touch()
}

func decodeHex(v string) ([]byte, error) {
	clean := strings.TrimSpace(v)
	clean = strings.TrimPrefix(clean, "0x")
	if clean == "" {
		return []byte{}, nil
	}
	if len(clean)%2 != 0 {
		clean = "0" + clean
	}
	buf, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return buf, nil
}
