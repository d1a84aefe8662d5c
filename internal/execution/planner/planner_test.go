package planner

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/wallet"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

var (
	testSender = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	testWallet = common.HexToAddress("0x00000000000000000000000000000000000000BB")
)

func walletRequest() WalletRequest {
	return WalletRequest{Base: Base{ChainID: 31337, Sender: testSender, Simulate: true}, Wallet: testWallet}
}

func asset(t *testing.T, symbol string) id.Asset {
	t.Helper()
	a, err := id.ParseAsset(symbol, registry.Mainnet(), 31337)
	if err != nil {
		t.Fatalf("parse asset %s: %v", symbol, err)
	}
	return a
}

func decodeStep(t *testing.T, step execution.ActionStep, method string) []any {
	t.Helper()
	data := common.FromHex(step.Data)
	var contractMethod = wallet.ABI.Methods[method]
	if step.Type == execution.StepTypeFactoryCall {
		contractMethod = wallet.FactoryABI.Methods[method]
	}
	if step.Type == execution.StepTypeTokenTransfer {
		contractMethod = erc20.ABI.Methods[method]
	}
	if len(data) < 4 || string(data[:4]) != string(contractMethod.ID) {
		t.Fatalf("step %s does not call %s", step.StepID, method)
	}
	args, err := contractMethod.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack %s: %v", method, err)
	}
	return args
}

func TestBuildCreateWalletAction(t *testing.T) {
	factory := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	action, err := BuildCreateWalletAction(CreateWalletRequest{Base: Base{ChainID: 31337, Sender: testSender}, Factory: factory})
	if err != nil {
		t.Fatalf("BuildCreateWalletAction failed: %v", err)
	}
	if action.IntentType != "wallet_create" || action.ChainID != "eip155:31337" {
		t.Fatalf("unexpected action: %+v", action)
	}
	if len(action.Steps) != 1 || action.Steps[0].Target != factory.Hex() {
		t.Fatalf("unexpected steps: %+v", action.Steps)
	}
	decodeStep(t, action.Steps[0], "createWallet")
	if !strings.HasPrefix(action.ActionID, "act_") || action.FromAddress != testSender.Hex() {
		t.Fatalf("unexpected action identity: %s %s", action.ActionID, action.FromAddress)
	}
}

func TestBuildDepositActionIsPayable(t *testing.T) {
	action, err := BuildDepositAction(DepositRequest{WalletRequest: walletRequest(), Amount: big.NewInt(1e18)})
	if err != nil {
		t.Fatalf("BuildDepositAction failed: %v", err)
	}
	step := action.Steps[0]
	if step.Value != "1000000000000000000" || step.Method != "deposit" {
		t.Fatalf("unexpected deposit step: %+v", step)
	}
	if !strings.Contains(step.Description, "1 ETH") {
		t.Fatalf("unexpected description %q", step.Description)
	}
}

func TestBuildWithdrawAllowsZero(t *testing.T) {
	action, err := BuildWithdrawAction(WithdrawRequest{WalletRequest: walletRequest(), Amount: new(big.Int)})
	if err != nil {
		t.Fatalf("BuildWithdrawAction failed: %v", err)
	}
	args := decodeStep(t, action.Steps[0], "withdraw")
	if args[0].(*big.Int).Sign() != 0 || action.Steps[0].Value != "0" {
		t.Fatalf("unexpected withdraw args %v", args)
	}
	if _, err := BuildWithdrawAction(WithdrawRequest{WalletRequest: walletRequest(), Amount: big.NewInt(-1)}); err == nil {
		t.Fatal("expected negative amount to fail")
	}
}

func TestBuildTransferETHAction(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000CC")
	action, err := BuildTransferETHAction(TransferETHRequest{WalletRequest: walletRequest(), To: to, Amount: big.NewInt(5)})
	if err != nil {
		t.Fatalf("BuildTransferETHAction failed: %v", err)
	}
	args := decodeStep(t, action.Steps[0], "transferETHAmount")
	if args[0].(common.Address) != to || args[1].(*big.Int).Int64() != 5 {
		t.Fatalf("unexpected transfer args %v", args)
	}
	if _, err := BuildTransferETHAction(TransferETHRequest{WalletRequest: walletRequest(), Amount: big.NewInt(5)}); err == nil {
		t.Fatal("expected missing recipient to fail")
	}
}

func TestBuildWithdrawERC20Action(t *testing.T) {
	sushi := asset(t, "SUSHI")
	action, err := BuildWithdrawERC20Action(WithdrawERC20Request{WalletRequest: walletRequest(), Token: sushi, Amount: big.NewInt(7)})
	if err != nil {
		t.Fatalf("BuildWithdrawERC20Action failed: %v", err)
	}
	args := decodeStep(t, action.Steps[0], "withdrawERC20")
	if args[0].(common.Address) != sushi.Address {
		t.Fatalf("unexpected token arg %v", args[0])
	}
	if _, err := BuildWithdrawERC20Action(WithdrawERC20Request{WalletRequest: walletRequest(), Token: asset(t, "ETH"), Amount: big.NewInt(1)}); err == nil {
		t.Fatal("expected native asset to be rejected")
	}
}

func TestBuildEnterAndExitFarm(t *testing.T) {
	cvx, weth := asset(t, "CVX"), asset(t, "WETH")
	enter, err := BuildEnterFarmAction(EnterFarmRequest{
		WalletRequest: walletRequest(),
		TokenA:        cvx,
		TokenB:        weth,
		AmountA:       big.NewInt(1000),
		AmountB:       big.NewInt(5),
		Deadline:      1_700_000_600,
	})
	if err != nil {
		t.Fatalf("BuildEnterFarmAction failed: %v", err)
	}
	args := decodeStep(t, enter.Steps[0], "executeYieldFarming")
	if args[0].(common.Address) != cvx.Address || args[4].(*big.Int).Uint64() != 1_700_000_600 {
		t.Fatalf("unexpected farming args %v", args)
	}
	if enter.Constraints.Deadline != "1700000600" {
		t.Fatalf("unexpected deadline constraint %q", enter.Constraints.Deadline)
	}

	exit, err := BuildExitFarmAction(ExitFarmRequest{WalletRequest: walletRequest(), TokenA: cvx, TokenB: weth, LPAmount: big.NewInt(42)})
	if err != nil {
		t.Fatalf("BuildExitFarmAction failed: %v", err)
	}
	args = decodeStep(t, exit.Steps[0], "withdrawFromYieldFarming")
	if args[2].(*big.Int).Int64() != 42 {
		t.Fatalf("unexpected lp amount %v", args[2])
	}
}

func TestBuildEnterFarmValidation(t *testing.T) {
	cvx := asset(t, "CVX")
	_, err := BuildEnterFarmAction(EnterFarmRequest{
		WalletRequest: walletRequest(),
		TokenA:        cvx,
		TokenB:        cvx,
		AmountA:       big.NewInt(1),
		AmountB:       big.NewInt(1),
		Deadline:      1,
	})
	cliErr, ok := clierr.As(err)
	if !ok || cliErr.Code != clierr.CodeUsage {
		t.Fatalf("expected usage error for identical tokens, got %v", err)
	}
	_, err = BuildEnterFarmAction(EnterFarmRequest{
		WalletRequest: walletRequest(),
		TokenA:        asset(t, "ETH"),
		TokenB:        cvx,
		AmountA:       big.NewInt(1),
		AmountB:       big.NewInt(1),
		Deadline:      1,
	})
	if err == nil {
		t.Fatal("expected native token to be rejected")
	}
}

func TestBuildFundAction(t *testing.T) {
	eth, err := BuildFundAction(FundRequest{WalletRequest: walletRequest(), Asset: asset(t, "ETH"), Amount: big.NewInt(9)})
	if err != nil {
		t.Fatalf("BuildFundAction(ETH) failed: %v", err)
	}
	if eth.Steps[0].Type != execution.StepTypeNativeTransfer || eth.Steps[0].Target != testWallet.Hex() || eth.Steps[0].Value != "9" {
		t.Fatalf("unexpected native fund step %+v", eth.Steps[0])
	}
	usdc := asset(t, "USDC")
	token, err := BuildFundAction(FundRequest{WalletRequest: walletRequest(), Asset: usdc, Amount: big.NewInt(9)})
	if err != nil {
		t.Fatalf("BuildFundAction(USDC) failed: %v", err)
	}
	if token.Steps[0].Target != usdc.Address.Hex() {
		t.Fatalf("token transfer must target the token, got %s", token.Steps[0].Target)
	}
	args := decodeStep(t, token.Steps[0], "transfer")
	if args[0].(common.Address) != testWallet {
		t.Fatalf("unexpected recipient %v", args[0])
	}
}

func TestPlannerRequiresSender(t *testing.T) {
	req := walletRequest()
	req.Sender = common.Address{}
	if _, err := BuildDepositAction(DepositRequest{WalletRequest: req, Amount: big.NewInt(1)}); err == nil {
		t.Fatal("expected missing sender to fail")
	}
}
