package app

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ggonzalez94/sushi-wallet/internal/version"
)

// cliHarness runs commands against one temporary chain state.
type cliHarness struct {
	t         *testing.T
	statePath string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return &cliHarness{t: t, statePath: filepath.Join(dir, "state", "chain.db")}
}

func (h *cliHarness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run(append(args, "--state-path", h.statePath))
	return code, stdout.String(), stderr.String()
}

// results runs a command that must succeed and decodes its data payload.
func (h *cliHarness) results(out any, args ...string) {
	h.t.Helper()
	code, stdout, stderr := h.run(append(args, "--results-only")...)
	require.Equal(h.t, 0, code, "stderr=%s", stderr)
	require.NoError(h.t, json.Unmarshal([]byte(stdout), out), "output=%s", stdout)
}

func errorEnvelope(t *testing.T, stderr string) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(stderr), &env), "output=%s", stderr)
	require.Equal(t, false, env["success"])
	body, ok := env["error"].(map[string]any)
	require.True(t, ok, "missing error body: %v", env)
	return body
}

func TestTrimRootPath(t *testing.T) {
	if got := trimRootPath("sushiwallet wallet deposit"); got != "wallet deposit" {
		t.Fatalf("unexpected trim result: %s", got)
	}
}

func TestRunnerVersion(t *testing.T) {
	h := newHarness(t)
	code, stdout, stderr := h.run("version")
	require.Equal(t, 0, code, "stderr=%s", stderr)
	require.Equal(t, version.CLIVersion, strings.TrimSpace(stdout))
}

func TestRunnerSchemaMarksMutatingCommands(t *testing.T) {
	h := newHarness(t)
	var deposit map[string]any
	h.results(&deposit, "schema", "wallet", "deposit")
	require.Equal(t, true, deposit["mutating"])

	var info map[string]any
	h.results(&info, "schema", "wallet", "info")
	require.Equal(t, false, info["mutating"])
}

func TestRunnerErrorEnvelopeIgnoresResultsOnly(t *testing.T) {
	h := newHarness(t)
	code, _, stderr := h.run("network", "info", "--enable-commands", "wallet info", "--results-only")
	require.Equal(t, 16, code, "stderr=%s", stderr)
	body := errorEnvelope(t, stderr)
	require.Equal(t, "command_blocked", body["type"])
}

func TestRunnerNetworkInitIsIdempotent(t *testing.T) {
	h := newHarness(t)
	var first map[string]any
	h.results(&first, "network", "init")
	require.Equal(t, float64(31337), first["chain_id"])
	require.Len(t, first["farms"], 2)

	code, stdout, stderr := h.run("network", "init")
	require.Equal(t, 0, code, "stderr=%s", stderr)
	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	require.NotEmpty(t, env["warnings"])
	data := env["data"].(map[string]any)
	require.Equal(t, first["block_number"], data["block_number"])
}

func TestRunnerWalletLifecycle(t *testing.T) {
	h := newHarness(t)

	var created struct {
		Action struct {
			ActionID string `json:"action_id"`
			Status   string `json:"status"`
		} `json:"action"`
		Wallet struct {
			Address string `json:"address"`
			Owner   string `json:"owner"`
		} `json:"wallet"`
	}
	h.results(&created, "wallet", "create")
	require.Equal(t, "completed", created.Action.Status)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", created.Wallet.Owner)
	require.NotEmpty(t, created.Wallet.Address)

	var deposited struct {
		Wallet struct {
			Balance struct {
				BaseUnits string `json:"base_units"`
			} `json:"balance"`
		} `json:"wallet"`
	}
	h.results(&deposited, "wallet", "deposit", "--amount-decimal", "1.5")
	require.Equal(t, "1500000000000000000", deposited.Wallet.Balance.BaseUnits)

	code, _, stderr := h.run("wallet", "withdraw", "--wallet", created.Wallet.Address, "--dev-account", "1", "--amount", "1")
	require.Equal(t, 10, code, "stderr=%s", stderr)
	body := errorEnvelope(t, stderr)
	require.Equal(t, "unauthorized", body["type"])
	require.Equal(t, "Only the owner can perform this action", body["revert_reason"])

	var info struct {
		Balance struct {
			BaseUnits string `json:"base_units"`
		} `json:"balance"`
	}
	h.results(&info, "wallet", "info", "--owner", created.Wallet.Owner)
	require.Equal(t, "1500000000000000000", info.Balance.BaseUnits)

	var logs []struct {
		Event  string         `json:"event"`
		Fields map[string]any `json:"fields"`
	}
	h.results(&logs, "chain", "logs", "--address", created.Wallet.Address, "--event", "Deposited")
	require.Len(t, logs, 1)
	require.Equal(t, "Deposited", logs[0].Event)
	require.Equal(t, "1500000000000000000", logs[0].Fields["amount"])

	var actions []struct {
		IntentType string `json:"intent_type"`
		Status     string `json:"status"`
	}
	h.results(&actions, "actions", "list")
	require.Len(t, actions, 3)
	statuses := map[string]string{}
	for _, action := range actions {
		statuses[action.IntentType] = action.Status
	}
	require.Equal(t, "completed", statuses["wallet_create"])
	require.Equal(t, "completed", statuses["wallet_deposit"])
	require.Equal(t, "failed", statuses["wallet_withdraw"])

	var shown struct {
		ActionID string `json:"action_id"`
	}
	h.results(&shown, "actions", "show", created.Action.ActionID)
	require.Equal(t, created.Action.ActionID, shown.ActionID)
}

func TestRunnerWalletInfoWithoutWallet(t *testing.T) {
	h := newHarness(t)
	code, _, stderr := h.run("wallet", "info", "--dev-account", "2")
	require.Equal(t, 13, code, "stderr=%s", stderr)
	require.Equal(t, "not_found", errorEnvelope(t, stderr)["type"])
}

func TestRunnerChainMineAndSetBalance(t *testing.T) {
	h := newHarness(t)
	var before map[string]any
	h.results(&before, "chain", "block")

	var mined map[string]any
	h.results(&mined, "chain", "mine", "--blocks", "5")
	require.Equal(t, before["number"].(float64)+5, mined["number"])

	target := "0x000000000000000000000000000000000000dEaD"
	var balance struct {
		Amount struct {
			Decimal string `json:"decimal"`
		} `json:"amount"`
	}
	h.results(&balance, "chain", "set-balance", "--address", target, "--amount-decimal", "3")
	require.Equal(t, "3", balance.Amount.Decimal)

	h.results(&balance, "chain", "balance", "--address", target)
	require.Equal(t, "3", balance.Amount.Decimal)
}

func TestRunnerFarmRoundTrip(t *testing.T) {
	h := newHarness(t)
	var created struct {
		Wallet struct {
			Address string `json:"address"`
		} `json:"wallet"`
	}
	h.results(&created, "wallet", "create")

	var funded map[string]any
	h.results(&funded, "wallet", "fund", "--asset", "USDC", "--from-whale", "--amount-decimal", "2000")
	h.results(&funded, "wallet", "fund", "--asset", "WETH", "--from-whale", "--amount-decimal", "1")

	var entered struct {
		Action struct {
			Status string `json:"status"`
		} `json:"action"`
		Position struct {
			Version  uint8 `json:"version"`
			Deployed bool  `json:"deployed"`
		} `json:"position"`
	}
	h.results(&entered, "farm", "enter", "--token-a", "USDC", "--token-b", "WETH", "--amount-a-decimal", "1000", "--amount-b-decimal", "0.5")
	require.Equal(t, "completed", entered.Action.Status)
	require.True(t, entered.Position.Deployed)
	require.Equal(t, uint8(1), entered.Position.Version)

	var exited struct {
		Position struct {
			Deployed bool `json:"deployed"`
		} `json:"position"`
	}
	h.results(&exited, "farm", "exit", "--token-a", "USDC", "--token-b", "WETH", "--all")
	require.False(t, exited.Position.Deployed)
}
