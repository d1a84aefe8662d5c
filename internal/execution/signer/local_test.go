package signer

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Second hardhat dev account.
const (
	testPrivateKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testAddress    = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	ownerPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	ownerAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvPrivateKey, EnvPrivateKeyFile, EnvKeystorePath, EnvKeystorePassword, EnvKeystorePasswordFile} {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestNewLocalSignerFromEnvHex(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrivateKey, "0x"+testPrivateKey)
	s, err := NewLocalSignerFromEnv(KeySourceEnv)
	if err != nil {
		t.Fatalf("NewLocalSignerFromEnv failed: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("unexpected signer address %s", s.Address().Hex())
	}
	chainID := big.NewInt(31337)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		To:        ptrAddress(common.HexToAddress("0x0000000000000000000000000000000000000001")),
		Value:     big.NewInt(0),
		Gas:       21_000,
		GasTipCap: new(big.Int),
		GasFeeCap: new(big.Int),
	})
	signed, err := s.SignTx(chainID, tx)
	if err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}
	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil || sender != s.Address() {
		t.Fatalf("recovered sender %s err=%v", sender.Hex(), err)
	}
}

func TestNewLocalSignerFromEnvFile(t *testing.T) {
	clearKeyEnv(t)
	keyFile := filepath.Join(t.TempDir(), "key.txt")
	if err := os.WriteFile(keyFile, []byte(testPrivateKey+"\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv(EnvPrivateKeyFile, keyFile)

	s, err := NewLocalSignerFromEnv(KeySourceFile)
	if err != nil {
		t.Fatalf("NewLocalSignerFromEnv failed: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("unexpected signer address %s", s.Address().Hex())
	}
}

func TestNewLocalSignerFromEnvAutoUsesDefaultKeyFile(t *testing.T) {
	clearKeyEnv(t)
	cfgDir := t.TempDir()
	keyFile := filepath.Join(cfgDir, defaultPrivateKeyRelativePath)
	if err := os.MkdirAll(filepath.Dir(keyFile), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(keyFile, []byte(testPrivateKey), 0o644); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", cfgDir)

	s, err := NewLocalSignerFromEnv(KeySourceAuto)
	if err != nil {
		t.Fatalf("expected auto key-source to use default key path: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("unexpected signer address %s", s.Address().Hex())
	}
}

func TestNewLocalSignerFromKeystore(t *testing.T) {
	clearKeyEnv(t)
	pk, err := crypto.HexToECDSA(testPrivateKey)
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	key := &keystore.Key{Id: uuid.New(), Address: crypto.PubkeyToAddress(pk.PublicKey), PrivateKey: pk}
	blob, err := keystore.EncryptKey(key, "hunter2", keystore.LightScryptN, keystore.LightScryptP)
	if err != nil {
		t.Fatalf("encrypt key: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "keystore.json")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatalf("write keystore: %v", err)
	}
	passFile := filepath.Join(dir, "pass.txt")
	if err := os.WriteFile(passFile, []byte("hunter2\n"), 0o600); err != nil {
		t.Fatalf("write password: %v", err)
	}
	t.Setenv(EnvKeystorePath, path)
	t.Setenv(EnvKeystorePasswordFile, passFile)

	s, err := NewLocalSignerFromEnv(KeySourceKeystore)
	if err != nil {
		t.Fatalf("keystore signer failed: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("unexpected signer address %s", s.Address().Hex())
	}

	t.Setenv(EnvKeystorePasswordFile, "")
	if _, err := NewLocalSignerFromEnv(KeySourceKeystore); err == nil {
		t.Fatal("expected missing password error")
	}
}

func TestDevSourceRequiresKey(t *testing.T) {
	clearKeyEnv(t)
	if _, err := NewLocalSignerFromInputs(KeySourceDev, ""); err == nil {
		t.Fatal("expected dev source without key to fail")
	}
	s, err := NewLocalSignerFromInputs(KeySourceDev, testPrivateKey)
	if err != nil {
		t.Fatalf("dev signer failed: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("unexpected signer address %s", s.Address().Hex())
	}
}

func TestDevSourceIgnoresEnvironmentKeys(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrivateKey, ownerPrivateKey)
	s, err := NewLocalSignerFromInputs(KeySourceDev, "0x"+testPrivateKey)
	if err != nil {
		t.Fatalf("dev signer failed: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("dev source picked up %s", s.Address().Hex())
	}
	if _, err := NewLocalSignerFromInputs(KeySourceDev, "zz"); err == nil || !strings.Contains(err.Error(), "dev account") {
		t.Fatalf("expected dev account parse error, got %v", err)
	}
}

func TestAutoSourcePrefersEnvHexOverDefaultFile(t *testing.T) {
	clearKeyEnv(t)
	cfgDir := t.TempDir()
	keyFile := filepath.Join(cfgDir, defaultPrivateKeyRelativePath)
	if err := os.MkdirAll(filepath.Dir(keyFile), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(keyFile, []byte(testPrivateKey), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", cfgDir)
	t.Setenv(EnvPrivateKey, ownerPrivateKey)

	s, err := NewLocalSignerFromInputs(KeySourceAuto, "")
	if err != nil {
		t.Fatalf("auto signer failed: %v", err)
	}
	if s.Address() != common.HexToAddress(ownerAddress) {
		t.Fatalf("expected env key to win, got %s", s.Address().Hex())
	}

	s, err = NewLocalSignerFromInputs(KeySourceFile, "")
	if err != nil {
		t.Fatalf("file signer failed: %v", err)
	}
	if s.Address() != common.HexToAddress(testAddress) {
		t.Fatalf("expected default key file, got %s", s.Address().Hex())
	}
}

func TestNewLocalSignerFromInputsOverrideWinsOverFileSource(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrivateKeyFile, "/tmp/does-not-exist")
	s, err := NewLocalSignerFromInputs(KeySourceFile, testPrivateKey)
	if err != nil {
		t.Fatalf("expected private key override to win over file key-source: %v", err)
	}
	if s.Address() == (common.Address{}) {
		t.Fatal("expected non-zero signer address")
	}
}

func TestUnsupportedKeySource(t *testing.T) {
	clearKeyEnv(t)
	if _, err := NewLocalSignerFromInputs("ledger", ""); err == nil {
		t.Fatal("expected unsupported key source error")
	}
}

func TestMissingKeyErrorNamesOptions(t *testing.T) {
	clearKeyEnv(t)
	_, err := NewLocalSignerFromInputs(KeySourceAuto, "")
	if err == nil {
		t.Fatal("expected missing key error")
	}
	msg := err.Error()
	for _, want := range []string{EnvPrivateKey, defaultPrivateKeyRelativePath, "--key-source dev"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected missing key message to include %q, got: %s", want, msg)
		}
	}
}

func ptrAddress(v common.Address) *common.Address { return &v }
