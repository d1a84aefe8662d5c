package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	EnvPrivateKey           = "SUSHIWALLET_PRIVATE_KEY"
	EnvPrivateKeyFile       = "SUSHIWALLET_PRIVATE_KEY_FILE"
	EnvKeystorePath         = "SUSHIWALLET_KEYSTORE_PATH"
	EnvKeystorePassword     = "SUSHIWALLET_KEYSTORE_PASSWORD"
	EnvKeystorePasswordFile = "SUSHIWALLET_KEYSTORE_PASSWORD_FILE"

	KeySourceAuto     = "auto"
	KeySourceDev      = "dev"
	KeySourceEnv      = "env"
	KeySourceFile     = "file"
	KeySourceKeystore = "keystore"

	defaultPrivateKeyRelativePath = "sushiwallet/key.hex"
)

var errNoKey = errors.New("no key")

// LocalSigner signs wallet transactions with an in-memory secp256k1 key.
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func newLocalSigner(pk *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{privateKey: pk, address: crypto.PubkeyToAddress(pk.PublicKey)}
}

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	if s == nil || s.privateKey == nil {
		return nil, errors.New("local signer is not initialized")
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.privateKey)
}

// keyInputs is the key material visible to a loader. Dev holds the funded
// dev account key the caller picked with --dev-account.
type keyInputs struct {
	Dev              string
	Hex              string
	File             string
	Keystore         string
	Password         string
	PasswordFile     string
	defaultFileFound bool
}

func inputsFromEnv() keyInputs {
	in := keyInputs{
		Hex:          env(EnvPrivateKey),
		File:         env(EnvPrivateKeyFile),
		Keystore:     env(EnvKeystorePath),
		Password:     env(EnvKeystorePassword),
		PasswordFile: env(EnvKeystorePasswordFile),
	}
	if in.File == "" {
		in.File = defaultKeyFile()
		in.defaultFileFound = in.File != ""
	}
	return in
}

func env(name string) string { return strings.TrimSpace(os.Getenv(name)) }

type keyLoader func(keyInputs) (*ecdsa.PrivateKey, error)

// loadersBySource lists the loaders each key source tries, in order.
var loadersBySource = map[string][]keyLoader{
	KeySourceAuto:     {loadHex, loadFile, loadKeystore},
	KeySourceDev:      {loadDev},
	KeySourceEnv:      {loadHex},
	KeySourceFile:     {loadFile},
	KeySourceKeystore: {loadKeystore},
}

// NewLocalSignerFromEnv resolves a signer from the SUSHIWALLET_* variables.
func NewLocalSignerFromEnv(source string) (*LocalSigner, error) {
	return NewLocalSignerFromInputs(source, "")
}

// NewLocalSignerFromInputs resolves a signer for source. A non-empty
// privateKeyOverride wins over anything the environment supplies; for the dev
// source it is the only input, resolved by the caller from the dev accounts.
func NewLocalSignerFromInputs(source, privateKeyOverride string) (*LocalSigner, error) {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = KeySourceAuto
	}
	loaders, ok := loadersBySource[source]
	if !ok {
		return nil, fmt.Errorf("unsupported key source %q (expected %s|%s|%s|%s|%s)", source, KeySourceAuto, KeySourceDev, KeySourceEnv, KeySourceFile, KeySourceKeystore)
	}
	override := strings.TrimSpace(privateKeyOverride)
	if source == KeySourceDev {
		return resolve(loaders, keyInputs{Dev: override}, source)
	}
	if override != "" {
		return resolve([]keyLoader{loadHex}, keyInputs{Hex: override}, source)
	}
	return resolve(loaders, inputsFromEnv(), source)
}

func resolve(loaders []keyLoader, in keyInputs, source string) (*LocalSigner, error) {
	for _, load := range loaders {
		pk, err := load(in)
		if errors.Is(err, errNoKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return newLocalSigner(pk), nil
	}
	if source == KeySourceDev {
		return nil, errors.New("dev key source requires a dev account key")
	}
	return nil, fmt.Errorf("missing signing key: set %s, %s or %s, write $XDG_CONFIG_HOME/%s, or use --key-source dev", EnvPrivateKey, EnvPrivateKeyFile, EnvKeystorePath, defaultPrivateKeyRelativePath)
}

func loadDev(in keyInputs) (*ecdsa.PrivateKey, error) {
	if in.Dev == "" {
		return nil, errNoKey
	}
	pk, err := parseHexKey(in.Dev)
	if err != nil {
		return nil, fmt.Errorf("dev account: %w", err)
	}
	return pk, nil
}

func loadHex(in keyInputs) (*ecdsa.PrivateKey, error) {
	if in.Hex == "" {
		return nil, errNoKey
	}
	return parseHexKey(in.Hex)
}

func loadFile(in keyInputs) (*ecdsa.PrivateKey, error) {
	if in.File == "" {
		return nil, errNoKey
	}
	buf, err := os.ReadFile(in.File)
	if err != nil {
		return nil, fmt.Errorf("read private key file: %w", err)
	}
	pk, err := parseHexKey(string(buf))
	if err != nil && in.defaultFileFound {
		return nil, fmt.Errorf("%s: %w", in.File, err)
	}
	return pk, err
}

func loadKeystore(in keyInputs) (*ecdsa.PrivateKey, error) {
	if in.Keystore == "" {
		return nil, errNoKey
	}
	password := in.Password
	if password == "" && in.PasswordFile != "" {
		buf, err := os.ReadFile(in.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("read keystore password file: %w", err)
		}
		password = strings.TrimSpace(string(buf))
	}
	if password == "" {
		return nil, errors.New("keystore password is required")
	}
	blob, err := os.ReadFile(in.Keystore)
	if err != nil {
		return nil, fmt.Errorf("read keystore file: %w", err)
	}
	key, err := keystore.DecryptKey(blob, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}

func parseHexKey(raw string) (*ecdsa.PrivateKey, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if clean == "" {
		return nil, errors.New("empty private key")
	}
	pk, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return pk, nil
}

// defaultKeyFile returns $XDG_CONFIG_HOME/sushiwallet/key.hex when it exists.
func defaultKeyFile() string {
	base := env("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	path := filepath.Join(base, defaultPrivateKeyRelativePath)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
