package id

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

func TestParseAssetSymbolAddressAndCAIP19(t *testing.T) {
	d := registry.Mainnet()

	asset, err := ParseAsset("usdc", d, 31337)
	if err != nil {
		t.Fatalf("ParseAsset(usdc) failed: %v", err)
	}
	if asset.Symbol != "USDC" || asset.Decimals != 6 {
		t.Fatalf("unexpected asset result: %+v", asset)
	}

	byAddr, err := ParseAsset("0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48", d, 31337)
	if err != nil {
		t.Fatalf("ParseAsset(address) failed: %v", err)
	}
	if byAddr.Symbol != "USDC" {
		t.Fatalf("expected USDC, got %s", byAddr.Symbol)
	}

	caip, err := ParseAsset(asset.AssetID(31337), d, 31337)
	if err != nil {
		t.Fatalf("ParseAsset(caip19) failed: %v", err)
	}
	if caip.Address != asset.Address {
		t.Fatalf("caip19 round trip mismatch: %s", caip.Address.Hex())
	}
}

func TestParseAssetNativeAndErrors(t *testing.T) {
	d := registry.Mainnet()
	native, err := ParseAsset("eth", d, 31337)
	if err != nil || !native.Native || native.Decimals != 18 {
		t.Fatalf("unexpected native asset %+v err=%v", native, err)
	}
	if _, err := ParseAsset("eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", d, 31337); err == nil {
		t.Fatal("expected chain mismatch error")
	}
	_, err = ParseAsset("DOGE", d, 31337)
	cliErr, ok := clierr.As(err)
	if !ok || cliErr.Code != clierr.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266 ", "to")
	if err != nil {
		t.Fatalf("ParseAddress failed: %v", err)
	}
	if addr != common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266") {
		t.Fatalf("unexpected address %s", addr.Hex())
	}
	if _, err := ParseAddress("0x1234", "to"); err == nil {
		t.Fatal("expected short address to fail")
	}
	if _, err := ParseAddress("", "to"); err == nil {
		t.Fatal("expected missing address to fail")
	}
}

func TestNewRequestIDUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == b || len(a) != 36 {
		t.Fatalf("unexpected request ids %q %q", a, b)
	}
}
