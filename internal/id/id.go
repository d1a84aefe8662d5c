package id

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const NativeSymbol = "ETH"

var (
	evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	eip155AssetPattern = regexp.MustCompile(`^eip155:([0-9]+)/erc20:(0x[0-9a-fA-F]{40})$`)
)

// Asset is a token (or the native currency) resolved against a deployment.
type Asset struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
	Native   bool
}

// NewRequestID returns the identifier echoed in every response envelope.
func NewRequestID() string {
	return uuid.NewString()
}

// CAIP2 renders an EVM chain id in CAIP-2 form.
func CAIP2(chainID int64) string {
	return "eip155:" + strconv.FormatInt(chainID, 10)
}

// ParseAddress validates a hex address given for flag.
func ParseAddress(input, flag string) (common.Address, error) {
	clean := strings.TrimSpace(input)
	if clean == "" {
		return common.Address{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("--%s is required", flag))
	}
	if !evmAddressPattern.MatchString(clean) {
		return common.Address{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("--%s must be a 0x-prefixed 20 byte address", flag))
	}
	return common.HexToAddress(clean), nil
}

// ParseAsset accepts ETH, a deployment symbol, a hex address or a CAIP-19
// erc20 asset id on chainID.
func ParseAsset(input string, d registry.Deployment, chainID int64) (Asset, error) {
	clean := strings.TrimSpace(input)
	if clean == "" {
		return Asset{}, clierr.New(clierr.CodeUsage, "asset is required")
	}
	if strings.EqualFold(clean, NativeSymbol) {
		return Asset{Symbol: NativeSymbol, Decimals: 18, Native: true}, nil
	}
	if m := eip155AssetPattern.FindStringSubmatch(clean); m != nil {
		if m[1] != strconv.FormatInt(chainID, 10) {
			return Asset{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("asset chain %s does not match %s", m[1], CAIP2(chainID)))
		}
		clean = m[2]
	}
	token, ok := d.Token(clean)
	if !ok {
		return Asset{}, clierr.New(clierr.CodeNotFound, fmt.Sprintf("unknown asset %q", input))
	}
	return Asset{Symbol: token.Symbol, Address: token.Address, Decimals: token.Decimals}, nil
}

// AssetID renders the CAIP-19 id of a token asset.
func (a Asset) AssetID(chainID int64) string {
	if a.Native {
		return CAIP2(chainID) + "/slip44:60"
	}
	return CAIP2(chainID) + "/erc20:" + strings.ToLower(a.Address.Hex())
}
