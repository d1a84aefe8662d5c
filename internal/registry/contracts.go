package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token describes an ERC-20 deployed by the network fixture.
type Token struct {
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// Deployment is the set of well-known contract addresses the wallet works with.
type Deployment struct {
	SushiFactory common.Address `json:"sushi_factory"`
	SushiRouter  common.Address `json:"sushi_router"`
	MasterChefV1 common.Address `json:"master_chef_v1"`
	MasterChefV2 common.Address `json:"master_chef_v2"`
	Tokens       []Token        `json:"tokens"`
}

// Canonical Ethereum mainnet Sushi deployment.
var mainnet = Deployment{
	SushiFactory: common.HexToAddress("0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac"),
	SushiRouter:  common.HexToAddress("0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F"),
	MasterChefV1: common.HexToAddress("0xc2EdaD668740f1aA35E4D8f227fB8E17dcA888Cd"),
	MasterChefV2: common.HexToAddress("0xEF0881eC094552b2e128Cf945EF7a3f5A7B9D86A"),
	Tokens: []Token{
		{Symbol: "USDC", Name: "USD Coin", Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6},
		{Symbol: "WETH", Name: "Wrapped Ether", Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Decimals: 18},
		{Symbol: "CVX", Name: "Convex Token", Address: common.HexToAddress("0x4e3FBD56CD56c3e72c1403e103b45Db9da5B9D2B"), Decimals: 18},
		{Symbol: "SUSHI", Name: "SushiToken", Address: common.HexToAddress("0x6B3595068778DD592e39A122f4f5a5cF09C90fE2"), Decimals: 18},
	},
}

// SushiPairInitCodeHash is the keccak of the Sushi pair creation code, used to
// derive pair addresses with CREATE2.
var SushiPairInitCodeHash = common.HexToHash("0xe18a34eb0e04b04f7a0ac29a6e80748dca96319b42c520bfb5f7fed5a22c2bd9")

func Mainnet() Deployment {
	out := mainnet
	out.Tokens = append([]Token(nil), mainnet.Tokens...)
	return out
}

// Token resolves a token by symbol (case-insensitive) or hex address.
func (d Deployment) Token(input string) (Token, bool) {
	input = strings.TrimSpace(input)
	if common.IsHexAddress(input) {
		return d.TokenByAddress(common.HexToAddress(input))
	}
	for _, token := range d.Tokens {
		if strings.EqualFold(token.Symbol, input) {
			return token, true
		}
	}
	return Token{}, false
}

func (d Deployment) TokenByAddress(addr common.Address) (Token, bool) {
	for _, token := range d.Tokens {
		if token.Address == addr {
			return token, true
		}
	}
	return Token{}, false
}

// MustToken panics when symbol is not part of the deployment.
func (d Deployment) MustToken(symbol string) Token {
	token, ok := d.Token(symbol)
	if !ok {
		panic(fmt.Sprintf("registry: unknown token %q", symbol))
	}
	return token
}

// WithToken returns a copy of d with the address of symbol replaced.
func (d Deployment) WithToken(symbol string, addr common.Address) Deployment {
	out := d
	out.Tokens = append([]Token(nil), d.Tokens...)
	for i := range out.Tokens {
		if strings.EqualFold(out.Tokens[i].Symbol, symbol) {
			out.Tokens[i].Address = addr
		}
	}
	return out
}

// Whale is an account that holds a large balance of one token on the fork.
type Whale struct {
	Label   string         `json:"label"`
	Account common.Address `json:"account"`
	Token   string         `json:"token"`
}

var (
	Binance8 = common.HexToAddress("0xf977814e90da44bfa03b6295a0616a897441acec")
	AaveWETH = common.HexToAddress("0x030ba81f1c18d280636f32af80b9aad02cf0854e")
)

// Whales maps each funding token to the account that serves it, in funding order.
func Whales() []Whale {
	return []Whale{
		{Label: "binance-8", Account: Binance8, Token: "USDC"},
		{Label: "aave-weth", Account: AaveWETH, Token: "WETH"},
		{Label: "binance-8", Account: Binance8, Token: "CVX"},
	}
}
