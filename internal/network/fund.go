package network

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

// WhaleFor returns the account that serves symbol.
func WhaleFor(symbol string) (registry.Whale, bool) {
	for _, whale := range registry.Whales() {
		if strings.EqualFold(whale.Token, symbol) {
			return whale, true
		}
	}
	return registry.Whale{}, false
}

// FundFromWhale transfers amount of symbol from its whale to to, the way a
// fork test tops up an account. The whale is impersonated only for the
// transfer and receives gas money if it has none.
func (n *Network) FundFromWhale(ctx context.Context, symbol string, to common.Address, amount *big.Int) (common.Hash, error) {
	whale, ok := WhaleFor(symbol)
	if !ok {
		return common.Hash{}, fmt.Errorf("no whale serves %s", symbol)
	}
	token, ok := n.Deployment.Token(symbol)
	if !ok {
		return common.Hash{}, fmt.Errorf("unknown token %s", symbol)
	}
	balance, err := n.Chain.BalanceAt(ctx, whale.Account, nil)
	if err != nil {
		return common.Hash{}, err
	}
	if balance.Sign() == 0 {
		n.Chain.SetBalance(whale.Account, Ether(1))
	}
	n.Chain.Impersonate(whale.Account)
	defer n.Chain.StopImpersonating(whale.Account)

	receipt, err := NewClient(n.Chain).TransactAs(ctx, whale.Account, token.Address, nil, "transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fund %s from %s: %w", symbol, whale.Label, err)
	}
	return receipt.TxHash, nil
}
