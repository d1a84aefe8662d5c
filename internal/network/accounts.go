package network

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// Well-known development keys shared with common EVM dev tooling. They
// guard nothing outside the simulated chain.
var devKeys = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
}

// DevAccounts returns the funded dev accounts in signer order: the wallet
// owner, a second user, and a stranger used for authorization checks.
func DevAccounts() []Account {
	out := make([]Account, 0, len(devKeys))
	for _, hexKey := range devKeys {
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			panic(err)
		}
		out = append(out, Account{Address: crypto.PubkeyToAddress(key.PublicKey), Key: key})
	}
	return out
}

// DevKeyHex returns the hex private key of dev account i.
func DevKeyHex(i int) string {
	return devKeys[i]
}
