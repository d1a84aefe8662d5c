package erc20

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

var (
	tagName        = byte(0x01)
	tagSymbol      = byte(0x02)
	tagDecimals    = byte(0x03)
	tagTotalSupply = byte(0x04)
	tagBalance     = byte(0x05)
	tagAllowance   = byte(0x06)
)

// Book keeps ERC-20 accounting in the storage of the executing contract.
// Token-like contracts embed it and fall through to Invoke for the standard
// methods.
type Book struct{}

func (Book) Init(cc *ledger.Context, name, symbol string, decimals uint8) {
	cc.SetStringData([]byte{tagName}, name)
	cc.SetStringData([]byte{tagSymbol}, symbol)
	cc.SetData([]byte{tagDecimals}, []byte{decimals})
}

func (Book) Name(cc *ledger.Context) string   { return cc.StringData([]byte{tagName}) }
func (Book) Symbol(cc *ledger.Context) string { return cc.StringData([]byte{tagSymbol}) }

func (Book) Decimals(cc *ledger.Context) uint8 {
	raw := cc.Data([]byte{tagDecimals})
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func (Book) TotalSupply(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagTotalSupply})
}

func (Book) BalanceOf(cc *ledger.Context, owner common.Address) *big.Int {
	return cc.BigData(ledger.Key(tagBalance, owner.Bytes()))
}

func (Book) Allowance(cc *ledger.Context, owner, spender common.Address) *big.Int {
	return cc.BigData(ledger.Key(tagAllowance, owner.Bytes(), spender.Bytes()))
}

func (b Book) Transfer(cc *ledger.Context, from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) {
		return ledger.Revert("ERC20: transfer from the zero address")
	}
	if to == (common.Address{}) {
		return ledger.Revert("ERC20: transfer to the zero address")
	}
	fromBalance := b.BalanceOf(cc, from)
	if fromBalance.Cmp(amount) < 0 {
		return ledger.Revert("ERC20: transfer amount exceeds balance")
	}
	cc.SetBigData(ledger.Key(tagBalance, from.Bytes()), fromBalance.Sub(fromBalance, amount))
	cc.SetBigData(ledger.Key(tagBalance, to.Bytes()), new(big.Int).Add(b.BalanceOf(cc, to), amount))
	return cc.Emit("Transfer", from, to, amount)
}

func (b Book) Approve(cc *ledger.Context, owner, spender common.Address, amount *big.Int) error {
	if owner == (common.Address{}) {
		return ledger.Revert("ERC20: approve from the zero address")
	}
	if spender == (common.Address{}) {
		return ledger.Revert("ERC20: approve to the zero address")
	}
	cc.SetBigData(ledger.Key(tagAllowance, owner.Bytes(), spender.Bytes()), amount)
	return cc.Emit("Approval", owner, spender, amount)
}

// SpendAllowance consumes amount of the spender allowance. The maximum
// uint256 allowance is never decreased.
func (b Book) SpendAllowance(cc *ledger.Context, owner, spender common.Address, amount *big.Int) error {
	current := b.Allowance(cc, owner, spender)
	if current.Cmp(math.MaxBig256) == 0 {
		return nil
	}
	if current.Cmp(amount) < 0 {
		return ledger.Revert("ERC20: insufficient allowance")
	}
	cc.SetBigData(ledger.Key(tagAllowance, owner.Bytes(), spender.Bytes()), current.Sub(current, amount))
	return nil
}

func (b Book) Mint(cc *ledger.Context, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return ledger.Revert("ERC20: mint to the zero address")
	}
	return b.credit(cc, to, amount)
}

// credit mints without the zero-address guard; pairs lock the minimum
// liquidity at the zero address.
func (b Book) credit(cc *ledger.Context, to common.Address, amount *big.Int) error {
	cc.SetBigData([]byte{tagTotalSupply}, new(big.Int).Add(b.TotalSupply(cc), amount))
	cc.SetBigData(ledger.Key(tagBalance, to.Bytes()), new(big.Int).Add(b.BalanceOf(cc, to), amount))
	return cc.Emit("Transfer", common.Address{}, to, amount)
}

// MintLocked mints to any address, including the zero address.
func (b Book) MintLocked(cc *ledger.Context, to common.Address, amount *big.Int) error {
	return b.credit(cc, to, amount)
}

func (b Book) Burn(cc *ledger.Context, from common.Address, amount *big.Int) error {
	balance := b.BalanceOf(cc, from)
	if balance.Cmp(amount) < 0 {
		return ledger.Revert("ERC20: burn amount exceeds balance")
	}
	cc.SetBigData(ledger.Key(tagBalance, from.Bytes()), balance.Sub(balance, amount))
	cc.SetBigData([]byte{tagTotalSupply}, new(big.Int).Sub(b.TotalSupply(cc), amount))
	return cc.Emit("Transfer", from, common.Address{}, amount)
}

// Invoke serves the standard ERC-20 methods. handled is false for any other
// method name.
func (b Book) Invoke(cc *ledger.Context, method string, args []any) (out []any, handled bool, err error) {
	switch method {
	case "name":
		return []any{b.Name(cc)}, true, nil
	case "symbol":
		return []any{b.Symbol(cc)}, true, nil
	case "decimals":
		return []any{b.Decimals(cc)}, true, nil
	case "totalSupply":
		return []any{b.TotalSupply(cc)}, true, nil
	case "balanceOf":
		return []any{b.BalanceOf(cc, args[0].(common.Address))}, true, nil
	case "allowance":
		return []any{b.Allowance(cc, args[0].(common.Address), args[1].(common.Address))}, true, nil
	case "approve":
		if err := b.Approve(cc, cc.From(), args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, true, err
		}
		return []any{true}, true, nil
	case "transfer":
		if err := b.Transfer(cc, cc.From(), args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, true, err
		}
		return []any{true}, true, nil
	case "transferFrom":
		from, to, amount := args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)
		if err := b.SpendAllowance(cc, from, cc.From(), amount); err != nil {
			return nil, true, err
		}
		if err := b.Transfer(cc, from, to, amount); err != nil {
			return nil, true, err
		}
		return []any{true}, true, nil
	}
	return nil, false, nil
}
