package masterchef

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const V1ClassName = "masterchef-v1"

var (
	V1ABI = ledger.MustABI(registry.MasterChefV1ABI)

	tagDevAddr       = byte(0x05)
	tagSushiPerBlock = byte(0x06)
	tagStartBlock    = byte(0x07)
	tagBonusEndBlock = byte(0x08)

	bonusMultiplier = big.NewInt(10)
)

func V1Class() ledger.Class {
	return ledger.Class{
		Name: V1ClassName,
		ABI:  V1ABI,
		New:  func(addr common.Address) ledger.Contract { return &V1Contract{addr: addr} },
	}
}

// V1Contract mints SUSHI to stakers of each pool in proportion to the pool
// allocation points. It must own the SUSHI token.
type V1Contract struct {
	addr common.Address
	chef
}

func (cont *V1Contract) OnCreate(cc *ledger.Context, args []any) error {
	cc.SetAddressData([]byte{tagOwner}, cc.From())
	cc.SetAddressData([]byte{tagSushi}, argAddress(args, 0))
	cc.SetAddressData([]byte{tagDevAddr}, argAddress(args, 1))
	cc.SetBigData([]byte{tagSushiPerBlock}, argBig(args, 2))
	cc.SetBigData([]byte{tagStartBlock}, argBig(args, 3))
	cc.SetBigData([]byte{tagBonusEndBlock}, argBig(args, 4))
	return nil
}

func (cont *V1Contract) sushiPerBlock(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagSushiPerBlock})
}

func (cont *V1Contract) userInfo(cc *ledger.Context, pid *big.Int, user common.Address) *UserInfo {
	return &UserInfo{
		Amount:     cc.BigData(pidKey(tagUserAmount, pid, user.Bytes())),
		RewardDebt: cc.BigData(pidKey(tagUserRewardDebt, pid, user.Bytes())),
	}
}

func (cont *V1Contract) setUserInfo(cc *ledger.Context, pid *big.Int, user common.Address, info *UserInfo) {
	cc.SetBigData(pidKey(tagUserAmount, pid, user.Bytes()), info.Amount)
	cc.SetBigData(pidKey(tagUserRewardDebt, pid, user.Bytes()), info.RewardDebt)
}

// GetMultiplier returns the reward multiplier over blocks [from, to).
func (cont *V1Contract) GetMultiplier(cc *ledger.Context, from, to *big.Int) *big.Int {
	bonusEnd := cc.BigData([]byte{tagBonusEndBlock})
	switch {
	case to.Cmp(bonusEnd) <= 0:
		out := new(big.Int).Sub(to, from)
		return out.Mul(out, bonusMultiplier)
	case from.Cmp(bonusEnd) >= 0:
		return new(big.Int).Sub(to, from)
	default:
		bonus := new(big.Int).Sub(bonusEnd, from)
		bonus.Mul(bonus, bonusMultiplier)
		return bonus.Add(bonus, new(big.Int).Sub(to, bonusEnd))
	}
}

func (cont *V1Contract) poolReward(cc *ledger.Context, pool *PoolInfo, toBlock uint64) *big.Int {
	multiplier := cont.GetMultiplier(cc, new(big.Int).SetUint64(pool.LastRewardBlock), new(big.Int).SetUint64(toBlock))
	reward := multiplier.Mul(multiplier, cont.sushiPerBlock(cc))
	reward.Mul(reward, pool.AllocPoint)
	total := cont.totalAllocPoint(cc)
	if total.Sign() == 0 {
		return new(big.Int)
	}
	return reward.Quo(reward, total)
}

func (cont *V1Contract) PendingSushi(cc *ledger.Context, pid *big.Int, user common.Address) (*big.Int, error) {
	if err := cont.checkPid(cc, pid); err != nil {
		return nil, err
	}
	pool := cont.poolInfo(cc, pid)
	info := cont.userInfo(cc, pid, user)
	acc := pool.AccSushiPerShare
	supply, err := cont.lpSupply(cc, pool)
	if err != nil {
		return nil, err
	}
	if cc.BlockNumber() > pool.LastRewardBlock && supply.Sign() != 0 {
		acc = accrue(acc, cont.poolReward(cc, pool, cc.BlockNumber()), supply)
	}
	pending := accumulated(info.Amount, acc)
	return pending.Sub(pending, info.RewardDebt), nil
}

func (cont *V1Contract) MassUpdatePools(cc *ledger.Context) error {
	length := cont.poolLength(cc)
	for pid := new(big.Int); pid.Cmp(length) < 0; pid = new(big.Int).Add(pid, common.Big1) {
		if err := cont.UpdatePool(cc, pid); err != nil {
			return err
		}
	}
	return nil
}

func (cont *V1Contract) UpdatePool(cc *ledger.Context, pid *big.Int) error {
	if err := cont.checkPid(cc, pid); err != nil {
		return err
	}
	pool := cont.poolInfo(cc, pid)
	if cc.BlockNumber() <= pool.LastRewardBlock {
		return nil
	}
	supply, err := cont.lpSupply(cc, pool)
	if err != nil {
		return err
	}
	if supply.Sign() == 0 {
		pool.LastRewardBlock = cc.BlockNumber()
		cont.setPoolInfo(cc, pid, pool)
		return nil
	}
	reward := cont.poolReward(cc, pool, cc.BlockNumber())
	sushi := cont.sushi(cc)
	devShare := new(big.Int).Quo(reward, big.NewInt(10))
	if devShare.Sign() > 0 {
		if _, err := cc.Exec(sushi, "mint", cc.AddressData([]byte{tagDevAddr}), devShare); err != nil {
			return err
		}
	}
	if reward.Sign() > 0 {
		if _, err := cc.Exec(sushi, "mint", cc.Self(), reward); err != nil {
			return err
		}
	}
	pool.AccSushiPerShare = accrue(pool.AccSushiPerShare, reward, supply)
	pool.LastRewardBlock = cc.BlockNumber()
	cont.setPoolInfo(cc, pid, pool)
	return nil
}

// safeSushiTransfer pays out at most the SUSHI the chef holds.
func (cont *V1Contract) safeSushiTransfer(cc *ledger.Context, to common.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	sushi := cont.sushi(cc)
	balance, err := erc20.BalanceOf(cc, sushi, cc.Self())
	if err != nil {
		return err
	}
	if amount.Cmp(balance) > 0 {
		amount = balance
	}
	return erc20.SafeTransfer(cc, sushi, to, amount)
}

func (cont *V1Contract) harvest(cc *ledger.Context, pool *PoolInfo, info *UserInfo, to common.Address) error {
	if info.Amount.Sign() == 0 {
		return nil
	}
	pending := accumulated(info.Amount, pool.AccSushiPerShare)
	pending.Sub(pending, info.RewardDebt)
	return cont.safeSushiTransfer(cc, to, pending)
}

func (cont *V1Contract) Deposit(cc *ledger.Context, pid, amount *big.Int) error {
	if err := cont.UpdatePool(cc, pid); err != nil {
		return err
	}
	pool := cont.poolInfo(cc, pid)
	info := cont.userInfo(cc, pid, cc.From())
	if err := cont.harvest(cc, pool, info, cc.From()); err != nil {
		return err
	}
	if err := erc20.SafeTransferFrom(cc, pool.LPToken, cc.From(), cc.Self(), amount); err != nil {
		return err
	}
	info.Amount = new(big.Int).Add(info.Amount, amount)
	info.RewardDebt = accumulated(info.Amount, pool.AccSushiPerShare)
	cont.setUserInfo(cc, pid, cc.From(), info)
	return cc.Emit("Deposit", cc.From(), pid, amount)
}

func (cont *V1Contract) Withdraw(cc *ledger.Context, pid, amount *big.Int) error {
	if err := cont.checkPid(cc, pid); err != nil {
		return err
	}
	info := cont.userInfo(cc, pid, cc.From())
	if info.Amount.Cmp(amount) < 0 {
		return ledger.Revert("withdraw: not good")
	}
	if err := cont.UpdatePool(cc, pid); err != nil {
		return err
	}
	pool := cont.poolInfo(cc, pid)
	if err := cont.harvest(cc, pool, info, cc.From()); err != nil {
		return err
	}
	info.Amount = new(big.Int).Sub(info.Amount, amount)
	info.RewardDebt = accumulated(info.Amount, pool.AccSushiPerShare)
	cont.setUserInfo(cc, pid, cc.From(), info)
	if err := erc20.SafeTransfer(cc, pool.LPToken, cc.From(), amount); err != nil {
		return err
	}
	return cc.Emit("Withdraw", cc.From(), pid, amount)
}

func (cont *V1Contract) EmergencyWithdraw(cc *ledger.Context, pid *big.Int) error {
	if err := cont.checkPid(cc, pid); err != nil {
		return err
	}
	pool := cont.poolInfo(cc, pid)
	info := cont.userInfo(cc, pid, cc.From())
	amount := info.Amount
	cont.setUserInfo(cc, pid, cc.From(), &UserInfo{Amount: new(big.Int), RewardDebt: new(big.Int)})
	if err := erc20.SafeTransfer(cc, pool.LPToken, cc.From(), amount); err != nil {
		return err
	}
	return cc.Emit("EmergencyWithdraw", cc.From(), pid, amount)
}

func (cont *V1Contract) Add(cc *ledger.Context, allocPoint *big.Int, lpToken common.Address, withUpdate bool) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	if withUpdate {
		if err := cont.MassUpdatePools(cc); err != nil {
			return err
		}
	}
	lastRewardBlock := cc.BlockNumber()
	if start := cc.BigData([]byte{tagStartBlock}); start.Uint64() > lastRewardBlock {
		lastRewardBlock = start.Uint64()
	}
	cont.addPool(cc, &PoolInfo{
		LPToken:          lpToken,
		AllocPoint:       allocPoint,
		LastRewardBlock:  lastRewardBlock,
		AccSushiPerShare: new(big.Int),
	})
	return nil
}

func (cont *V1Contract) Set(cc *ledger.Context, pid, allocPoint *big.Int, withUpdate bool) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	if err := cont.checkPid(cc, pid); err != nil {
		return err
	}
	if withUpdate {
		if err := cont.MassUpdatePools(cc); err != nil {
			return err
		}
	}
	cont.setAllocPoint(cc, pid, allocPoint)
	return nil
}

func (cont *V1Contract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	switch method {
	case "sushi":
		return []any{cont.sushi(cc)}, nil
	case "devaddr":
		return []any{cc.AddressData([]byte{tagDevAddr})}, nil
	case "owner":
		return []any{cont.owner(cc)}, nil
	case "sushiPerBlock":
		return []any{cont.sushiPerBlock(cc)}, nil
	case "startBlock":
		return []any{cc.BigData([]byte{tagStartBlock})}, nil
	case "bonusEndBlock":
		return []any{cc.BigData([]byte{tagBonusEndBlock})}, nil
	case "BONUS_MULTIPLIER":
		return []any{new(big.Int).Set(bonusMultiplier)}, nil
	case "totalAllocPoint":
		return []any{cont.totalAllocPoint(cc)}, nil
	case "poolLength":
		return []any{cont.poolLength(cc)}, nil
	case "poolInfo":
		pid := argBig(args, 0)
		if err := cont.checkPid(cc, pid); err != nil {
			return nil, err
		}
		pool := cont.poolInfo(cc, pid)
		return []any{pool.LPToken, pool.AllocPoint, new(big.Int).SetUint64(pool.LastRewardBlock), pool.AccSushiPerShare}, nil
	case "userInfo":
		info := cont.userInfo(cc, argBig(args, 0), argAddress(args, 1))
		return []any{info.Amount, info.RewardDebt}, nil
	case "getMultiplier":
		return []any{cont.GetMultiplier(cc, argBig(args, 0), argBig(args, 1))}, nil
	case "pendingSushi":
		pending, err := cont.PendingSushi(cc, argBig(args, 0), argAddress(args, 1))
		if err != nil {
			return nil, err
		}
		return []any{pending}, nil
	case "add":
		return nil, cont.Add(cc, argBig(args, 0), argAddress(args, 1), args[2].(bool))
	case "set":
		return nil, cont.Set(cc, argBig(args, 0), argBig(args, 1), args[2].(bool))
	case "massUpdatePools":
		return nil, cont.MassUpdatePools(cc)
	case "updatePool":
		return nil, cont.UpdatePool(cc, argBig(args, 0))
	case "deposit":
		return nil, cont.Deposit(cc, argBig(args, 0), argBig(args, 1))
	case "withdraw":
		return nil, cont.Withdraw(cc, argBig(args, 0), argBig(args, 1))
	case "emergencyWithdraw":
		return nil, cont.EmergencyWithdraw(cc, argBig(args, 0))
	case "dev":
		if cc.From() != cc.AddressData([]byte{tagDevAddr}) {
			return nil, ledger.Revert("dev: wut?")
		}
		cc.SetAddressData([]byte{tagDevAddr}, argAddress(args, 0))
		return nil, nil
	}
	return nil, fmt.Errorf("masterchef v1: unhandled method %s", method)
}
