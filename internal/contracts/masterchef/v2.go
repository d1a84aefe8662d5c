package masterchef

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/registry"
)

const V2ClassName = "masterchef-v2"

var (
	V2ABI = ledger.MustABI(registry.MasterChefV2ABI)

	tagMasterChef = byte(0x30)
	tagMasterPid  = byte(0x31)
)

func V2Class() ledger.Class {
	return ledger.Class{
		Name: V2ClassName,
		ABI:  V2ABI,
		New:  func(addr common.Address) ledger.Contract { return &V2Contract{addr: addr} },
	}
}

// V2Contract distributes the SUSHI it harvests from a dummy pool in the V1
// chef. Reward debt is signed so withdrawals can run ahead of harvests.
type V2Contract struct {
	addr common.Address
	chef
}

func (cont *V2Contract) OnCreate(cc *ledger.Context, args []any) error {
	cc.SetAddressData([]byte{tagOwner}, cc.From())
	cc.SetAddressData([]byte{tagMasterChef}, argAddress(args, 0))
	cc.SetAddressData([]byte{tagSushi}, argAddress(args, 1))
	cc.SetBigData([]byte{tagMasterPid}, argBig(args, 2))
	return nil
}

func (cont *V2Contract) masterChef(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagMasterChef})
}

func (cont *V2Contract) masterPid(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagMasterPid})
}

func (cont *V2Contract) userInfo(cc *ledger.Context, pid *big.Int, user common.Address) *UserInfo {
	return &UserInfo{
		Amount:     cc.BigData(pidKey(tagUserAmount, pid, user.Bytes())),
		RewardDebt: cc.IntData(pidKey(tagUserRewardDebt, pid, user.Bytes())),
	}
}

func (cont *V2Contract) setUserInfo(cc *ledger.Context, pid *big.Int, user common.Address, info *UserInfo) {
	cc.SetBigData(pidKey(tagUserAmount, pid, user.Bytes()), info.Amount)
	cc.SetIntData(pidKey(tagUserRewardDebt, pid, user.Bytes()), info.RewardDebt)
}

// SushiPerBlock is the share of V1 emissions routed to the dummy pool.
func (cont *V2Contract) SushiPerBlock(cc *ledger.Context) (*big.Int, error) {
	v1 := cont.masterChef(cc)
	out, err := cc.Exec(v1, "sushiPerBlock")
	if err != nil {
		return nil, err
	}
	perBlock := out[0].(*big.Int)
	out, err = cc.Exec(v1, "poolInfo", cont.masterPid(cc))
	if err != nil {
		return nil, err
	}
	allocPoint := out[1].(*big.Int)
	out, err = cc.Exec(v1, "totalAllocPoint")
	if err != nil {
		return nil, err
	}
	total := out[0].(*big.Int)
	if total.Sign() == 0 {
		return new(big.Int), nil
	}
	amount := new(big.Int).Mul(perBlock, allocPoint)
	return amount.Quo(amount, total), nil
}

func (cont *V2Contract) poolReward(cc *ledger.Context, pool *PoolInfo) (*big.Int, error) {
	total := cont.totalAllocPoint(cc)
	if total.Sign() == 0 {
		return new(big.Int), nil
	}
	perBlock, err := cont.SushiPerBlock(cc)
	if err != nil {
		return nil, err
	}
	blocks := new(big.Int).SetUint64(cc.BlockNumber() - pool.LastRewardBlock)
	reward := blocks.Mul(blocks, perBlock)
	reward.Mul(reward, pool.AllocPoint)
	return reward.Quo(reward, total), nil
}

func (cont *V2Contract) PendingSushi(cc *ledger.Context, pid *big.Int, user common.Address) (*big.Int, error) {
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
		reward, err := cont.poolReward(cc, pool)
		if err != nil {
			return nil, err
		}
		acc = accrue(acc, reward, supply)
	}
	pending := accumulated(info.Amount, acc)
	pending.Sub(pending, info.RewardDebt)
	if pending.Sign() < 0 {
		return new(big.Int), nil
	}
	return pending, nil
}

func (cont *V2Contract) UpdatePool(cc *ledger.Context, pid *big.Int) (*PoolInfo, error) {
	if err := cont.checkPid(cc, pid); err != nil {
		return nil, err
	}
	pool := cont.poolInfo(cc, pid)
	if cc.BlockNumber() <= pool.LastRewardBlock {
		return pool, nil
	}
	supply, err := cont.lpSupply(cc, pool)
	if err != nil {
		return nil, err
	}
	if supply.Sign() > 0 {
		reward, err := cont.poolReward(cc, pool)
		if err != nil {
			return nil, err
		}
		pool.AccSushiPerShare = accrue(pool.AccSushiPerShare, reward, supply)
	}
	pool.LastRewardBlock = cc.BlockNumber()
	cont.setPoolInfo(cc, pid, pool)
	if err := cc.Emit("LogUpdatePool", pid, pool.LastRewardBlock, supply, pool.AccSushiPerShare); err != nil {
		return nil, err
	}
	return pool, nil
}

func (cont *V2Contract) Deposit(cc *ledger.Context, pid, amount *big.Int, to common.Address) error {
	pool, err := cont.UpdatePool(cc, pid)
	if err != nil {
		return err
	}
	info := cont.userInfo(cc, pid, to)
	info.Amount = new(big.Int).Add(info.Amount, amount)
	info.RewardDebt = new(big.Int).Add(info.RewardDebt, accumulated(amount, pool.AccSushiPerShare))
	cont.setUserInfo(cc, pid, to, info)
	if err := erc20.SafeTransferFrom(cc, pool.LPToken, cc.From(), cc.Self(), amount); err != nil {
		return err
	}
	return cc.Emit("Deposit", cc.From(), pid, amount, to)
}

func (cont *V2Contract) Withdraw(cc *ledger.Context, pid, amount *big.Int, to common.Address) error {
	pool, err := cont.UpdatePool(cc, pid)
	if err != nil {
		return err
	}
	info := cont.userInfo(cc, pid, cc.From())
	if info.Amount.Cmp(amount) < 0 {
		return ledger.Revert("BoringMath: Underflow")
	}
	info.RewardDebt = new(big.Int).Sub(info.RewardDebt, accumulated(amount, pool.AccSushiPerShare))
	info.Amount = new(big.Int).Sub(info.Amount, amount)
	cont.setUserInfo(cc, pid, cc.From(), info)
	if err := erc20.SafeTransfer(cc, pool.LPToken, to, amount); err != nil {
		return err
	}
	return cc.Emit("Withdraw", cc.From(), pid, amount, to)
}

func (cont *V2Contract) Harvest(cc *ledger.Context, pid *big.Int, to common.Address) error {
	pool, err := cont.UpdatePool(cc, pid)
	if err != nil {
		return err
	}
	info := cont.userInfo(cc, pid, cc.From())
	total := accumulated(info.Amount, pool.AccSushiPerShare)
	pending, err := toUint256(new(big.Int).Sub(total, info.RewardDebt))
	if err != nil {
		return err
	}
	info.RewardDebt = total
	cont.setUserInfo(cc, pid, cc.From(), info)
	if pending.Sign() != 0 {
		if err := erc20.SafeTransfer(cc, cont.sushi(cc), to, pending); err != nil {
			return err
		}
	}
	return cc.Emit("Harvest", cc.From(), pid, pending)
}

func (cont *V2Contract) WithdrawAndHarvest(cc *ledger.Context, pid, amount *big.Int, to common.Address) error {
	pool, err := cont.UpdatePool(cc, pid)
	if err != nil {
		return err
	}
	info := cont.userInfo(cc, pid, cc.From())
	if info.Amount.Cmp(amount) < 0 {
		return ledger.Revert("BoringMath: Underflow")
	}
	total := accumulated(info.Amount, pool.AccSushiPerShare)
	pending, err := toUint256(new(big.Int).Sub(total, info.RewardDebt))
	if err != nil {
		return err
	}
	info.RewardDebt = new(big.Int).Sub(total, accumulated(amount, pool.AccSushiPerShare))
	info.Amount = new(big.Int).Sub(info.Amount, amount)
	cont.setUserInfo(cc, pid, cc.From(), info)
	if err := erc20.SafeTransfer(cc, cont.sushi(cc), to, pending); err != nil {
		return err
	}
	if err := erc20.SafeTransfer(cc, pool.LPToken, to, amount); err != nil {
		return err
	}
	if err := cc.Emit("Withdraw", cc.From(), pid, amount, to); err != nil {
		return err
	}
	return cc.Emit("Harvest", cc.From(), pid, pending)
}

// HarvestFromMasterChef pulls the dummy pool rewards out of the V1 chef.
func (cont *V2Contract) HarvestFromMasterChef(cc *ledger.Context) error {
	_, err := cc.Exec(cont.masterChef(cc), "deposit", cont.masterPid(cc), new(big.Int))
	return err
}

func (cont *V2Contract) EmergencyWithdraw(cc *ledger.Context, pid *big.Int, to common.Address) error {
	if err := cont.checkPid(cc, pid); err != nil {
		return err
	}
	pool := cont.poolInfo(cc, pid)
	info := cont.userInfo(cc, pid, cc.From())
	amount := info.Amount
	cont.setUserInfo(cc, pid, cc.From(), &UserInfo{Amount: new(big.Int), RewardDebt: new(big.Int)})
	if err := erc20.SafeTransfer(cc, pool.LPToken, to, amount); err != nil {
		return err
	}
	return cc.Emit("EmergencyWithdraw", cc.From(), pid, amount, to)
}

// Init stakes the caller's whole dummy token balance in the V1 master pool.
func (cont *V2Contract) Init(cc *ledger.Context, dummyToken common.Address) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	balance, err := erc20.BalanceOf(cc, dummyToken, cc.From())
	if err != nil {
		return err
	}
	if balance.Sign() == 0 {
		return ledger.Revert("MasterChefV2: Balance must exceed 0")
	}
	if err := erc20.SafeTransferFrom(cc, dummyToken, cc.From(), cc.Self(), balance); err != nil {
		return err
	}
	if err := erc20.SafeApprove(cc, dummyToken, cont.masterChef(cc), balance); err != nil {
		return err
	}
	if _, err := cc.Exec(cont.masterChef(cc), "deposit", cont.masterPid(cc), balance); err != nil {
		return err
	}
	return cc.Emit("LogInit")
}

func (cont *V2Contract) Add(cc *ledger.Context, allocPoint *big.Int, lpToken, rewarder common.Address) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	pid := cont.addPool(cc, &PoolInfo{
		LPToken:          lpToken,
		AllocPoint:       allocPoint,
		LastRewardBlock:  cc.BlockNumber(),
		AccSushiPerShare: new(big.Int),
	})
	cc.SetAddressData(pidKey(tagPoolRewarder, pid), rewarder)
	return cc.Emit("LogPoolAddition", pid, allocPoint, lpToken, rewarder)
}

func (cont *V2Contract) Set(cc *ledger.Context, pid, allocPoint *big.Int) error {
	if err := cont.onlyOwner(cc); err != nil {
		return err
	}
	if err := cont.checkPid(cc, pid); err != nil {
		return err
	}
	cont.setAllocPoint(cc, pid, allocPoint)
	return cc.Emit("LogSetPool", pid, allocPoint)
}

func toUint256(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, ledger.Revert("Integer < 0")
	}
	return v, nil
}

func (cont *V2Contract) Invoke(cc *ledger.Context, method string, args []any) ([]any, error) {
	switch method {
	case "MASTER_CHEF":
		return []any{cont.masterChef(cc)}, nil
	case "SUSHI":
		return []any{cont.sushi(cc)}, nil
	case "MASTER_PID":
		return []any{cont.masterPid(cc)}, nil
	case "owner":
		return []any{cont.owner(cc)}, nil
	case "totalAllocPoint":
		return []any{cont.totalAllocPoint(cc)}, nil
	case "poolLength":
		return []any{cont.poolLength(cc)}, nil
	case "lpToken":
		pid := argBig(args, 0)
		if err := cont.checkPid(cc, pid); err != nil {
			return nil, err
		}
		return []any{cont.poolInfo(cc, pid).LPToken}, nil
	case "rewarder":
		return []any{cc.AddressData(pidKey(tagPoolRewarder, argBig(args, 0)))}, nil
	case "poolInfo":
		pid := argBig(args, 0)
		if err := cont.checkPid(cc, pid); err != nil {
			return nil, err
		}
		pool := cont.poolInfo(cc, pid)
		return []any{pool.AccSushiPerShare, pool.LastRewardBlock, pool.AllocPoint.Uint64()}, nil
	case "userInfo":
		info := cont.userInfo(cc, argBig(args, 0), argAddress(args, 1))
		return []any{info.Amount, info.RewardDebt}, nil
	case "sushiPerBlock":
		amount, err := cont.SushiPerBlock(cc)
		if err != nil {
			return nil, err
		}
		return []any{amount}, nil
	case "pendingSushi":
		pending, err := cont.PendingSushi(cc, argBig(args, 0), argAddress(args, 1))
		if err != nil {
			return nil, err
		}
		return []any{pending}, nil
	case "init":
		return nil, cont.Init(cc, argAddress(args, 0))
	case "add":
		return nil, cont.Add(cc, argBig(args, 0), argAddress(args, 1), argAddress(args, 2))
	case "set":
		return nil, cont.Set(cc, argBig(args, 0), argBig(args, 1))
	case "massUpdatePools":
		for _, pid := range args[0].([]*big.Int) {
			if _, err := cont.UpdatePool(cc, pid); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case "updatePool":
		_, err := cont.UpdatePool(cc, argBig(args, 0))
		return nil, err
	case "deposit":
		return nil, cont.Deposit(cc, argBig(args, 0), argBig(args, 1), argAddress(args, 2))
	case "withdraw":
		return nil, cont.Withdraw(cc, argBig(args, 0), argBig(args, 1), argAddress(args, 2))
	case "harvest":
		return nil, cont.Harvest(cc, argBig(args, 0), argAddress(args, 1))
	case "withdrawAndHarvest":
		return nil, cont.WithdrawAndHarvest(cc, argBig(args, 0), argBig(args, 1), argAddress(args, 2))
	case "harvestFromMasterChef":
		return nil, cont.HarvestFromMasterChef(cc)
	case "emergencyWithdraw":
		return nil, cont.EmergencyWithdraw(cc, argBig(args, 0), argAddress(args, 1))
	}
	return nil, fmt.Errorf("masterchef v2: unhandled method %s", method)
}

// Classes lists both chef versions.
func Classes() []ledger.Class {
	return []ledger.Class{V1Class(), V2Class()}
}
