package masterchef

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ggonzalez94/sushi-wallet/internal/contracts/erc20"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
)

var (
	tagOwner           = byte(0x01)
	tagSushi           = byte(0x02)
	tagTotalAllocPoint = byte(0x03)
	tagPoolLength      = byte(0x04)

	tagPoolLPToken         = byte(0x10)
	tagPoolAllocPoint      = byte(0x11)
	tagPoolLastRewardBlock = byte(0x12)
	tagPoolAccSushi        = byte(0x13)
	tagPoolRewarder        = byte(0x14)

	tagUserAmount     = byte(0x20)
	tagUserRewardDebt = byte(0x21)

	accSushiPrecision = big.NewInt(1e12)
)

type PoolInfo struct {
	LPToken          common.Address
	AllocPoint       *big.Int
	LastRewardBlock  uint64
	AccSushiPerShare *big.Int
}

type UserInfo struct {
	Amount     *big.Int
	RewardDebt *big.Int
}

func pidKey(tag byte, pid *big.Int, parts ...[]byte) []byte {
	return ledger.Key(tag, append([][]byte{ledger.BigKey(pid)}, parts...)...)
}

// chef holds the storage layout shared by both MasterChef versions.
type chef struct{}

func (chef) owner(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagOwner})
}

func (c chef) onlyOwner(cc *ledger.Context) error {
	if cc.From() != c.owner(cc) {
		return ledger.Revert("Ownable: caller is not the owner")
	}
	return nil
}

func (chef) sushi(cc *ledger.Context) common.Address {
	return cc.AddressData([]byte{tagSushi})
}

func (chef) totalAllocPoint(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagTotalAllocPoint})
}

func (chef) poolLength(cc *ledger.Context) *big.Int {
	return cc.BigData([]byte{tagPoolLength})
}

func (c chef) checkPid(cc *ledger.Context, pid *big.Int) error {
	if pid.Cmp(c.poolLength(cc)) >= 0 {
		return ledger.Revert("MasterChef: invalid pool id")
	}
	return nil
}

func (chef) poolInfo(cc *ledger.Context, pid *big.Int) *PoolInfo {
	return &PoolInfo{
		LPToken:          cc.AddressData(pidKey(tagPoolLPToken, pid)),
		AllocPoint:       cc.BigData(pidKey(tagPoolAllocPoint, pid)),
		LastRewardBlock:  cc.BigData(pidKey(tagPoolLastRewardBlock, pid)).Uint64(),
		AccSushiPerShare: cc.BigData(pidKey(tagPoolAccSushi, pid)),
	}
}

func (chef) setPoolInfo(cc *ledger.Context, pid *big.Int, pool *PoolInfo) {
	cc.SetAddressData(pidKey(tagPoolLPToken, pid), pool.LPToken)
	cc.SetBigData(pidKey(tagPoolAllocPoint, pid), pool.AllocPoint)
	cc.SetBigData(pidKey(tagPoolLastRewardBlock, pid), new(big.Int).SetUint64(pool.LastRewardBlock))
	cc.SetBigData(pidKey(tagPoolAccSushi, pid), pool.AccSushiPerShare)
}

// addPool appends pool and returns its pid.
func (c chef) addPool(cc *ledger.Context, pool *PoolInfo) *big.Int {
	pid := c.poolLength(cc)
	c.setPoolInfo(cc, pid, pool)
	cc.SetBigData([]byte{tagPoolLength}, new(big.Int).Add(pid, common.Big1))
	total := c.totalAllocPoint(cc)
	cc.SetBigData([]byte{tagTotalAllocPoint}, total.Add(total, pool.AllocPoint))
	return pid
}

func (c chef) setAllocPoint(cc *ledger.Context, pid, allocPoint *big.Int) {
	pool := c.poolInfo(cc, pid)
	total := c.totalAllocPoint(cc)
	total.Sub(total, pool.AllocPoint)
	total.Add(total, allocPoint)
	cc.SetBigData([]byte{tagTotalAllocPoint}, total)
	pool.AllocPoint = allocPoint
	c.setPoolInfo(cc, pid, pool)
}

func (chef) lpSupply(cc *ledger.Context, pool *PoolInfo) (*big.Int, error) {
	return erc20.BalanceOf(cc, pool.LPToken, cc.Self())
}

// accrue returns the accumulator after reward has been spread over supply.
func accrue(acc, reward, supply *big.Int) *big.Int {
	share := new(big.Int).Mul(reward, accSushiPrecision)
	share.Quo(share, supply)
	return share.Add(share, acc)
}

// accumulated is amount * acc / precision.
func accumulated(amount, acc *big.Int) *big.Int {
	out := new(big.Int).Mul(amount, acc)
	return out.Quo(out, accSushiPrecision)
}

func argAddress(args []any, i int) common.Address { return args[i].(common.Address) }
func argBig(args []any, i int) *big.Int           { return args[i].(*big.Int) }
