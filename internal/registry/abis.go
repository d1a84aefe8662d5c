package registry

// ABI fragments shared by contract implementations, planners and tests.
const (
	erc20Fragments = `
		{"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"transfer","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"transferFrom","type":"function","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"Transfer","type":"event","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
		{"name":"Approval","type":"event","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}`

	// ERC20ABI is an ownable, mintable ERC-20.
	ERC20ABI = `[` + erc20Fragments + `,
		{"type":"constructor","inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"decimals","type":"uint8"},{"name":"owner","type":"address"}]},
		{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"mint","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"transferOwnership","type":"function","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
		{"name":"OwnershipTransferred","type":"event","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]}
	]`

	SushiPairABI = `[` + erc20Fragments + `,
		{"name":"MINIMUM_LIQUIDITY","type":"function","stateMutability":"pure","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"factory","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"token0","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"token1","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"getReserves","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}]},
		{"name":"initialize","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token0","type":"address"},{"name":"token1","type":"address"}],"outputs":[]},
		{"name":"mint","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"}],"outputs":[{"name":"liquidity","type":"uint256"}]},
		{"name":"burn","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"}],"outputs":[{"name":"amount0","type":"uint256"},{"name":"amount1","type":"uint256"}]},
		{"name":"sync","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
		{"name":"Mint","type":"event","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"amount0","type":"uint256","indexed":false},{"name":"amount1","type":"uint256","indexed":false}]},
		{"name":"Burn","type":"event","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"amount0","type":"uint256","indexed":false},{"name":"amount1","type":"uint256","indexed":false},{"name":"to","type":"address","indexed":true}]},
		{"name":"Sync","type":"event","anonymous":false,"inputs":[{"name":"reserve0","type":"uint112","indexed":false},{"name":"reserve1","type":"uint112","indexed":false}]}
	]`

	SushiFactoryABI = `[
		{"name":"getPair","type":"function","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"pair","type":"address"}]},
		{"name":"allPairs","type":"function","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"pair","type":"address"}]},
		{"name":"allPairsLength","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"createPair","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"pair","type":"address"}]},
		{"name":"PairCreated","type":"event","anonymous":false,"inputs":[{"name":"token0","type":"address","indexed":true},{"name":"token1","type":"address","indexed":true},{"name":"pair","type":"address","indexed":false},{"name":"index","type":"uint256","indexed":false}]}
	]`

	SushiRouterABI = `[
		{"type":"constructor","inputs":[{"name":"factory","type":"address"},{"name":"WETH","type":"address"}]},
		{"name":"factory","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"WETH","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"quote","type":"function","stateMutability":"pure","inputs":[{"name":"amountA","type":"uint256"},{"name":"reserveA","type":"uint256"},{"name":"reserveB","type":"uint256"}],"outputs":[{"name":"amountB","type":"uint256"}]},
		{"name":"addLiquidity","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"amountADesired","type":"uint256"},{"name":"amountBDesired","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"},{"name":"liquidity","type":"uint256"}]},
		{"name":"removeLiquidity","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"liquidity","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"}]}
	]`

	MasterChefV1ABI = `[
		{"type":"constructor","inputs":[{"name":"sushi","type":"address"},{"name":"devaddr","type":"address"},{"name":"sushiPerBlock","type":"uint256"},{"name":"startBlock","type":"uint256"},{"name":"bonusEndBlock","type":"uint256"}]},
		{"name":"sushi","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"devaddr","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"sushiPerBlock","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"startBlock","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"bonusEndBlock","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"BONUS_MULTIPLIER","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"totalAllocPoint","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"poolLength","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"poolInfo","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"}],"outputs":[{"name":"lpToken","type":"address"},{"name":"allocPoint","type":"uint256"},{"name":"lastRewardBlock","type":"uint256"},{"name":"accSushiPerShare","type":"uint256"}]},
		{"name":"userInfo","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"amount","type":"uint256"},{"name":"rewardDebt","type":"uint256"}]},
		{"name":"getMultiplier","type":"function","stateMutability":"view","inputs":[{"name":"from","type":"uint256"},{"name":"to","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"pendingSushi","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"add","type":"function","stateMutability":"nonpayable","inputs":[{"name":"allocPoint","type":"uint256"},{"name":"lpToken","type":"address"},{"name":"withUpdate","type":"bool"}],"outputs":[]},
		{"name":"set","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"allocPoint","type":"uint256"},{"name":"withUpdate","type":"bool"}],"outputs":[]},
		{"name":"massUpdatePools","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
		{"name":"updatePool","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"}],"outputs":[]},
		{"name":"deposit","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"emergencyWithdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"}],"outputs":[]},
		{"name":"dev","type":"function","stateMutability":"nonpayable","inputs":[{"name":"devaddr","type":"address"}],"outputs":[]},
		{"name":"Deposit","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
		{"name":"Withdraw","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
		{"name":"EmergencyWithdraw","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false}]}
	]`

	MasterChefV2ABI = `[
		{"type":"constructor","inputs":[{"name":"masterChef","type":"address"},{"name":"sushi","type":"address"},{"name":"masterPid","type":"uint256"}]},
		{"name":"MASTER_CHEF","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"SUSHI","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"MASTER_PID","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"totalAllocPoint","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"poolLength","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"pools","type":"uint256"}]},
		{"name":"lpToken","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"rewarder","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"poolInfo","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"}],"outputs":[{"name":"accSushiPerShare","type":"uint128"},{"name":"lastRewardBlock","type":"uint64"},{"name":"allocPoint","type":"uint64"}]},
		{"name":"userInfo","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"amount","type":"uint256"},{"name":"rewardDebt","type":"int256"}]},
		{"name":"sushiPerBlock","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"amount","type":"uint256"}]},
		{"name":"pendingSushi","type":"function","stateMutability":"view","inputs":[{"name":"pid","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"pending","type":"uint256"}]},
		{"name":"init","type":"function","stateMutability":"nonpayable","inputs":[{"name":"dummyToken","type":"address"}],"outputs":[]},
		{"name":"add","type":"function","stateMutability":"nonpayable","inputs":[{"name":"allocPoint","type":"uint256"},{"name":"lpToken","type":"address"},{"name":"rewarder","type":"address"}],"outputs":[]},
		{"name":"set","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"allocPoint","type":"uint256"}],"outputs":[]},
		{"name":"massUpdatePools","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pids","type":"uint256[]"}],"outputs":[]},
		{"name":"updatePool","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"}],"outputs":[]},
		{"name":"deposit","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
		{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
		{"name":"harvest","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
		{"name":"withdrawAndHarvest","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
		{"name":"harvestFromMasterChef","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[]},
		{"name":"emergencyWithdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"pid","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
		{"name":"Deposit","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"to","type":"address","indexed":true}]},
		{"name":"Withdraw","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"to","type":"address","indexed":true}]},
		{"name":"EmergencyWithdraw","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"to","type":"address","indexed":true}]},
		{"name":"Harvest","type":"event","anonymous":false,"inputs":[{"name":"user","type":"address","indexed":true},{"name":"pid","type":"uint256","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
		{"name":"LogPoolAddition","type":"event","anonymous":false,"inputs":[{"name":"pid","type":"uint256","indexed":true},{"name":"allocPoint","type":"uint256","indexed":false},{"name":"lpToken","type":"address","indexed":true},{"name":"rewarder","type":"address","indexed":true}]},
		{"name":"LogSetPool","type":"event","anonymous":false,"inputs":[{"name":"pid","type":"uint256","indexed":true},{"name":"allocPoint","type":"uint256","indexed":false}]},
		{"name":"LogUpdatePool","type":"event","anonymous":false,"inputs":[{"name":"pid","type":"uint256","indexed":true},{"name":"lastRewardBlock","type":"uint64","indexed":false},{"name":"lpSupply","type":"uint256","indexed":false},{"name":"accSushiPerShare","type":"uint256","indexed":false}]},
		{"name":"LogInit","type":"event","anonymous":false,"inputs":[]}
	]`

	SushiWalletABI = `[
		{"type":"constructor","inputs":[{"name":"owner","type":"address"},{"name":"router","type":"address"},{"name":"masterChefV1","type":"address"},{"name":"masterChefV2","type":"address"}]},
		{"type":"receive","stateMutability":"payable"},
		{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"router","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"masterChefV1","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"masterChefV2","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"deposit","type":"function","stateMutability":"payable","inputs":[],"outputs":[]},
		{"name":"withdraw","type":"function","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"transferETHAmount","type":"function","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"withdrawERC20","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"executeYieldFarming","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"},{"name":"deadline","type":"uint256"}],"outputs":[]},
		{"name":"withdrawFromYieldFarming","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"lpAmount","type":"uint256"}],"outputs":[]},
		{"name":"farmPosition","type":"function","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"version","type":"uint8"},{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"}]},
		{"name":"Deposited","type":"event","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
		{"name":"Withdrawn","type":"event","anonymous":false,"inputs":[{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
		{"name":"ERC20Withdrawn","type":"event","anonymous":false,"inputs":[{"name":"token","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
		{"name":"YieldFarmingExecuted","type":"event","anonymous":false,"inputs":[{"name":"pair","type":"address","indexed":true},{"name":"version","type":"uint8","indexed":false},{"name":"pid","type":"uint256","indexed":false},{"name":"liquidity","type":"uint256","indexed":false}]},
		{"name":"YieldFarmingWithdrawn","type":"event","anonymous":false,"inputs":[{"name":"pair","type":"address","indexed":true},{"name":"version","type":"uint8","indexed":false},{"name":"pid","type":"uint256","indexed":false},{"name":"liquidity","type":"uint256","indexed":false}]}
	]`

	SushiWalletFactoryABI = `[
		{"type":"constructor","inputs":[{"name":"router","type":"address"},{"name":"masterChefV1","type":"address"},{"name":"masterChefV2","type":"address"}]},
		{"name":"router","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"masterChefV1","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"masterChefV2","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"createWallet","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"wallet","type":"address"}]},
		{"name":"userToWallet","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"walletsLength","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"wallets","type":"function","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"WalletCreated","type":"event","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"wallet","type":"address","indexed":false}]}
	]`
)
